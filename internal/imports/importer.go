package imports

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"bombie/internal/pyenv"
)

// Importer loads modules into the target interpreter.
type Importer interface {
	Import(ctx context.Context, module string) error
	// AppendPath adds a directory to the module search path used by later
	// imports.
	AppendPath(dir string)
	SearchPath(ctx context.Context) ([]string, error)
}

const importScript = "import importlib, sys; importlib.import_module(sys.argv[1])"

const searchPathScript = "import json, sys; print(json.dumps(sys.path))"

// PythonImporter imports each module in a fresh run of the environment's
// interpreter, one call at a time. Appended directories follow site-packages
// on PYTHONPATH.
type PythonImporter struct {
	Runner pyenv.Runner
	Paths  pyenv.ResolvedPaths

	callMu sync.Mutex
	mu     sync.Mutex
	extra  []string
}

// NewPythonImporter returns an importer bound to rp.
func NewPythonImporter(r pyenv.Runner, rp pyenv.ResolvedPaths) *PythonImporter {
	return &PythonImporter{Runner: r, Paths: rp}
}

func (p *PythonImporter) AppendPath(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extra = append(p.extra, dir)
}

func (p *PythonImporter) env() []string {
	p.mu.Lock()
	entries := append([]string{p.Paths.SitePackages}, p.extra...)
	p.mu.Unlock()

	env := p.Paths.Environ()
	for i, kv := range env {
		if strings.HasPrefix(kv, "PYTHONPATH=") {
			env[i] = "PYTHONPATH=" + strings.Join(entries, string(os.PathListSeparator))
		}
	}
	return env
}

func (p *PythonImporter) Import(ctx context.Context, module string) error {
	p.callMu.Lock()
	defer p.callMu.Unlock()

	res, err := p.Runner.Run(ctx, p.Paths.Executable, []string{"-c", importScript, module}, pyenv.RunOptions{Env: p.env()})
	if err != nil {
		if msg := lastLine(string(res.Stderr)); msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}
	return nil
}

func (p *PythonImporter) SearchPath(ctx context.Context) ([]string, error) {
	p.callMu.Lock()
	defer p.callMu.Unlock()

	res, err := p.Runner.Run(ctx, p.Paths.Executable, []string{"-c", searchPathScript}, pyenv.RunOptions{Env: p.env()})
	if err != nil {
		return nil, fmt.Errorf("read sys.path: %w", err)
	}
	var entries []string
	if err := json.Unmarshal(res.Stdout, &entries); err != nil {
		return nil, fmt.Errorf("decode sys.path: %w", err)
	}
	return entries, nil
}

// lastLine returns the final non-empty line, which for a Python traceback is
// the exception message.
func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Importer = (*PythonImporter)(nil)
