// Package automation starts the Python workload once the environment is
// ready.
package automation

import (
	"context"
	"os"
	"strings"

	"bombie/internal/pyenv"
)

// Workflow is the post-provisioning workload.
type Workflow interface {
	Run(ctx context.Context) error
}

// ModuleWorkflow runs `python -m Module` from the project root with the
// environment's variables. The scripts directory is appended to PYTHONPATH.
type ModuleWorkflow struct {
	Runner     pyenv.Runner
	Paths      pyenv.ResolvedPaths
	Module     string
	ScriptsDir string
	Args       []string
	Streams    pyenv.Streams
}

// Run starts the module and returns its error unchanged.
func (w ModuleWorkflow) Run(ctx context.Context) error {
	args := append([]string{"-m", w.Module}, w.Args...)
	_, err := w.Runner.Run(ctx, w.Paths.Executable, args, pyenv.RunOptions{
		Dir:    w.Paths.Root,
		Env:    w.environ(),
		Stdout: w.Streams.Stdout,
		Stderr: w.Streams.Stderr,
	})
	return err
}

func (w ModuleWorkflow) environ() []string {
	env := w.Paths.Environ()
	if w.ScriptsDir == "" {
		return env
	}
	for i, kv := range env {
		if value, ok := strings.CutPrefix(kv, "PYTHONPATH="); ok {
			env[i] = "PYTHONPATH=" + value + string(os.PathListSeparator) + w.ScriptsDir
		}
	}
	return env
}

var _ Workflow = ModuleWorkflow{}
