package pyenv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

type runCall struct {
	kind    string
	command string
	args    []string
	env     []string
}

// fakeRunner stands in for python/pip. A venv call lays out a minimal
// environment for the host platform so Resolve can succeed afterwards.
type fakeRunner struct {
	version string
	fail    map[string]error
	calls   []runCall
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{version: "Python 3.12.4", fail: map[string]error{}}
}

func classify(args []string) string {
	switch {
	case len(args) >= 1 && args[0] == "--version":
		return "version"
	case len(args) >= 2 && args[0] == "-m" && args[1] == "venv":
		return "venv"
	case len(args) >= 3 && args[0] == "install" && args[1] == "--upgrade":
		return "upgrade"
	case len(args) >= 2 && args[0] == "install" && args[1] == "-r":
		return "install"
	default:
		return "other"
	}
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	kind := classify(args)
	f.calls = append(f.calls, runCall{kind: kind, command: command, args: append([]string(nil), args...), env: opts.Env})

	if err := f.fail[kind]; err != nil {
		return RunResult{Stderr: []byte(kind + " exploded")}, err
	}

	switch kind {
	case "version":
		return RunResult{Stdout: []byte(f.version + "\n")}, nil
	case "venv":
		envDir := args[2]
		site := SitePackages(envDir, "3.12", runtime.GOOS)
		if err := os.MkdirAll(site, 0o755); err != nil {
			return RunResult{}, err
		}
		if err := os.MkdirAll(BinDir(envDir, runtime.GOOS), 0o755); err != nil {
			return RunResult{}, err
		}
		return RunResult{Stdout: []byte("created\n")}, nil
	}
	return RunResult{}, nil
}

func (f *fakeRunner) count(kind string) int {
	n := 0
	for _, c := range f.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

var errExit = errors.New("exit status 1")

func testDescriptor(root string) Descriptor {
	return Descriptor{
		Root:     root,
		EnvDir:   filepath.Join(root, "python_env"),
		Manifest: filepath.Join(root, "requirements.txt"),
	}
}

func stubLookPath(name string) (string, error) {
	return filepath.Join("/usr/bin", name), nil
}
