package cli

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"bombie/internal/pyenv"
)

type versionRunner struct{}

func (versionRunner) Run(_ context.Context, _ string, args []string, _ pyenv.RunOptions) (pyenv.RunResult, error) {
	if len(args) == 1 && args[0] == "--version" {
		return pyenv.RunResult{Stdout: []byte("Python 3.12.4\n")}, nil
	}
	return pyenv.RunResult{}, nil
}

// stubTools replaces subprocesses and PATH lookups for the duration of a test.
func stubTools(t *testing.T, found bool) {
	t.Helper()
	prevRunner, prevLook := newRunner, lookPath
	newRunner = func() pyenv.Runner { return versionRunner{} }
	lookPath = func(name string) (string, error) {
		if !found {
			return "", exec.ErrNotFound
		}
		return filepath.Join("/usr/bin", name), nil
	}
	t.Cleanup(func() { newRunner, lookPath = prevRunner, prevLook })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
