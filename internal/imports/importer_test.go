package imports

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"bombie/internal/pyenv"
)

type captureRunner struct {
	args   []string
	env    []string
	result pyenv.RunResult
	err    error
}

func (c *captureRunner) Run(_ context.Context, _ string, args []string, opts pyenv.RunOptions) (pyenv.RunResult, error) {
	c.args, c.env = args, opts.Env
	return c.result, c.err
}

func testResolved() pyenv.ResolvedPaths {
	return pyenv.Layout(pyenv.Descriptor{Root: "/r", EnvDir: "/r/python_env"}, "3.12", "linux", "/usr/bin")
}

func envValue(env []string, key string) string {
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}

func TestPythonImporterAppendsSearchPath(t *testing.T) {
	r := &captureRunner{}
	imp := NewPythonImporter(r, testResolved())
	imp.AppendPath("/r/src/python")

	if err := imp.Import(context.Background(), "bombie"); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if r.args[len(r.args)-1] != "bombie" {
		t.Fatalf("module not passed as argument: %v", r.args)
	}
	want := "/r/python_env/lib/python3.12/site-packages" + string(os.PathListSeparator) + "/r/src/python"
	if got := envValue(r.env, "PYTHONPATH"); got != want {
		t.Fatalf("PYTHONPATH = %q, want %q", got, want)
	}
}

func TestPythonImporterReportsException(t *testing.T) {
	r := &captureRunner{
		result: pyenv.RunResult{Stderr: []byte("Traceback (most recent call last):\n  ...\nModuleNotFoundError: No module named 'nope'\n")},
		err:    errors.New("exit status 1"),
	}
	err := NewPythonImporter(r, testResolved()).Import(context.Background(), "nope")
	if err == nil || !strings.HasPrefix(err.Error(), "ModuleNotFoundError") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestPythonImporterSearchPath(t *testing.T) {
	r := &captureRunner{result: pyenv.RunResult{Stdout: []byte("[\"\", \"/r/src/python\", \"/usr/lib/python312.zip\"]\n")}}
	got, err := NewPythonImporter(r, testResolved()).SearchPath(context.Background())
	if err != nil {
		t.Fatalf("SearchPath: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"", "/r/src/python", "/usr/lib/python312.zip"}) {
		t.Fatalf("SearchPath = %v", got)
	}
}
