package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"bombie/internal/pyenv"
)

type call struct {
	command string
	args    []string
	env     []string
}

type fakeRunner struct {
	calls []call
	fail  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, opts pyenv.RunOptions) (pyenv.RunResult, error) {
	f.calls = append(f.calls, call{command: command, args: args, env: opts.Env})
	step := args[2]
	if err := f.fail[step]; err != nil {
		return pyenv.RunResult{Stderr: []byte(step + " failed loudly")}, err
	}
	return pyenv.RunResult{}, nil
}

func testPaths(t *testing.T) pyenv.ResolvedPaths {
	t.Helper()
	root := t.TempDir()
	return pyenv.Layout(pyenv.Descriptor{Root: root, EnvDir: filepath.Join(root, "python_env")}, "3.12", "linux", "/usr/bin")
}

func TestInstalled(t *testing.T) {
	cache := t.TempDir()

	ok, err := Installed(filepath.Join(cache, "missing"), "chromium")
	if err != nil || ok {
		t.Fatalf("missing cache: ok=%v err=%v", ok, err)
	}

	if err := os.Mkdir(filepath.Join(cache, "firefox-1400"), 0o755); err != nil {
		t.Fatal(err)
	}
	if ok, _ := Installed(cache, "chromium"); ok {
		t.Fatalf("other browser should not count")
	}

	if err := os.Mkdir(filepath.Join(cache, "chromium-1091"), 0o755); err != nil {
		t.Fatal(err)
	}
	if ok, _ := Installed(cache, "chromium"); !ok {
		t.Fatalf("expected chromium to be present")
	}
}

func TestEnsureAssetsSkipsPresentBrowser(t *testing.T) {
	rp := testPaths(t)
	if err := os.MkdirAll(filepath.Join(rp.BinaryCache, "chromium-123"), 0o755); err != nil {
		t.Fatal(err)
	}
	fr := &fakeRunner{}

	if err := (Provisioner{Runner: fr, InstallDeps: true}).EnsureAssets(context.Background(), rp, "chromium"); err != nil {
		t.Fatalf("EnsureAssets: %v", err)
	}
	if len(fr.calls) != 0 {
		t.Fatalf("expected no subprocesses, got %d", len(fr.calls))
	}
}

func TestEnsureAssetsInstalls(t *testing.T) {
	rp := testPaths(t)
	fr := &fakeRunner{}

	if err := (Provisioner{Runner: fr, InstallDeps: true}).EnsureAssets(context.Background(), rp, "chromium"); err != nil {
		t.Fatalf("EnsureAssets: %v", err)
	}

	want := [][]string{
		{"-m", "playwright", "install", "chromium"},
		{"-m", "playwright", "install-deps", "chromium"},
	}
	if len(fr.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(fr.calls))
	}
	for i, c := range fr.calls {
		if c.command != rp.Executable {
			t.Errorf("call %d ran %q", i, c.command)
		}
		if !reflect.DeepEqual(c.args, want[i]) {
			t.Errorf("call %d args = %v", i, c.args)
		}
		if !reflect.DeepEqual(c.env, rp.Environ()) {
			t.Errorf("call %d missing environment variables", i)
		}
	}
	if _, err := os.Stat(filepath.Join(rp.BinaryCache, MarkerName("chromium"))); err != nil {
		t.Fatalf("marker not written: %v", err)
	}
}

func TestEnsureAssetsWithoutSystemDeps(t *testing.T) {
	rp := testPaths(t)
	fr := &fakeRunner{}

	if err := (Provisioner{Runner: fr}).EnsureAssets(context.Background(), rp, "firefox"); err != nil {
		t.Fatalf("EnsureAssets: %v", err)
	}
	if len(fr.calls) != 1 {
		t.Fatalf("expected only the browser install, got %d calls", len(fr.calls))
	}
}

func TestEnsureAssetsFailures(t *testing.T) {
	tests := []struct {
		step string
		want error
	}{
		{step: "install", want: pyenv.ErrAssetInstallFailed},
		{step: "install-deps", want: pyenv.ErrAssetDepsInstallFailed},
	}
	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			rp := testPaths(t)
			fr := &fakeRunner{fail: map[string]error{tt.step: errors.New("exit status 1")}}

			err := (Provisioner{Runner: fr, InstallDeps: true}).EnsureAssets(context.Background(), rp, "chromium")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if _, statErr := os.Stat(filepath.Join(rp.BinaryCache, MarkerName("chromium"))); !os.IsNotExist(statErr) {
				t.Fatalf("marker written after failure")
			}
		})
	}
}

func TestEnsureAssetsStrictMarker(t *testing.T) {
	rp := testPaths(t)
	if err := os.MkdirAll(filepath.Join(rp.BinaryCache, "chromium-123"), 0o755); err != nil {
		t.Fatal(err)
	}
	fr := &fakeRunner{}
	p := Provisioner{Runner: fr, StrictMarker: true}

	if err := p.EnsureAssets(context.Background(), rp, "chromium"); err != nil {
		t.Fatalf("EnsureAssets: %v", err)
	}
	if len(fr.calls) != 1 {
		t.Fatalf("unmarked cache should be reinstalled, got %d calls", len(fr.calls))
	}

	fr.calls = nil
	if err := p.EnsureAssets(context.Background(), rp, "chromium"); err != nil {
		t.Fatalf("EnsureAssets: %v", err)
	}
	if len(fr.calls) != 0 {
		t.Fatalf("marked cache reinstalled")
	}
}
