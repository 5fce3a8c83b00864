package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bombie/internal/config"
)

func TestResolveInitDir(t *testing.T) {
	t.Run("project flag takes precedence", func(t *testing.T) {
		dir, err := resolveInitDir("/custom/path", []string{"ignored"})
		if err != nil {
			t.Fatal(err)
		}
		if dir != "/custom/path" {
			t.Fatalf("got %s, want /custom/path", dir)
		}
	})

	t.Run("dot uses cwd", func(t *testing.T) {
		cwd, _ := os.Getwd()
		dir, err := resolveInitDir("", []string{"."})
		if err != nil {
			t.Fatal(err)
		}
		if dir != cwd {
			t.Fatalf("got %s, want %s", dir, cwd)
		}
	})

	t.Run("named arg creates subdirectory", func(t *testing.T) {
		cwd, _ := os.Getwd()
		dir, err := resolveInitDir("", []string{"my-project"})
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(cwd, "my-project"); dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})
}

func TestInitWritesDefaults(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")

	out, err := execute(t, "init", "--project", root)
	if err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}

	cfg, err := config.Load(filepath.Join(root, "bombie.yaml"))
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Assets.Browser != "chromium" {
		t.Fatalf("browser = %q", cfg.Assets.Browser)
	}
	data, err := os.ReadFile(filepath.Join(root, "requirements.txt"))
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("manifest should start empty, got %q", data)
	}
	if _, err := os.Stat(filepath.Join(root, "src", "python")); err != nil {
		t.Fatalf("scripts dir missing: %v", err)
	}
	if !strings.Contains(out, "2 files created") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInitKeepsExistingFiles(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "requirements.txt")
	if err := os.WriteFile(manifest, []byte("playwright\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "init", "--project", root)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	data, _ := os.ReadFile(manifest)
	if string(data) != "playwright\n" {
		t.Fatalf("existing manifest overwritten: %q", data)
	}
	if !strings.Contains(out, "exists  "+manifest) {
		t.Fatalf("unexpected output %q", out)
	}
}
