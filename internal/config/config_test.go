package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "bombie.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Python.EnvDir != want.Python.EnvDir {
		t.Fatalf("expected env dir %q, got %q", want.Python.EnvDir, cfg.Python.EnvDir)
	}
	if cfg.Assets.Browser != "chromium" {
		t.Fatalf("expected browser chromium, got %q", cfg.Assets.Browser)
	}
	if !cfg.Assets.InstallDeps {
		t.Fatal("expected install_deps default true")
	}
	if cfg.Verify.Critical != "playwright" {
		t.Fatalf("expected critical playwright, got %q", cfg.Verify.Critical)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bombie.yaml")
	contents := `
python:
  env_dir: venv
assets:
  browser: firefox
  install_deps: false
verify:
  aliases:
    opencv-contrib-python: cv2
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Python.EnvDir != "venv" {
		t.Fatalf("expected env dir venv, got %q", cfg.Python.EnvDir)
	}
	if cfg.Assets.Browser != "firefox" {
		t.Fatalf("expected browser firefox, got %q", cfg.Assets.Browser)
	}
	if cfg.Assets.InstallDeps {
		t.Fatal("expected install_deps false")
	}
	if cfg.Verify.Aliases["opencv-contrib-python"] != "cv2" {
		t.Fatalf("expected alias for opencv-contrib-python, got %v", cfg.Verify.Aliases)
	}
	// Untouched keys keep their defaults.
	if cfg.Manifest.File != "requirements.txt" {
		t.Fatalf("expected default manifest file, got %q", cfg.Manifest.File)
	}
}

func TestLoadDottedAliasKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bombie.yaml")
	contents := `
verify:
  aliases:
    zope.interface: zope.interface
    ruamel.yaml: ruamel.yaml
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := map[string]string{"zope.interface": "zope.interface", "ruamel.yaml": "ruamel.yaml"}
	if !reflect.DeepEqual(cfg.Verify.Aliases, want) {
		t.Fatalf("aliases = %v, want %v", cfg.Verify.Aliases, want)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BOMBIE_ASSETS_BROWSER", "webkit")
	t.Setenv("BOMBIE_LOGS_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Assets.Browser != "webkit" {
		t.Fatalf("expected env override webkit, got %q", cfg.Assets.Browser)
	}
	if cfg.Logs.Level != "debug" {
		t.Fatalf("expected env override debug, got %q", cfg.Logs.Level)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bombie.yaml")
	if err := os.WriteFile(path, []byte("python: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestSaveRoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bombie.yaml")
	cfg := Default()
	cfg.Automation.Module = "runner"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Automation.Module != "runner" {
		t.Fatalf("expected module runner, got %q", loaded.Automation.Module)
	}
}

func TestDefaultInterpreter(t *testing.T) {
	if got := DefaultInterpreter("windows"); got != "python" {
		t.Fatalf("windows: got %q", got)
	}
	if got := DefaultInterpreter("linux"); got != "python3" {
		t.Fatalf("linux: got %q", got)
	}
}

func TestCriticalPackages(t *testing.T) {
	cfg := Default()
	cfg.Verify.ExtraCritical = []string{"telethon", "", "playwright", " numpy "}
	got := cfg.CriticalPackages()
	want := []string{"playwright", "telethon", "numpy"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	loaded, err := LoadDotEnv(path)
	if err != nil || loaded {
		t.Fatalf("missing file: loaded=%v err=%v", loaded, err)
	}

	if err := os.WriteFile(path, []byte("BOMBIE_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOMBIE_TEST_DOTENV", "")
	os.Unsetenv("BOMBIE_TEST_DOTENV")

	loaded, err = LoadDotEnv(path)
	if err != nil || !loaded {
		t.Fatalf("present file: loaded=%v err=%v", loaded, err)
	}
	if got := os.Getenv("BOMBIE_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected from-file, got %q", got)
	}
}
