package logx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bombie/internal/paths"
)

func TestNewWritesFileAndConsole(t *testing.T) {
	root := t.TempDir()
	pp, err := paths.Resolve(root)
	if err != nil {
		t.Fatal(err)
	}
	var console bytes.Buffer

	s, err := New(pp, Options{Level: "info", Console: &console, RunID: "abc123"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Logger.Info("environment ready", "python", "3.12")
	s.Logger.Debug("hidden")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, out := range []string{string(data), console.String()} {
		if !strings.Contains(out, "environment ready") || !strings.Contains(out, "abc123") {
			t.Errorf("record missing from %q", out)
		}
		if strings.Contains(out, "hidden") {
			t.Errorf("debug record leaked at info level")
		}
	}
	if filepath.Dir(s.Path) != pp.LogsDir {
		t.Errorf("log written to %s", s.Path)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	pp, _ := paths.Resolve(t.TempDir())
	if _, err := New(pp, Options{Level: "loud"}); err == nil {
		t.Fatal("expected level error")
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if len(a) != 8 || a == b {
		t.Fatalf("run ids %q %q", a, b)
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.log", "b.log", "keep.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	n, err := Clear(dir)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed %d files", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.txt")); err != nil {
		t.Fatalf("non-log file removed")
	}

	if n, err := Clear(filepath.Join(dir, "missing")); err != nil || n != 0 {
		t.Fatalf("missing dir: n=%d err=%v", n, err)
	}
}
