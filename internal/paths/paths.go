package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bombie/internal/config"
)

// ProjectPaths captures canonical locations for a bombie project.
type ProjectPaths struct {
	Root         string
	ConfigFile   string
	EnvFile      string
	ManifestFile string
	EnvDir       string
	ScriptsDir   string
	AssetsDir    string
	LogsDir      string
	LockFile     string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	envDir := filepath.Join(root, "python_env")
	return ProjectPaths{
		Root:         root,
		ConfigFile:   filepath.Join(root, "bombie.yaml"),
		EnvFile:      filepath.Join(root, ".env"),
		ManifestFile: filepath.Join(root, "requirements.txt"),
		EnvDir:       envDir,
		ScriptsDir:   filepath.Join(root, "src", "python"),
		AssetsDir:    filepath.Join(envDir, "playwright-cache"),
		LogsDir:      filepath.Join(root, "logs"),
		LockFile:     filepath.Join(root, ".bombie.lock"),
	}
}

// ApplyConfig rebases configurable locations onto the project root.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	if envDir := strings.TrimSpace(cfg.Python.EnvDir); envDir != "" {
		pp.EnvDir = resolveProjectPath(pp.Root, envDir)
		pp.AssetsDir = filepath.Join(pp.EnvDir, "playwright-cache")
	}
	if scripts := strings.TrimSpace(cfg.Python.ScriptsDir); scripts != "" {
		pp.ScriptsDir = resolveProjectPath(pp.Root, scripts)
	}
	if manifest := strings.TrimSpace(cfg.Manifest.File); manifest != "" {
		pp.ManifestFile = resolveProjectPath(pp.Root, manifest)
	}
	// The asset cache is the one location allowed outside the environment.
	if cache := strings.TrimSpace(cfg.Assets.CacheDir); cache != "" {
		pp.AssetsDir = resolveProjectPath(pp.Root, cache)
	}
	if logs := strings.TrimSpace(cfg.Logs.Dir); logs != "" {
		pp.LogsDir = resolveProjectPath(pp.Root, logs)
	}
	return pp
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// EnsureLogsDir creates the logs directory.
func (p ProjectPaths) EnsureLogsDir() error {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", p.LogsDir, err)
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
