package pyenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"bombie/internal/paths"
)

// ReadyMarker is written into the environment after a complete build.
const ReadyMarker = ".bombie-ready"

// Builder creates the isolated environment and bootstraps its package
// manager.
type Builder struct {
	Runner      Runner
	Streams     Streams
	Logger      *log.Logger
	LookPath    func(string) (string, error)
	Interpreter string
	MinVersion  string
	GOOS        string
	// StrictMarker rejects an existing environment directory that lacks
	// ReadyMarker instead of trusting its presence.
	StrictMarker bool
}

func (b Builder) goos() string {
	if b.GOOS != "" {
		return b.GOOS
	}
	return runtime.GOOS
}

func (b Builder) logger() *log.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return log.Default()
}

// EnsureExists builds the environment unless its directory already exists.
// A failed build is not rolled back.
func (b Builder) EnsureExists(ctx context.Context, d Descriptor) error {
	exists, err := paths.DirExists(d.EnvDir)
	if err != nil {
		return fmt.Errorf("stat environment: %w", err)
	}
	if exists {
		if b.StrictMarker {
			ready, err := paths.FileExists(filepath.Join(d.EnvDir, ReadyMarker))
			if err != nil {
				return fmt.Errorf("stat ready marker: %w", err)
			}
			if !ready {
				return newError(KindEnvironmentIncomplete, "environment has no ready marker; remove it and rerun:", d.EnvDir, nil, nil)
			}
		}
		b.logger().Debug("environment present", "dir", d.EnvDir)
		return nil
	}

	b.logger().Info("creating python environment", "dir", d.EnvDir)

	python, version, err := b.locateInterpreter(ctx)
	if err != nil {
		return err
	}
	b.logger().Debug("using interpreter", "path", python, "version", version)

	res, err := b.Runner.Run(ctx, python, []string{"-m", "venv", d.EnvDir}, b.Streams.runOptions(nil))
	if err != nil {
		return newError(KindEnvironmentCreationFailed, "create environment", d.EnvDir, res.Combined(), err)
	}
	b.logger().Info("environment created", "dir", d.EnvDir)

	pip := PipExecutable(d.EnvDir, b.goos())
	res, err = b.Runner.Run(ctx, pip, []string{"install", "--upgrade", "pip"}, b.Streams.runOptions(nil))
	if err != nil {
		return newError(KindPackageManagerUpgradeFailed, "upgrade pip", pip, res.Combined(), err)
	}
	b.logger().Info("pip upgraded")

	marker := filepath.Join(d.EnvDir, ReadyMarker)
	stamp := time.Now().UTC().Format(time.RFC3339) + " python " + version + "\n"
	if err := os.WriteFile(marker, []byte(stamp), 0o644); err != nil {
		return fmt.Errorf("write ready marker: %w", err)
	}
	return nil
}

func (b Builder) locateInterpreter(ctx context.Context) (string, string, error) {
	name := b.Interpreter
	if name == "" {
		if b.goos() == "windows" {
			name = "python"
		} else {
			name = "python3"
		}
	}
	lookPath := b.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	path, err := lookPath(name)
	if err != nil {
		return "", "", newError(KindInterpreterMissing, "locate interpreter", name, nil, err)
	}

	version, err := ProbeVersion(ctx, b.Runner, path)
	if err != nil {
		pe := err.(*Error)
		pe.Kind = KindInterpreterMissing
		return "", "", pe
	}
	if !MeetsMinimum(version, b.MinVersion) {
		return "", "", newError(KindInterpreterMissing, "locate interpreter", path, nil,
			fmt.Errorf("python %s is older than required %s", version, b.MinVersion))
	}
	return path, version, nil
}
