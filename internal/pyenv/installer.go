package pyenv

import (
	"context"

	"github.com/charmbracelet/log"
)

// Installer installs a requirements manifest with the environment's pip.
// pip is idempotent, so a failed run is simply repeated in full.
type Installer struct {
	Runner  Runner
	Streams Streams
	Logger  *log.Logger
}

// Install runs `pip install -r manifest`. Any non-zero exit is a single
// DependencyInstallFailed; per-package results are not inspected.
func (i Installer) Install(ctx context.Context, rp ResolvedPaths, manifest string) error {
	if i.Logger != nil {
		i.Logger.Info("installing dependencies", "manifest", manifest)
	}
	res, err := i.Runner.Run(ctx, rp.PackageManager, []string{"install", "-r", manifest}, i.Streams.runOptions(rp.Environ()))
	if err != nil {
		return newError(KindDependencyInstallFailed, "install dependencies from", manifest, res.Combined(), err)
	}
	return nil
}
