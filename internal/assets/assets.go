// Package assets installs the browser binaries the automation drives.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"bombie/internal/paths"
	"bombie/internal/pyenv"
)

// MarkerName returns the completion marker written after a browser install.
func MarkerName(browser string) string {
	return ".bombie-" + browser + "-ready"
}

// Installed reports whether the cache holds an entry named "<browser>-*".
// Presence is trusted; the entry's contents are not inspected.
func Installed(cacheDir, browser string) (bool, error) {
	matches, err := doublestar.Glob(os.DirFS(cacheDir), browser+"-*")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("scan %s: %w", cacheDir, err)
	}
	return len(matches) > 0, nil
}

// Provisioner installs a browser and its system libraries into the
// environment's binary cache.
type Provisioner struct {
	Runner  pyenv.Runner
	Streams pyenv.Streams
	Logger  *log.Logger
	// InstallDeps runs `playwright install-deps` after the browser download.
	InstallDeps bool
	// StrictMarker requires the completion marker as well as a cache match.
	StrictMarker bool
}

func (p Provisioner) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}

// EnsureAssets installs browser unless the cache already has it. Both install
// steps run with the environment's variables so the binaries land in
// rp.BinaryCache.
func (p Provisioner) EnsureAssets(ctx context.Context, rp pyenv.ResolvedPaths, browser string) error {
	present, err := p.present(rp.BinaryCache, browser)
	if err != nil {
		return err
	}
	if present {
		p.logger().Debug("browser present", "browser", browser, "cache", rp.BinaryCache)
		return nil
	}

	if err := os.MkdirAll(rp.BinaryCache, 0o755); err != nil {
		return fmt.Errorf("create browser cache: %w", err)
	}

	p.logger().Info("installing browser", "browser", browser, "cache", rp.BinaryCache)
	opts := pyenv.RunOptions{Env: rp.Environ(), Stdout: p.Streams.Stdout, Stderr: p.Streams.Stderr}

	res, err := p.Runner.Run(ctx, rp.Executable, []string{"-m", "playwright", "install", browser}, opts)
	if err != nil {
		return &pyenv.Error{Kind: pyenv.KindAssetInstallFailed, Op: "install browser", Path: browser, Output: string(res.Combined()), Err: err}
	}

	if p.InstallDeps {
		p.logger().Info("installing browser system dependencies", "browser", browser)
		res, err = p.Runner.Run(ctx, rp.Executable, []string{"-m", "playwright", "install-deps", browser}, opts)
		if err != nil {
			return &pyenv.Error{Kind: pyenv.KindAssetDepsInstallFailed, Op: "install browser system dependencies for", Path: browser, Output: string(res.Combined()), Err: err}
		}
	}

	marker := filepath.Join(rp.BinaryCache, MarkerName(browser))
	if err := os.WriteFile(marker, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write browser marker: %w", err)
	}
	p.logger().Info("browser installed", "browser", browser)
	return nil
}

func (p Provisioner) present(cacheDir, browser string) (bool, error) {
	ok, err := Installed(cacheDir, browser)
	if err != nil || !ok || !p.StrictMarker {
		return ok, err
	}
	return paths.FileExists(filepath.Join(cacheDir, MarkerName(browser)))
}
