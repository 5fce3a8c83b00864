// Package provision runs the full environment provisioning sequence for a
// project: manifest, environment, paths, dependencies, browser assets and
// import verification.
package provision

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"bombie/internal/pyenv"
)

// EnvironmentBuilder creates the isolated environment when it is absent.
type EnvironmentBuilder interface {
	EnsureExists(ctx context.Context, d pyenv.Descriptor) error
}

// PathResolver derives the environment's paths.
type PathResolver interface {
	Resolve(ctx context.Context, d pyenv.Descriptor) (pyenv.ResolvedPaths, error)
}

// DependencyInstaller installs the manifest into the environment.
type DependencyInstaller interface {
	Install(ctx context.Context, rp pyenv.ResolvedPaths, manifest string) error
}

// AssetProvisioner installs the browser binaries.
type AssetProvisioner interface {
	EnsureAssets(ctx context.Context, rp pyenv.ResolvedPaths, browser string) error
}

// ImportVerifier checks that packages are importable.
type ImportVerifier interface {
	VerifyCritical(ctx context.Context, pkg string) error
	VerifyAll(ctx context.Context, pkgs []string) error
}

// Result is what a successful run leaves behind.
type Result struct {
	Paths    pyenv.ResolvedPaths
	Packages []string
}

// Provisioner wires the stages together. Each stage runs only after the
// previous one succeeded; the first error ends the run.
type Provisioner struct {
	Descriptor pyenv.Descriptor

	ParseManifest func(path string) ([]string, error)
	Builder       EnvironmentBuilder
	Resolver      PathResolver
	Installer     DependencyInstaller
	Assets        AssetProvisioner
	// NewVerifier builds the verifier once the environment paths are known.
	NewVerifier func(ctx context.Context, rp pyenv.ResolvedPaths) (ImportVerifier, error)
	// Export publishes the environment variables to the current process.
	// Nil leaves the process environment untouched.
	Export func(rp pyenv.ResolvedPaths) error

	Browser  string
	Critical []string
	// LockFile, when set, is held for the whole run.
	LockFile string
	Logger   *log.Logger
}

func (p *Provisioner) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}

// Run provisions the environment and verifies its imports.
func (p *Provisioner) Run(ctx context.Context) (Result, error) {
	logger := p.logger()

	if p.LockFile != "" {
		lock, err := pyenv.AcquireLock(ctx, p.LockFile)
		if err != nil {
			return Result{}, err
		}
		defer lock.Release()
	}

	pkgs, err := p.ParseManifest(p.Descriptor.Manifest)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("manifest parsed", "packages", len(pkgs))

	if err := p.Builder.EnsureExists(ctx, p.Descriptor); err != nil {
		return Result{}, err
	}

	rp, err := p.Resolver.Resolve(ctx, p.Descriptor)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("environment resolved", "python", rp.Version, "site_packages", rp.SitePackages)

	if p.Export != nil {
		if err := p.Export(rp); err != nil {
			return Result{}, fmt.Errorf("export environment: %w", err)
		}
	}

	if err := p.Installer.Install(ctx, rp, p.Descriptor.Manifest); err != nil {
		return Result{}, err
	}

	if err := p.Assets.EnsureAssets(ctx, rp, p.Browser); err != nil {
		return Result{}, err
	}

	verifier, err := p.NewVerifier(ctx, rp)
	if err != nil {
		return Result{}, err
	}
	for _, pkg := range p.Critical {
		if err := verifier.VerifyCritical(ctx, pkg); err != nil {
			return Result{}, err
		}
	}
	if err := verifier.VerifyAll(ctx, pkgs); err != nil {
		return Result{}, err
	}

	logger.Info("environment ready", "dir", rp.EnvDir, "python", rp.Version)
	return Result{Paths: rp, Packages: pkgs}, nil
}

// ExportProcess sets the environment variables on the current process. The
// change lasts for the rest of the process.
func ExportProcess(rp pyenv.ResolvedPaths) error {
	return rp.Export(os.Setenv)
}
