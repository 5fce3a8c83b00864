// Package imports checks that installed distributions can actually be
// imported by the environment's interpreter.
package imports

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"bombie/internal/pyenv"
)

// ResolutionError lists every module name tried for a package.
type ResolutionError struct {
	Package    string
	Candidates [3]string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot import %s (tried %s): %v", e.Package, strings.Join(e.Candidates[:], ", "), e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ProgressReporter observes a verification pass.
type ProgressReporter interface {
	Start(pkg string)
	Complete(pkg, module string, err error)
}

// Verifier resolves package names to importable modules.
type Verifier struct {
	Importer Importer
	Aliases  Aliases
	Logger   *log.Logger
	Reporter ProgressReporter
}

func (v Verifier) logger() *log.Logger {
	if v.Logger != nil {
		return v.Logger
	}
	return log.Default()
}

// Verify imports pkg and returns the module name that worked. Names are tried
// lazily: alias, literal, then underscored. A name already tried is skipped.
func (v Verifier) Verify(ctx context.Context, pkg string) (string, error) {
	if v.Reporter != nil {
		v.Reporter.Start(pkg)
	}
	module, err := v.resolve(ctx, pkg)
	if v.Reporter != nil {
		v.Reporter.Complete(pkg, module, err)
	}
	return module, err
}

func (v Verifier) resolve(ctx context.Context, pkg string) (string, error) {
	candidates := v.Aliases.Candidates(pkg)

	var lastErr error
	tried := make(map[string]bool, len(candidates))
	for _, module := range candidates {
		if tried[module] {
			continue
		}
		tried[module] = true
		if err := ctx.Err(); err != nil {
			return "", err
		}
		err := v.Importer.Import(ctx, module)
		if err == nil {
			v.logger().Debug("import ok", "package", pkg, "module", module)
			return module, nil
		}
		v.logger().Debug("import failed", "package", pkg, "module", module, "err", err)
		lastErr = err
	}

	return "", &pyenv.Error{
		Kind: pyenv.KindImportResolutionFailed,
		Op:   "verify import of",
		Path: pkg,
		Err:  &ResolutionError{Package: pkg, Candidates: candidates, Err: lastErr},
	}
}

// VerifyCritical verifies a package the application cannot start without.
// Failure is reported as CriticalDependencyMissing.
func (v Verifier) VerifyCritical(ctx context.Context, pkg string) error {
	if _, err := v.Verify(ctx, pkg); err != nil {
		if pyenv.KindOf(err) != pyenv.KindImportResolutionFailed {
			return err
		}
		cause := err.(*pyenv.Error).Err
		return &pyenv.Error{Kind: pyenv.KindCriticalDependencyMissing, Op: "critical dependency missing:", Path: pkg, Err: cause}
	}
	return nil
}

// VerifyAll verifies packages in order and stops at the first failure.
func (v Verifier) VerifyAll(ctx context.Context, pkgs []string) error {
	for _, pkg := range pkgs {
		if _, err := v.Verify(ctx, pkg); err != nil {
			return err
		}
	}
	v.logger().Info("imports verified", "count", len(pkgs))
	return nil
}
