package pyenv

import (
	"errors"
	"strings"
)

// Kind classifies a provisioning failure. Every kind is terminal for the
// current invocation; re-running after manual intervention is the retry.
type Kind string

const (
	KindInterpreterMissing          Kind = "InterpreterMissing"
	KindEnvironmentCreationFailed   Kind = "EnvironmentCreationFailed"
	KindPackageManagerUpgradeFailed Kind = "PackageManagerUpgradeFailed"
	KindEnvironmentIncomplete       Kind = "EnvironmentIncomplete"
	KindVersionDetectionFailed      Kind = "VersionDetectionFailed"
	KindSitePackagesMissing         Kind = "SitePackagesMissing"
	KindDependencyInstallFailed     Kind = "DependencyInstallFailed"
	KindAssetInstallFailed          Kind = "AssetInstallFailed"
	KindAssetDepsInstallFailed      Kind = "AssetDepsInstallFailed"
	KindCriticalDependencyMissing   Kind = "CriticalDependencyMissing"
	KindImportResolutionFailed      Kind = "ImportResolutionFailed"
	KindManifestUnreadable          Kind = "ManifestUnreadable"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrInterpreterMissing          = &Error{Kind: KindInterpreterMissing}
	ErrEnvironmentCreationFailed   = &Error{Kind: KindEnvironmentCreationFailed}
	ErrPackageManagerUpgradeFailed = &Error{Kind: KindPackageManagerUpgradeFailed}
	ErrEnvironmentIncomplete       = &Error{Kind: KindEnvironmentIncomplete}
	ErrVersionDetectionFailed      = &Error{Kind: KindVersionDetectionFailed}
	ErrSitePackagesMissing         = &Error{Kind: KindSitePackagesMissing}
	ErrDependencyInstallFailed     = &Error{Kind: KindDependencyInstallFailed}
	ErrAssetInstallFailed          = &Error{Kind: KindAssetInstallFailed}
	ErrAssetDepsInstallFailed      = &Error{Kind: KindAssetDepsInstallFailed}
	ErrCriticalDependencyMissing   = &Error{Kind: KindCriticalDependencyMissing}
	ErrImportResolutionFailed      = &Error{Kind: KindImportResolutionFailed}
	ErrManifestUnreadable          = &Error{Kind: KindManifestUnreadable}
)

// Error is a provisioning failure with the diagnostic output of the step
// that failed.
type Error struct {
	Kind   Kind
	Op     string
	Path   string
	Output string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Op == "" {
		b.WriteString(string(e.Kind))
	}
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the package sentinels work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or "".
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func newError(kind Kind, op, path string, output []byte, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Output: string(output), Err: err}
}
