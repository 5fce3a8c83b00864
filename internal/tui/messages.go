package tui

// PackageStartMsg marks a package whose import is being attempted.
type PackageStartMsg struct {
	Package string
}

// PackageDoneMsg reports the outcome of one package's verification.
type PackageDoneMsg struct {
	Package string
	Module  string
	Err     error
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}
