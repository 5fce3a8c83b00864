package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"bombie/internal/imports"
)

// ImportReporter forwards verification progress to a running program.
type ImportReporter struct {
	send func(tea.Msg)
}

// NewImportReporter returns a reporter that delivers messages through send.
func NewImportReporter(send func(tea.Msg)) *ImportReporter {
	return &ImportReporter{send: send}
}

// Start implements imports.ProgressReporter.
func (r *ImportReporter) Start(pkg string) {
	r.send(PackageStartMsg{Package: pkg})
}

// Complete implements imports.ProgressReporter.
func (r *ImportReporter) Complete(pkg, module string, err error) {
	r.send(PackageDoneMsg{Package: pkg, Module: module, Err: err})
}

var _ imports.ProgressReporter = (*ImportReporter)(nil)
