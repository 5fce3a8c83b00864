package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	packageWidth = 28
	statusWidth  = 10
	moduleWidth  = 20
)

type row struct {
	pkg    string
	status string
	module string
}

// VerifyModel is a bubbletea model that renders one row per package while
// imports are verified.
type VerifyModel struct {
	title    string
	rows     []row
	rowIndex map[string]int
	spinner  spinner.Model
	done     bool
	aborted  bool
	err      error
}

// NewVerifyModel creates a model with a pending row for each package.
// Repeated names share a row.
func NewVerifyModel(title string, pkgs []string) VerifyModel {
	m := VerifyModel{
		title:    title,
		rowIndex: make(map[string]int),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, pkg := range pkgs {
		if _, ok := m.rowIndex[pkg]; ok {
			continue
		}
		m.rowIndex[pkg] = len(m.rows)
		m.rows = append(m.rows, row{pkg: pkg, status: StatusPending})
	}
	return m
}

// Init satisfies the tea.Model interface.
func (m VerifyModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update satisfies the tea.Model interface.
func (m VerifyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PackageStartMsg:
		if r := m.row(msg.Package); r != nil {
			r.status = StatusImporting
		}
		return m, nil

	case PackageDoneMsg:
		if r := m.row(msg.Package); r != nil {
			if msg.Err != nil {
				r.status = StatusFailed
			} else {
				r.status = StatusOK
				r.module = msg.Module
			}
		}
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.aborted = !m.done
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *VerifyModel) row(pkg string) *row {
	idx, ok := m.rowIndex[pkg]
	if !ok {
		return nil
	}
	return &m.rows[idx]
}

// View satisfies the tea.Model interface.
func (m VerifyModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(HeaderStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	b.WriteString(HeaderStyle.Render(pad("PACKAGE", packageWidth)))
	b.WriteString("  ")
	b.WriteString(HeaderStyle.Render(pad("STATUS", statusWidth)))
	b.WriteString("  ")
	b.WriteString(HeaderStyle.Render("MODULE"))
	b.WriteByte('\n')

	for _, r := range m.rows {
		b.WriteString(pad(TruncateWithEllipsis(r.pkg, packageWidth), packageWidth))
		b.WriteString("  ")
		b.WriteString(StatusStyle(r.status).Render(pad(r.status, statusWidth)))
		b.WriteString("  ")
		b.WriteString(TruncateWithEllipsis(NonEmptyOrDash(r.module), moduleWidth))
		b.WriteByte('\n')
	}

	if !m.done {
		processed, total := m.progressCounts()
		fmt.Fprintf(&b, "\n%s Verifying %d/%d...\n", m.spinner.View(), processed, total)
	}
	return b.String()
}

// progressCounts returns (processed, total) based on how many rows have
// finished.
func (m VerifyModel) progressCounts() (int, int) {
	processed := 0
	for _, r := range m.rows {
		if r.status == StatusOK || r.status == StatusFailed {
			processed++
		}
	}
	return processed, len(m.rows)
}

// Err returns the error the work ended with, if any.
func (m VerifyModel) Err() error {
	return m.err
}

// Aborted reports whether the user quit before the work finished.
func (m VerifyModel) Aborted() bool {
	return m.aborted
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// NonEmptyOrDash returns "-" for empty/whitespace strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis truncates a string and adds "..." if it exceeds max length.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
