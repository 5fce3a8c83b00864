package tui

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted is returned when the user quits the table before the work
// finished.
var ErrAborted = errors.New("aborted by user")

// RunWithWork creates a bubbletea program, launches workFn in a goroutine,
// and blocks until both have finished. A failed workFn ends the program with
// an ErrorMsg. When the user quits first, cancel is called so workFn can stop,
// and ErrAborted is returned whatever workFn reports.
func RunWithWork(out io.Writer, model VerifyModel, cancel context.CancelFunc, workFn func(send func(tea.Msg)) error, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithOutput(out)}, opts...)...)

	errCh := make(chan error, 1)
	go func() {
		// Let bubbletea start its event loop and render the initial frame.
		time.Sleep(50 * time.Millisecond)
		err := workFn(p.Send)
		if err != nil {
			p.Send(ErrorMsg{Err: err})
		} else {
			p.Send(WorkDoneMsg{})
		}
		errCh <- err
	}()

	finalModel, err := p.Run()
	m, _ := finalModel.(VerifyModel)
	if err != nil || m.Aborted() {
		cancel()
	}
	workErr := <-errCh
	if err != nil {
		return err
	}
	if m.Aborted() {
		return ErrAborted
	}
	if m.Err() != nil {
		return m.Err()
	}
	return workErr
}
