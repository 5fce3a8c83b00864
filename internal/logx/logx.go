package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"bombie/internal/paths"
)

// Options controls where a run's records go.
type Options struct {
	Level string
	// Console receives records alongside the log file. Nil means file only.
	Console io.Writer
	// RunID tags every record. Empty generates one.
	RunID string
}

// Session is the logging state of one run.
type Session struct {
	Logger *log.Logger
	// File is the open log file, for mirroring subprocess output.
	File  io.Writer
	Path  string
	RunID string

	closer io.Closer
}

// Close flushes and closes the log file.
func (s *Session) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// New creates a logger that writes to a timestamped file inside the project's
// logs directory and, when set, to opts.Console.
func New(p paths.ProjectPaths, opts Options) (*Session, error) {
	name := strings.TrimSpace(opts.Level)
	if name == "" {
		name = "info"
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if err := p.EnsureLogsDir(); err != nil {
		return nil, err
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(p.LogsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = file
	if opts.Console != nil {
		out = io.MultiWriter(file, opts.Console)
	}

	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	}).With("run", runID)

	return &Session{Logger: logger, File: file, Path: filePath, RunID: runID, closer: file}, nil
}

// NewRunID returns a short random identifier for a run.
func NewRunID() string {
	return uuid.NewString()[:8]
}

// Clear removes the *.log files in dir and returns how many were deleted.
// A missing directory is not an error.
func Clear(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", m, err)
		}
		removed++
	}
	return removed, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
