package cli

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"bombie/internal/config"
	"bombie/internal/logx"
	"bombie/internal/paths"
	"bombie/internal/pyenv"
)

// Swapped out by tests.
var (
	newRunner = func() pyenv.Runner { return pyenv.CmdRunner{} }
	lookPath  = exec.LookPath
)

type project struct {
	paths   paths.ProjectPaths
	cfg     config.Config
	session *logx.Session
}

type loadOptions struct {
	// logs opens a run log file; otherwise records are discarded.
	logs bool
	// quiet keeps records off the terminal.
	quiet bool
}

func loadProject(cmd *cobra.Command, opts loadOptions) (*project, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return nil, fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	if _, err := config.LoadDotEnv(pp.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := validationError(cfg.Validate()); err != nil {
		return nil, err
	}
	pp = paths.ApplyConfig(pp, cfg)

	p := &project{paths: pp, cfg: cfg}
	if !opts.logs {
		return p, nil
	}

	if cfg.Logs.ClearOnStart {
		if _, err := logx.Clear(pp.LogsDir); err != nil {
			return nil, fmt.Errorf("clear logs: %w", err)
		}
	}
	var console io.Writer
	if !opts.quiet {
		console = cmd.ErrOrStderr()
	}
	session, err := logx.New(pp, logx.Options{Level: cfg.Logs.Level, Console: console})
	if err != nil {
		return nil, err
	}
	p.session = session
	session.Logger.Debug("project loaded", "root", pp.Root, "config", pp.ConfigFile)
	return p, nil
}

func (p *project) logger() *log.Logger {
	if p.session == nil {
		return logx.Discard()
	}
	return p.session.Logger
}

// streams mirrors subprocess output to the terminal and the run log.
func (p *project) streams(cmd *cobra.Command) pyenv.Streams {
	if p.session == nil {
		return pyenv.Streams{Stdout: cmd.ErrOrStderr(), Stderr: cmd.ErrOrStderr()}
	}
	return pyenv.Streams{
		Stdout: io.MultiWriter(cmd.ErrOrStderr(), p.session.File),
		Stderr: io.MultiWriter(cmd.ErrOrStderr(), p.session.File),
	}
}

func (p *project) close() {
	if p != nil && p.session != nil {
		_ = p.session.Close()
	}
}

func validationError(results []config.ValidationResult) error {
	errs := config.Errors(results)
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, v := range errs {
		msgs[i] = v.Message
	}
	return errors.New("config validation failed: " + strings.Join(msgs, "; "))
}
