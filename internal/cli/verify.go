package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"bombie/internal/imports"
	"bombie/internal/manifest"
	"bombie/internal/provision"
	"bombie/internal/pyenv"
	"bombie/internal/signals"
	"bombie/internal/tui"
)

var verifyProgress bool

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every manifest package imports in the existing environment",
		Args:  cobra.NoArgs,
		RunE:  runVerify,
	}

	cmd.Flags().BoolVar(&verifyProgress, "progress", false, "show a live progress table")

	return cmd
}

type verifyEntry struct {
	Package string `json:"package"`
	Module  string `json:"module,omitempty"`
	Error   string `json:"error,omitempty"`
}

// collectingReporter records outcomes for the JSON report.
type collectingReporter struct {
	mu      sync.Mutex
	entries []verifyEntry
}

func (c *collectingReporter) Start(string) {}

func (c *collectingReporter) Complete(pkg, module string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := verifyEntry{Package: pkg, Module: module}
	if err != nil {
		e.Error = err.Error()
	}
	c.entries = append(c.entries, e)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	mode := tui.DetectMode(cmd.OutOrStdout(), verifyProgress, outputJSON)

	p, err := loadProject(cmd, loadOptions{logs: true, quiet: mode == tui.ModeTUI})
	if err != nil {
		return err
	}
	defer p.close()

	ctx, stop := signals.ForwardInterrupt(cmd.Context(), p.logger())
	defer stop()

	pkgs, err := manifest.Parse(p.paths.ManifestFile)
	if err != nil {
		return err
	}

	runner := newRunner()
	rp, err := pyenv.NewResolver(runner).Resolve(ctx, pyenv.NewDescriptor(p.paths))
	if err != nil {
		return err
	}

	critical := p.cfg.CriticalPackages()
	verify := func(ctx context.Context, rep imports.ProgressReporter) error {
		v := provision.NewVerifier(ctx, p.cfg, p.paths, provision.Options{
			Runner:   runner,
			Logger:   p.logger(),
			Reporter: rep,
		}, rp)
		return verifyAll(ctx, v, critical, pkgs)
	}

	switch mode {
	case tui.ModeTUI:
		workCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		model := tui.NewVerifyModel("Verifying imports in "+rp.EnvDir, append(append([]string{}, critical...), pkgs...))
		return tui.RunWithWork(cmd.OutOrStdout(), model, cancel, func(send func(tea.Msg)) error {
			return verify(workCtx, tui.NewImportReporter(send))
		})

	case tui.ModeJSON:
		rep := &collectingReporter{}
		verifyErr := verify(ctx, rep)
		payload := struct {
			Python  string        `json:"python"`
			OK      bool          `json:"ok"`
			Results []verifyEntry `json:"results"`
		}{Python: rp.Version, OK: verifyErr == nil, Results: rep.entries}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return verifyErr

	default:
		if err := verify(ctx, nil); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "All imports verified (%d critical, %d packages)\n", len(critical), len(pkgs))
		return nil
	}
}

func verifyAll(ctx context.Context, v imports.Verifier, critical, pkgs []string) error {
	for _, pkg := range critical {
		if err := v.VerifyCritical(ctx, pkg); err != nil {
			return err
		}
	}
	return v.VerifyAll(ctx, pkgs)
}
