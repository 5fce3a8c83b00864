package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"bombie/internal/automation"
	"bombie/internal/provision"
	"bombie/internal/signals"
)

var skipAutomation bool

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [-- module args...]",
		Short: "Provision the environment, then start the automation module",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd, args, !skipAutomation)
		},
	}

	cmd.Flags().BoolVar(&skipAutomation, "skip-automation", false, "stop after provisioning")

	return cmd
}

func newProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the environment, install dependencies and browsers, verify imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd, nil, false)
		},
	}
}

type provisionSummary struct {
	Project  string   `json:"project"`
	Python   string   `json:"python"`
	EnvDir   string   `json:"env_dir"`
	Packages []string `json:"packages"`
	RunID    string   `json:"run_id"`
	LogFile  string   `json:"log_file"`
}

func runProvision(cmd *cobra.Command, args []string, withAutomation bool) error {
	p, err := loadProject(cmd, loadOptions{logs: true})
	if err != nil {
		return err
	}
	defer p.close()

	logger := p.logger()
	ctx, stop := signals.ForwardInterrupt(cmd.Context(), logger)
	defer stop()

	logger.Info("provisioning", "project", p.paths.Root)

	runner := newRunner()
	streams := p.streams(cmd)
	prov := provision.FromConfig(p.cfg, p.paths, provision.Options{
		Runner:  runner,
		Streams: streams,
		Logger:  logger,
	})

	res, err := prov.Run(ctx)
	if err != nil {
		logger.Error("provisioning failed", "err", err)
		return err
	}

	if withAutomation {
		logger.Info("starting automation", "module", p.cfg.Automation.Module)
		wf := automation.ModuleWorkflow{
			Runner:     runner,
			Paths:      res.Paths,
			Module:     p.cfg.Automation.Module,
			ScriptsDir: p.paths.ScriptsDir,
			Args:       args,
			Streams:    streams,
		}
		return wf.Run(ctx)
	}

	summary := provisionSummary{
		Project:  p.paths.Root,
		Python:   res.Paths.Version,
		EnvDir:   res.Paths.EnvDir,
		Packages: res.Packages,
		RunID:    p.session.RunID,
		LogFile:  p.session.Path,
	}
	if outputJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Environment ready: python %s, %d packages verified\n", summary.Python, len(summary.Packages))
	return nil
}
