package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"bombie/internal/assets"
	"bombie/internal/config"
	"bombie/internal/manifest"
	"bombie/internal/paths"
	"bombie/internal/pyenv"
)

var checkStrict bool

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report what is already provisioned without changing anything",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	cmd.Flags().BoolVar(&checkStrict, "strict", false, "fail when any piece is missing")

	return cmd
}

type checkItem struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

type checkReport struct {
	Project     string                    `json:"project"`
	Items       []checkItem               `json:"items"`
	Validations []config.ValidationResult `json:"validations,omitempty"`
}

func (r checkReport) failures() []string {
	var out []string
	for _, it := range r.Items {
		if !it.OK {
			out = append(out, it.Name)
		}
	}
	return out
}

func runCheck(cmd *cobra.Command, _ []string) error {
	p, err := loadProject(cmd, loadOptions{})
	if err != nil {
		return err
	}

	report := buildCheckReport(cmd, p)

	if outputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		printCheckReport(cmd, report)
	}

	if checkStrict {
		if missing := report.failures(); len(missing) > 0 {
			return errors.New("not provisioned: " + strings.Join(missing, ", "))
		}
	}
	return nil
}

func buildCheckReport(cmd *cobra.Command, p *project) checkReport {
	ctx := cmd.Context()
	runner := newRunner()
	report := checkReport{Project: p.paths.Root, Validations: p.cfg.Validate()}
	add := func(name string, ok bool, detail string) {
		report.Items = append(report.Items, checkItem{Name: name, OK: ok, Detail: detail})
	}

	// Base interpreter.
	if path, err := lookPath(p.cfg.Python.Interpreter); err != nil {
		add("interpreter", false, p.cfg.Python.Interpreter+" not found on PATH")
	} else if version, err := pyenv.ProbeVersion(ctx, runner, path); err != nil {
		add("interpreter", false, err.Error())
	} else if !pyenv.MeetsMinimum(version, p.cfg.Python.MinVersion) {
		add("interpreter", false, fmt.Sprintf("%s is python %s, need %s", path, version, p.cfg.Python.MinVersion))
	} else {
		add("interpreter", true, fmt.Sprintf("%s (python %s)", path, version))
	}

	// Manifest.
	if pkgs, err := manifest.Parse(p.paths.ManifestFile); err != nil {
		add("manifest", false, err.Error())
	} else {
		add("manifest", true, fmt.Sprintf("%s (%d packages)", p.paths.ManifestFile, len(pkgs)))
	}

	// Environment.
	envOK, _ := paths.DirExists(p.paths.EnvDir)
	if !envOK {
		add("environment", false, p.paths.EnvDir+" missing")
	} else if ready, _ := paths.FileExists(filepath.Join(p.paths.EnvDir, pyenv.ReadyMarker)); !ready && p.cfg.Provision.StrictMarkers {
		add("environment", false, p.paths.EnvDir+" has no ready marker")
	} else {
		add("environment", true, p.paths.EnvDir)
	}

	if envOK {
		if rp, err := pyenv.NewResolver(runner).Resolve(ctx, pyenv.NewDescriptor(p.paths)); err != nil {
			add("site-packages", false, err.Error())
		} else {
			add("site-packages", true, rp.SitePackages)
		}
	} else {
		add("site-packages", false, "environment not built")
	}

	// Browser assets.
	browser := p.cfg.Assets.Browser
	if ok, err := assets.Installed(p.paths.AssetsDir, browser); err != nil {
		add("browser", false, err.Error())
	} else if !ok {
		add("browser", false, fmt.Sprintf("no %s-* in %s", browser, p.paths.AssetsDir))
	} else {
		add("browser", true, fmt.Sprintf("%s in %s", browser, p.paths.AssetsDir))
	}

	return report
}

func printCheckReport(cmd *cobra.Command, report checkReport) {
	bold := lipgloss.NewStyle().Bold(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	faint := lipgloss.NewStyle().Faint(true)

	fmt.Fprintln(cmd.OutOrStdout(), bold.Render("Project:")+" "+report.Project)
	fmt.Fprintln(cmd.OutOrStdout())

	for _, it := range report.Items {
		mark := green.Render("✓")
		if !it.OK {
			mark = red.Render("✗")
		}
		fmt.Fprintln(cmd.OutOrStdout(), mark+" "+bold.Render(it.Name))
		if it.Detail != "" {
			fmt.Fprintln(cmd.OutOrStdout(), faint.Render("  "+it.Detail))
		}
	}

	for _, v := range report.Validations {
		if v.Level == "warning" {
			fmt.Fprintln(cmd.OutOrStdout(), yellow.Render("warning: ")+v.Message)
		}
	}
}
