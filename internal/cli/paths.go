package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"bombie/internal/pyenv"
)

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show the resolved environment paths",
		Args:  cobra.NoArgs,
		RunE:  runPaths,
	}
}

func runPaths(cmd *cobra.Command, _ []string) error {
	p, err := loadProject(cmd, loadOptions{})
	if err != nil {
		return err
	}

	rp, err := pyenv.NewResolver(newRunner()).Resolve(cmd.Context(), pyenv.NewDescriptor(p.paths))
	if err != nil {
		return err
	}

	if outputJSON {
		data, err := json.MarshalIndent(rp, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printPaths(cmd, rp)
	return nil
}

func printPaths(cmd *cobra.Command, rp pyenv.ResolvedPaths) {
	label := lipgloss.NewStyle().Bold(true).Width(16)
	faint := lipgloss.NewStyle().Faint(true)

	rows := [][2]string{
		{"python", rp.Version},
		{"environment", rp.EnvDir},
		{"bin", rp.BinDir},
		{"interpreter", rp.Executable},
		{"pip", rp.PackageManager},
		{"site-packages", rp.SitePackages},
		{"browser cache", rp.BinaryCache},
	}
	for _, r := range rows {
		fmt.Fprintln(cmd.OutOrStdout(), label.Render(r[0])+r[1])
	}
	fmt.Fprintln(cmd.OutOrStdout(), label.Render("PATH")+faint.Render(rp.SearchPath()))
}
