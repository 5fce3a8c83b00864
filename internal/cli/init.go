package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bombie/internal/config"
	"bombie/internal/paths"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default bombie.yaml and requirements.txt",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
}

func resolveInitDir(projectFlag string, args []string) (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if len(args) > 0 && args[0] != "." {
		return filepath.Join(cwd, args[0]), nil
	}
	return cwd, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveInitDir(projectDir, args)
	if err != nil {
		return err
	}
	pp, err := paths.Resolve(dir)
	if err != nil {
		return err
	}
	if err := pp.EnsureRoot(); err != nil {
		return err
	}

	cfg := config.Default()
	pp = paths.ApplyConfig(pp, cfg)

	created := 0
	write := func(path string, fn func() error) error {
		exists, err := paths.FileExists(path)
		if err != nil {
			return err
		}
		if exists {
			fmt.Fprintf(cmd.OutOrStdout(), "exists  %s\n", path)
			return nil
		}
		if err := fn(); err != nil {
			return err
		}
		created++
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	}

	if err := write(pp.ConfigFile, func() error { return config.Save(pp.ConfigFile, cfg) }); err != nil {
		return err
	}
	if err := write(pp.ManifestFile, func() error {
		if err := os.WriteFile(pp.ManifestFile, nil, 0o644); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	if err := os.MkdirAll(pp.ScriptsDir, 0o755); err != nil {
		return fmt.Errorf("create scripts dir: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized bombie project in %s (%d files created)\n", pp.Root, created)
	return nil
}
