package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bombie/internal/paths"
	"bombie/internal/pyenv"
)

var cleanDryRun bool

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove provisioned artifacts so the next run starts over",
	}

	cmd.PersistentFlags().BoolVar(&cleanDryRun, "dry-run", false, "List what would be removed without deleting")

	cmd.AddCommand(newCleanTargetCmd("env", "Remove the Python environment", func(pp paths.ProjectPaths) []string {
		return []string{pp.EnvDir}
	}))
	cmd.AddCommand(newCleanTargetCmd("assets", "Remove the browser cache", func(pp paths.ProjectPaths) []string {
		return []string{pp.AssetsDir}
	}))
	cmd.AddCommand(newCleanTargetCmd("logs", "Remove all log files", func(pp paths.ProjectPaths) []string {
		matches, _ := filepath.Glob(filepath.Join(pp.LogsDir, "*.log"))
		return matches
	}))
	cmd.AddCommand(newCleanTargetCmd("all", "Remove the environment, browser cache and logs", func(pp paths.ProjectPaths) []string {
		targets := []string{pp.EnvDir, pp.AssetsDir}
		matches, _ := filepath.Glob(filepath.Join(pp.LogsDir, "*.log"))
		return append(targets, matches...)
	}))

	return cmd
}

func newCleanTargetCmd(name, short string, targets func(paths.ProjectPaths) []string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClean(cmd, name, targets)
		},
	}
}

type cleanResult struct {
	Removed    int   `json:"removed"`
	FreedBytes int64 `json:"freed_bytes"`
	Skipped    int   `json:"skipped"`
	DryRun     bool  `json:"dry_run"`
}

func runClean(cmd *cobra.Command, label string, targets func(paths.ProjectPaths) []string) error {
	p, err := loadProject(cmd, loadOptions{})
	if err != nil {
		return err
	}

	// Never delete underneath a running provision.
	lock, err := pyenv.AcquireLock(cmd.Context(), p.paths.LockFile)
	if err != nil {
		return err
	}
	defer lock.Release()

	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	seen := make(map[string]bool)
	for _, path := range targets(p.paths) {
		if seen[path] || isWithin(path, seen) {
			continue
		}
		seen[path] = true
		removeEntry(path, out, &result)
	}

	return writeCleanResult(out, label, result)
}

// isWithin reports whether path lies inside an already removed directory.
func isWithin(path string, removed map[string]bool) bool {
	for dir := range removed {
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == "." || rel == ".." {
			continue
		}
		if !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func removeEntry(path string, out io.Writer, result *cleanResult) {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Skipped++
		}
		return
	}
	size := info.Size()
	if info.IsDir() {
		size = dirSize(path)
	}

	if cleanDryRun {
		if !outputJSON {
			fmt.Fprintf(out, "would remove %s (%s)\n", path, formatSize(size))
		}
		result.Removed++
		result.FreedBytes += size
		return
	}

	if err := os.RemoveAll(path); err != nil {
		if !outputJSON {
			fmt.Fprintf(out, "error removing %s: %v\n", path, err)
		}
		result.Skipped++
		return
	}

	result.Removed++
	result.FreedBytes += size
	if !outputJSON {
		fmt.Fprintf(out, "removed %s (%s)\n", path, formatSize(size))
	}
}

func dirSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func writeCleanResult(out io.Writer, label string, result cleanResult) error {
	if outputJSON {
		return json.NewEncoder(out).Encode(result)
	}

	action := "complete"
	if cleanDryRun {
		action = "(dry run)"
	}
	fmt.Fprintf(out, "\nClean %s %s: %d removed, %s freed, %d skipped\n",
		label, action, result.Removed, formatSize(result.FreedBytes), result.Skipped)
	return nil
}

func formatSize(bytes int64) string {
	if bytes <= 0 {
		return "-"
	}
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
