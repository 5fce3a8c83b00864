package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks the config for values provisioning cannot work with.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validatePython()...)
	results = append(results, c.validateAssets()...)
	results = append(results, c.validateVerify()...)
	results = append(results, c.validateLogs()...)
	return results
}

// Errors returns only the error-level findings.
func Errors(results []ValidationResult) []ValidationResult {
	var out []ValidationResult
	for _, r := range results {
		if r.Level == "error" {
			out = append(out, r)
		}
	}
	return out
}

func (c Config) validatePython() []ValidationResult {
	var results []ValidationResult
	if min := strings.TrimSpace(c.Python.MinVersion); min != "" && !semver.IsValid("v"+min) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("python.min_version %q is not a version like 3.8", min),
		})
	}
	envDir := strings.TrimSpace(c.Python.EnvDir)
	if filepath.IsAbs(envDir) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("python.env_dir %q must be relative to the project root", envDir),
		})
	} else if strings.HasPrefix(filepath.Clean(envDir), "..") {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("python.env_dir %q escapes the project root", envDir),
		})
	}
	return results
}

func (c Config) validateAssets() []ValidationResult {
	var results []ValidationResult
	browser := strings.TrimSpace(c.Assets.Browser)
	if strings.ContainsAny(browser, `*?[]{}/\`) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("assets.browser %q must be a plain browser name", browser),
		})
	}
	return results
}

func (c Config) validateVerify() []ValidationResult {
	var results []ValidationResult
	for name, module := range c.Verify.Aliases {
		if strings.TrimSpace(module) == "" {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("verify.aliases entry %q has an empty import name and is ignored", name),
			})
		}
	}
	return results
}

func (c Config) validateLogs() []ValidationResult {
	if _, err := log.ParseLevel(c.Logs.Level); err != nil {
		return []ValidationResult{{
			Level:   "error",
			Message: fmt.Sprintf("logs.level %q is not a known level", c.Logs.Level),
		}}
	}
	return nil
}
