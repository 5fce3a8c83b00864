package pyenv

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ParseVersion extracts "major.minor" from `python --version` output such as
// "Python 3.12.4".
func ParseVersion(output string) (string, error) {
	fields := strings.Fields(firstLine(strings.TrimSpace(output)))
	if len(fields) < 2 {
		return "", fmt.Errorf("unrecognised version output %q", strings.TrimSpace(output))
	}
	parts := strings.Split(fields[1], ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("unrecognised version %q", fields[1])
	}
	for _, p := range parts[:2] {
		if _, err := strconv.Atoi(p); err != nil {
			return "", fmt.Errorf("unrecognised version %q", fields[1])
		}
	}
	return parts[0] + "." + parts[1], nil
}

// ProbeVersion runs python --version and returns the major.minor version.
func ProbeVersion(ctx context.Context, r Runner, python string) (string, error) {
	res, err := r.Run(ctx, python, []string{"--version"}, RunOptions{})
	if err != nil {
		return "", newError(KindVersionDetectionFailed, "detect python version", python, res.Combined(), err)
	}
	// Interpreters before 3.4 print the version on stderr.
	out := string(res.Stdout)
	if strings.TrimSpace(out) == "" {
		out = string(res.Stderr)
	}
	version, err := ParseVersion(out)
	if err != nil {
		return "", newError(KindVersionDetectionFailed, "detect python version", python, nil, err)
	}
	return version, nil
}

// MeetsMinimum reports whether version is at least minimum. An empty minimum
// always passes.
func MeetsMinimum(version, minimum string) bool {
	if strings.TrimSpace(minimum) == "" {
		return true
	}
	v, m := "v"+version, "v"+minimum
	if !semver.IsValid(v) || !semver.IsValid(m) {
		return false
	}
	return semver.Compare(v, m) >= 0
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}
