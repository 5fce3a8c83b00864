package imports

import "strings"

// Aliases maps a distribution name to the module it installs when the two
// differ. Keys are lower case.
type Aliases map[string]string

// DefaultAliases returns the built-in distribution to module table.
func DefaultAliases() Aliases {
	return Aliases{
		"opencv-python":          "cv2",
		"opencv-python-headless": "cv2",
		"pillow":                 "PIL",
		"python-dotenv":          "dotenv",
		"beautifulsoup4":         "bs4",
		"pyyaml":                 "yaml",
		"scikit-learn":           "sklearn",
		"scikit-image":           "skimage",
		"python-dateutil":        "dateutil",
		"pyjwt":                  "jwt",
		"pymupdf":                "fitz",
		"pyserial":               "serial",
		"attrs":                  "attr",
		"protobuf":               "google.protobuf",
	}
}

// Merge returns a copy of a with extra layered on top. Keys of extra are
// lower-cased.
func (a Aliases) Merge(extra map[string]string) Aliases {
	out := make(Aliases, len(a)+len(extra))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range extra {
		out[strings.ToLower(k)] = v
	}
	return out
}

// ImportName returns the aliased module for pkg, or pkg itself when no alias
// exists.
func (a Aliases) ImportName(pkg string) string {
	if mod, ok := a[strings.ToLower(pkg)]; ok && mod != "" {
		return mod
	}
	return pkg
}

// Candidates returns the three module names tried for pkg in order: the
// alias table result, the literal name, and the name with hyphens replaced by
// underscores.
func (a Aliases) Candidates(pkg string) [3]string {
	return [3]string{a.ImportName(pkg), pkg, strings.ReplaceAll(pkg, "-", "_")}
}
