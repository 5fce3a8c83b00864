// Package manifest reads the package names out of a requirements file.
package manifest

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"bombie/internal/pyenv"
)

// specifierChars end the package name on a requirements line.
const specifierChars = "=><~"

// Parse returns the package names in the manifest at path, in file order.
// Duplicates are kept.
func Parse(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pyenv.Error{Kind: pyenv.KindManifestUnreadable, Op: "read manifest", Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &pyenv.Error{Kind: pyenv.KindManifestUnreadable, Op: "read manifest", Path: path, Err: fmt.Errorf("not valid UTF-8")}
	}
	return ParseBytes(data), nil
}

// ParseReader applies the line rules of Parse to r.
func ParseReader(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data), nil
}

// ParseBytes applies the line rules of Parse to data. Lines have no length
// limit.
func ParseBytes(data []byte) []string {
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if name := PackageName(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// PackageName returns the part of a requirements line before the first
// version specifier character, trimmed. Blank results mean "skip this line".
func PackageName(line string) string {
	if idx := strings.IndexAny(line, specifierChars); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
