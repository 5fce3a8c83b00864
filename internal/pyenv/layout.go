package pyenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"bombie/internal/paths"
)

// Descriptor names the project an environment belongs to. It is built once
// per process and never changes.
type Descriptor struct {
	Root     string
	EnvDir   string
	Manifest string
	// AssetsDir overrides the default browser cache inside the environment.
	AssetsDir string
}

// NewDescriptor builds a Descriptor from the project's resolved paths.
func NewDescriptor(pp paths.ProjectPaths) Descriptor {
	return Descriptor{
		Root:      pp.Root,
		EnvDir:    pp.EnvDir,
		Manifest:  pp.ManifestFile,
		AssetsDir: pp.AssetsDir,
	}
}

// ResolvedPaths are the environment locations derived from the descriptor and
// the probed interpreter version.
type ResolvedPaths struct {
	Root           string   `json:"root"`
	EnvDir         string   `json:"env_dir"`
	Version        string   `json:"version"`
	BinDir         string   `json:"bin_dir"`
	Executable     string   `json:"executable"`
	PackageManager string   `json:"package_manager"`
	SitePackages   string   `json:"site_packages"`
	PathEntries    []string `json:"path_entries"`
	BinaryCache    string   `json:"binary_cache"`
}

// BinDir returns the executable directory of an environment.
func BinDir(envDir, goos string) string {
	if goos == "windows" {
		return filepath.Join(envDir, "Scripts")
	}
	return filepath.Join(envDir, "bin")
}

// PythonExecutable returns the environment's interpreter path.
func PythonExecutable(envDir, goos string) string {
	return filepath.Join(BinDir(envDir, goos), executableName("python", goos))
}

// PipExecutable returns the environment's package manager path.
func PipExecutable(envDir, goos string) string {
	return filepath.Join(BinDir(envDir, goos), executableName("pip", goos))
}

// SitePackages returns the package install directory for the given
// major.minor version.
func SitePackages(envDir, version, goos string) string {
	if goos == "windows" {
		return filepath.Join(envDir, "Lib", "site-packages")
	}
	return filepath.Join(envDir, "lib", "python"+version, "site-packages")
}

func executableName(base, goos string) string {
	if goos == "windows" {
		return base + ".exe"
	}
	return base
}

// Layout computes every path of the environment without touching the disk.
// currentPath is the search path the executable directory is prepended to.
func Layout(d Descriptor, version, goos, currentPath string) ResolvedPaths {
	bin := BinDir(d.EnvDir, goos)
	cache := d.AssetsDir
	if cache == "" {
		cache = filepath.Join(d.EnvDir, "playwright-cache")
	}
	return ResolvedPaths{
		Root:           d.Root,
		EnvDir:         d.EnvDir,
		Version:        version,
		BinDir:         bin,
		Executable:     PythonExecutable(d.EnvDir, goos),
		PackageManager: PipExecutable(d.EnvDir, goos),
		SitePackages:   SitePackages(d.EnvDir, version, goos),
		PathEntries:    prependPath(bin, currentPath),
		BinaryCache:    cache,
	}
}

// prependPath puts dir in front of the existing entries. Duplicates are kept;
// lookups take the first match.
func prependPath(dir, current string) []string {
	entries := []string{dir}
	if current == "" {
		return entries
	}
	return append(entries, filepath.SplitList(current)...)
}

// SearchPath joins PathEntries with the platform list separator.
func (r ResolvedPaths) SearchPath() string {
	return strings.Join(r.PathEntries, string(os.PathListSeparator))
}

// Environ returns the variables every subprocess of the environment needs.
func (r ResolvedPaths) Environ() []string {
	return []string{
		"PATH=" + r.SearchPath(),
		"PYTHONPATH=" + r.SitePackages,
		"VIRTUAL_ENV=" + r.EnvDir,
		"PLAYWRIGHT_BROWSERS_PATH=" + r.BinaryCache,
	}
}

// Export applies Environ to the current process. The change lasts for the
// rest of the process and is inherited by every child started afterwards.
func (r ResolvedPaths) Export(setenv func(key, value string) error) error {
	initialPath()
	for _, kv := range r.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		if err := setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// initialPath is PATH as the process found it, before any Export prepended
// an environment to it.
var initialPath = sync.OnceValue(func() string { return os.Getenv("PATH") })

// Resolver derives ResolvedPaths for an existing environment.
type Resolver struct {
	Runner Runner
	GOOS   string
	// BasePath returns the search path the executable directory is prepended
	// to. Nil means the process PATH captured before any Export.
	BasePath func() string
}

// NewResolver returns a Resolver for the host platform.
func NewResolver(r Runner) Resolver {
	return Resolver{Runner: r, GOOS: runtime.GOOS}
}

// Resolve probes the environment's interpreter version and computes its
// paths. The site-packages directory must already exist.
func (r Resolver) Resolve(ctx context.Context, d Descriptor) (ResolvedPaths, error) {
	goos := r.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	basePath := r.BasePath
	if basePath == nil {
		basePath = initialPath
	}

	version, err := ProbeVersion(ctx, r.Runner, PythonExecutable(d.EnvDir, goos))
	if err != nil {
		return ResolvedPaths{}, err
	}

	rp := Layout(d, version, goos, basePath())
	ok, err := paths.DirExists(rp.SitePackages)
	if err != nil {
		return ResolvedPaths{}, newError(KindSitePackagesMissing, "stat site-packages", rp.SitePackages, nil, err)
	}
	if !ok {
		return ResolvedPaths{}, newError(KindSitePackagesMissing, "site-packages directory does not exist:", rp.SitePackages, nil, nil)
	}
	return rp, nil
}
