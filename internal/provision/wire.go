package provision

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"

	"bombie/internal/assets"
	"bombie/internal/config"
	"bombie/internal/imports"
	"bombie/internal/manifest"
	"bombie/internal/paths"
	"bombie/internal/pyenv"
)

// Options carry the process-level collaborators of a Provisioner.
type Options struct {
	Runner   pyenv.Runner
	Streams  pyenv.Streams
	Logger   *log.Logger
	Reporter imports.ProgressReporter
}

// FromConfig builds a Provisioner from a loaded project.
func FromConfig(cfg config.Config, pp paths.ProjectPaths, opts Options) *Provisioner {
	if opts.Runner == nil {
		opts.Runner = pyenv.CmdRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Provisioner{
		Descriptor:    pyenv.NewDescriptor(pp),
		ParseManifest: manifest.Parse,
		Builder: pyenv.Builder{
			Runner:       opts.Runner,
			Streams:      opts.Streams,
			Logger:       opts.Logger,
			LookPath:     exec.LookPath,
			Interpreter:  cfg.Python.Interpreter,
			MinVersion:   cfg.Python.MinVersion,
			GOOS:         runtime.GOOS,
			StrictMarker: cfg.Provision.StrictMarkers,
		},
		Resolver:  pyenv.NewResolver(opts.Runner),
		Installer: pyenv.Installer{Runner: opts.Runner, Streams: opts.Streams, Logger: opts.Logger},
		Assets: assets.Provisioner{
			Runner:       opts.Runner,
			Streams:      opts.Streams,
			Logger:       opts.Logger,
			InstallDeps:  cfg.Assets.InstallDeps,
			StrictMarker: cfg.Provision.StrictMarkers,
		},
		NewVerifier: VerifierFactory(cfg, pp, opts),
		Export:      ExportProcess,
		Browser:     cfg.Assets.Browser,
		Critical:    cfg.CriticalPackages(),
		LockFile:    pp.LockFile,
		Logger:      opts.Logger,
	}
}

// VerifierFactory returns a constructor for import verifiers bound to the
// environment. The project scripts directory is appended to the search path.
func VerifierFactory(cfg config.Config, pp paths.ProjectPaths, opts Options) func(context.Context, pyenv.ResolvedPaths) (ImportVerifier, error) {
	return func(ctx context.Context, rp pyenv.ResolvedPaths) (ImportVerifier, error) {
		return NewVerifier(ctx, cfg, pp, opts, rp), nil
	}
}

// NewVerifier builds the concrete verifier for rp.
func NewVerifier(ctx context.Context, cfg config.Config, pp paths.ProjectPaths, opts Options, rp pyenv.ResolvedPaths) imports.Verifier {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = pyenv.CmdRunner{}
	}

	importer := imports.NewPythonImporter(runner, rp)
	if pp.ScriptsDir != "" {
		importer.AppendPath(pp.ScriptsDir)
	}
	if logger.GetLevel() <= log.DebugLevel {
		if entries, err := importer.SearchPath(ctx); err != nil {
			logger.Debug("search path unavailable", "err", err)
		} else {
			logger.Debug("interpreter search path", "entries", entries)
		}
	}

	return imports.Verifier{
		Importer: importer,
		Aliases:  imports.DefaultAliases().Merge(cfg.Verify.Aliases),
		Logger:   logger,
		Reporter: opts.Reporter,
	}
}
