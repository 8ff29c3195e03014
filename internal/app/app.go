package app

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/binverify/internal/config"
	"github.com/specialistvlad/binverify/internal/console"
	"github.com/specialistvlad/binverify/internal/ctxlog"
	"github.com/specialistvlad/binverify/internal/hcl"
	"github.com/specialistvlad/binverify/internal/loader"
	"github.com/specialistvlad/binverify/internal/manifest"
	"github.com/specialistvlad/binverify/internal/metadata"
	"github.com/specialistvlad/binverify/internal/report"
	"github.com/specialistvlad/binverify/internal/verifier"
	"github.com/specialistvlad/binverify/internal/yamlcfg"
	"go.uber.org/zap"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *zap.Logger
	config   *Config
	root     string
	manifest *manifest.Manifest
	loaders  verifier.Resolver
}

// Option customises an App. Options are primarily for testing.
type Option func(*App)

// WithLoaders replaces the built-in loader registry.
func WithLoaders(r verifier.Resolver) Option {
	return func(a *App) { a.loaders = r }
}

// manifestLoaders are the supported manifest file formats.
func manifestLoaders() config.Loaders {
	y := yamlcfg.NewLoader()
	return config.Loaders{
		".hcl":  hcl.NewLoader(),
		".yaml": y,
		".yml":  y,
		".json": metadata.NewLoader(),
	}
}

// NewApp is the constructor for the main application. Progress lines go to
// outW, logs go to logW. It resolves the install root and builds the
// manifest, so every configuration problem surfaces here.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		loaders: loader.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}

	root := cfg.Root
	if root == "" {
		r, err := manifest.InstallRoot()
		if err != nil {
			return nil, err
		}
		root = r
	}
	a.root = root
	logger.Debug("Install root resolved.", zap.String("root", root))

	m, err := a.buildManifest(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(root); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	a.manifest = m
	logger.Debug("Manifest ready.", zap.String("name", m.Name), zap.Int("entries", len(m.Entries)), zap.String("size_unit", string(m.SizeUnit)))

	return a, nil
}

func (a *App) buildManifest(ctx context.Context) (*manifest.Manifest, error) {
	cfg := a.config
	unit := manifest.SizeUnit(cfg.SizeUnit)

	if len(cfg.ManifestPaths) == 0 {
		a.logger.Debug("Using layout preset.", zap.String("layout", cfg.Layout))
		return manifest.Layout(cfg.Layout).Build(cfg.Platform(), unit)
	}

	vars := config.Variables{OS: cfg.OS, Variant: cfg.Variant, Root: a.root}
	models, err := manifestLoaders().LoadAll(ctx, vars, cfg.ManifestPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	m, err := config.ToManifest(models...)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	if unit != "" {
		m.SizeUnit = unit
	}
	return m, nil
}

// Manifest returns the manifest the app will verify. This is primarily for testing.
func (a *App) Manifest() *manifest.Manifest {
	return a.manifest
}

// Run verifies the manifest and returns the process exit code.
func (a *App) Run(ctx context.Context) int {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	defer a.logger.Sync() //nolint:errcheck
	a.logger.Debug("App.Run method started.")

	observers := verifier.Observers{console.New(a.outW, !a.config.NoColor)}
	var rw *report.Writer
	if a.config.ReportPath != "" {
		rw = report.NewWriter()
		observers = append(observers, rw)
	}

	code := verifier.Run(ctx, a.manifest, verifier.Options{
		Root:     a.root,
		Loaders:  a.loaders,
		Observer: observers,
	})
	a.logger.Info("Verification finished.", zap.Int("exit_code", code))

	if rw != nil {
		if err := rw.WriteFile(a.config.ReportPath); err != nil {
			a.logger.Error("Report could not be written.", zap.Error(err), zap.Int("verification_exit_code", code))
			if code == verifier.ExitPass {
				fmt.Fprintf(a.outW, "[FAIL] Verification passed, but the report could not be written: %v\n", err)
			} else {
				fmt.Fprintf(a.outW, "[FAIL] The report could not be written either: %v\n", err)
			}
			return verifier.ExitFail
		}
		a.logger.Debug("Report written.", zap.String("path", a.config.ReportPath))
	}

	a.logger.Debug("App.Run method finished.")
	return code
}
