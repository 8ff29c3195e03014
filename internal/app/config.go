package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/binverify/internal/manifest"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Layout selects a built-in manifest when no manifest files are given.
	Layout  string
	OS      string
	Variant string
	// LibDir and LibExt override the native library directory and extension.
	LibDir string
	LibExt string
	// ManifestPaths are manifest files or directories of them. When set they
	// replace the layout preset.
	ManifestPaths []string
	// Root overrides the install root relative entries resolve against.
	Root string
	// SizeUnit overrides the manifest's size unit when non-empty.
	SizeUnit   string
	ReportPath string
	NoColor    bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error

	if cfg.Layout == "" {
		cfg.Layout = string(manifest.LayoutWASM)
	}
	if l, err := manifest.ParseLayout(cfg.Layout); err != nil {
		errs = append(errs, err)
	} else {
		cfg.Layout = string(l)
	}

	if cfg.OS == "" {
		cfg.OS = manifest.DefaultPlatform.OS
	}
	if cfg.Variant == "" {
		cfg.Variant = manifest.DefaultPlatform.Variant
	}

	if strings.ContainsAny(cfg.LibDir, `/\`) {
		errs = append(errs, fmt.Errorf("invalid lib-dir %q: must be a single directory name", cfg.LibDir))
	}

	if cfg.SizeUnit != "" {
		if u, err := manifest.ParseSizeUnit(cfg.SizeUnit); err != nil {
			errs = append(errs, err)
		} else {
			cfg.SizeUnit = string(u)
		}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		errs = append(errs, errors.New("invalid log-format: must be 'text' or 'json'"))
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "warn"
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Platform returns the native platform selected by the config.
func (c *Config) Platform() manifest.Platform {
	return manifest.Platform{OS: c.OS, Variant: c.Variant, LibDir: c.LibDir, LibExt: c.LibExt}
}
