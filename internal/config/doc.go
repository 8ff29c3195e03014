// Package config defines the format-agnostic model of a manifest file, the
// Loader interface implemented by each file format, and the translation of
// loaded models into a manifest.Manifest.
//
// Concrete loaders live in their own packages (hcl, yamlcfg) so this package
// carries no format-specific dependencies.
package config
