// Package yamlcfg loads manifest files written in YAML.
//
//	name: WASM
//	size_unit: mb
//	directory: bin/wasm
//	artifacts:
//	  - file: client.js
//	    role: loader
//	    dir: bin/wasm/client
//
// String values may reference ${os}, ${variant} and ${root}.
package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specialistvlad/binverify/internal/config"
	"github.com/specialistvlad/binverify/internal/ctxlog"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type fileRoot struct {
	Name      string     `yaml:"name"`
	SizeUnit  string     `yaml:"size_unit"`
	Directory string     `yaml:"directory"`
	Artifacts []artifact `yaml:"artifacts"`
}

type artifact struct {
	File   string `yaml:"file"`
	Role   string `yaml:"role"`
	Dir    string `yaml:"dir"`
	Loader string `yaml:"loader"`
	SHA256 string `yaml:"sha256"`
}

// positions is decoded in a second pass to recover the source line of each
// artifact for error messages.
type positions struct {
	Artifacts []yaml.Node `yaml:"artifacts"`
}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and decodes a single YAML manifest file. Unknown keys are errors.
func (l *Loader) Load(ctx context.Context, vars config.Variables, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var root fileRoot
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	var pos positions
	if err := yaml.Unmarshal(data, &pos); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}

	expand := expander(vars)
	m := &config.Model{
		Source:    path,
		Name:      expand(root.Name),
		SizeUnit:  root.SizeUnit,
		Directory: expand(root.Directory),
	}
	for i, a := range root.Artifacts {
		line := 0
		if i < len(pos.Artifacts) {
			line = pos.Artifacts[i].Line
		}
		if a.File == "" {
			return nil, fmt.Errorf("%s:%d: artifact is missing required key \"file\"", path, line)
		}
		if a.Role == "" {
			return nil, fmt.Errorf("%s:%d: artifact %q is missing required key \"role\"", path, line, a.File)
		}
		m.Artifacts = append(m.Artifacts, &config.Artifact{
			File:   expand(a.File),
			Role:   a.Role,
			Dir:    expand(a.Dir),
			Loader: a.Loader,
			SHA256: a.SHA256,
			Pos:    fmt.Sprintf("%s:%d", path, line),
		})
	}

	logger.Debug("YAML loading complete.", zap.String("path", path), zap.Int("artifacts", len(m.Artifacts)))
	return m, nil
}

func expander(vars config.Variables) func(string) string {
	r := strings.NewReplacer(
		"${os}", vars.OS,
		"${variant}", vars.Variant,
		"${root}", vars.Root,
	)
	return r.Replace
}
