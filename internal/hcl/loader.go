package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/binverify/internal/config"
	"github.com/specialistvlad/binverify/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses and decodes a single HCL manifest file.
func (l *Loader) Load(ctx context.Context, vars config.Variables, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", zap.String("path", path))

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(vars), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model := translate(path, &root, blockPositions(file.Body, "artifact"))
	logger.Debug("HCL loading complete.", zap.String("path", path), zap.Int("artifacts", len(model.Artifacts)))
	return model, nil
}

// evalContext exposes the manifest variables to HCL expressions.
func evalContext(vars config.Variables) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"os":      cty.StringVal(vars.OS),
			"variant": cty.StringVal(vars.Variant),
			"root":    cty.StringVal(vars.Root),
		},
	}
}

// blockPositions returns "file:line" for each block of the given type, in
// source order. gohcl decodes blocks in the same order.
func blockPositions(body hcl.Body, blockType string) []string {
	syntaxBody, ok := body.(*hclsyntax.Body)
	if !ok {
		return nil
	}
	var out []string
	for _, b := range syntaxBody.Blocks {
		if b.Type != blockType {
			continue
		}
		r := b.DefRange()
		out = append(out, fmt.Sprintf("%s:%d", r.Filename, r.Start.Line))
	}
	return out
}

func translate(path string, root *fileRoot, positions []string) *config.Model {
	m := &config.Model{
		Source:    path,
		Name:      root.Name,
		SizeUnit:  root.SizeUnit,
		Directory: root.Directory,
	}
	for i, a := range root.Artifacts {
		art := &config.Artifact{
			File:   a.File,
			Role:   a.Role,
			Dir:    a.Dir,
			Loader: a.Loader,
			SHA256: a.SHA256,
		}
		if i < len(positions) {
			art.Pos = positions[i]
		}
		m.Artifacts = append(m.Artifacts, art)
	}
	return m
}
