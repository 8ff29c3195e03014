// Package metadata reads the binaries.json inventory produced alongside a
// multi-platform release and turns the files of one platform into a
// manifest model, carrying each file's sha256 as its expected digest.
//
//	{
//	  "version": "1.0.0",
//	  "generated": "2025-01-01T00:00:00Z",
//	  "binaries": {
//	    "windows/64": [
//	      {"filename": "client.dll", "path": "dll/client.dll", "size": 1024,
//	       "hashes": {"md5": "...", "sha256": "..."}}
//	    ]
//	  }
//	}
//
// Paths are relative to <dir of binaries.json>/<os>/<variant>.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/binverify/internal/config"
	"github.com/specialistvlad/binverify/internal/ctxlog"
	"github.com/specialistvlad/binverify/internal/loader"
	"github.com/specialistvlad/binverify/internal/manifest"
	"go.uber.org/zap"
)

type document struct {
	Version   string              `json:"version"`
	Generated string              `json:"generated"`
	Binaries  map[string][]binary `json:"binaries"`
}

type binary struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Hashes   struct {
		MD5    string `json:"md5"`
		SHA256 string `json:"sha256"`
	} `json:"hashes"`
}

// osAliases maps the short OS names accepted on the command line to the
// names used as platform keys in binaries.json.
var osAliases = map[string]string{
	"win":    "windows",
	"mac":    "macos",
	"darwin": "macos",
}

// Loader is the binaries.json implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new binaries.json loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads path and selects the entries of the platform named by vars.
func (l *Loader) Load(ctx context.Context, vars config.Variables, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Metadata loader started.", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode metadata file %s: %w", path, err)
	}

	key, files, err := selectPlatform(doc.Binaries, vars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Metadata platform selected.", zap.String("platform", key), zap.String("version", doc.Version), zap.Int("files", len(files)))

	base := filepath.Join(filepath.Dir(path), filepath.FromSlash(key))
	model := &config.Model{
		Source:   path,
		Name:     "Binaries " + key,
		SizeUnit: string(manifest.SizeBytes),
	}
	for i, b := range files {
		pos := fmt.Sprintf("%s: binaries[%q][%d]", path, key, i)
		rel := filepath.FromSlash(strings.ReplaceAll(b.Path, `\`, "/"))
		if rel == "" {
			rel = b.Filename
		}
		if !filepath.IsLocal(rel) {
			return nil, fmt.Errorf("%s: path %q leaves the platform directory", pos, b.Path)
		}
		file := filepath.Base(rel)
		if b.Filename != "" && b.Filename != file {
			return nil, fmt.Errorf("%s: filename %q does not match path %q", pos, b.Filename, b.Path)
		}
		model.Artifacts = append(model.Artifacts, &config.Artifact{
			File:   file,
			Role:   string(roleFor(file)),
			Dir:    filepath.Join(base, filepath.Dir(rel)),
			SHA256: b.Hashes.SHA256,
			Pos:    pos,
		})
	}

	logger.Debug("Metadata loading complete.", zap.String("path", path), zap.Int("artifacts", len(model.Artifacts)))
	return model, nil
}

// selectPlatform finds the "<os>/<variant>" key for vars, trying the OS alias
// when the literal name is absent.
func selectPlatform(binaries map[string][]binary, vars config.Variables) (string, []binary, error) {
	osName := strings.ToLower(vars.OS)
	variant := strings.ToLower(vars.Variant)
	candidates := []string{osName + "/" + variant}
	if alias, ok := osAliases[osName]; ok {
		candidates = append(candidates, alias+"/"+variant)
	}
	for _, key := range candidates {
		if files, ok := binaries[key]; ok {
			return key, files, nil
		}
	}

	known := make([]string, 0, len(binaries))
	for k := range binaries {
		known = append(known, k)
	}
	sort.Strings(known)
	return "", nil, fmt.Errorf("platform %q not found (available: %s)", candidates[0], strings.Join(known, ", "))
}

// roleFor treats scripts and shared libraries as loaders and everything else
// (wasm payloads, headers, symbols) as payload.
func roleFor(file string) manifest.Role {
	switch kind, _ := loader.KindFor(file); kind {
	case loader.KindJS, loader.KindNative:
		return manifest.RoleLoader
	default:
		return manifest.RolePayload
	}
}
