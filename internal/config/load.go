package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/binverify/internal/ctxlog"
	"github.com/specialistvlad/binverify/internal/fsutil"
	"go.uber.org/zap"
)

// Loaders maps a file extension (with the leading dot) to the Loader for it.
type Loaders map[string]Loader

// Extensions returns the registered extensions, sorted.
func (l Loaders) Extensions() []string {
	exts := make([]string, 0, len(l))
	for ext := range l {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// LoadAll loads every manifest file found under the given paths. A path may
// be a file or a directory; directories are searched recursively and their
// files are loaded in lexical order.
func (l Loaders) LoadAll(ctx context.Context, vars Variables, paths ...string) ([]*Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := l.findFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no manifest files found in %s (supported: %s)",
			strings.Join(paths, ", "), strings.Join(l.Extensions(), ", "))
	}
	logger.Debug("Discovered manifest files.", zap.Int("count", len(files)))

	models := make([]*Model, 0, len(files))
	for _, file := range files {
		loader := l[strings.ToLower(filepath.Ext(file))]
		m, err := loader.Load(ctx, vars, file)
		if err != nil {
			return nil, err
		}
		if m.Source == "" {
			m.Source = file
		}
		logger.Debug("Manifest file loaded.", zap.String("file", file), zap.Int("artifacts", len(m.Artifacts)))
		models = append(models, m)
	}
	return models, nil
}

func (l Loaders) findFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing manifest path %s: %w", path, err)
		}
		if info.IsDir() {
			files, err := fsutil.FindFilesByExtension(path, l.Extensions()...)
			if err != nil {
				return nil, fmt.Errorf("failed to search %s: %w", path, err)
			}
			for _, f := range files {
				add(f)
			}
			continue
		}
		if _, ok := l[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil, fmt.Errorf("unsupported manifest file %s (supported: %s)", path, strings.Join(l.Extensions(), ", "))
		}
		add(path)
	}
	return all, nil
}
