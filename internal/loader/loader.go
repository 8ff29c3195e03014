// Package loader brings compiled modules up from disk without calling into
// them. Each supported artifact kind has a Loader; a Registry picks one for a
// manifest entry.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/binverify/internal/manifest"
)

// Loader attempts to initialise the module stored at path. A nil error means
// the module loaded; the error message is surfaced verbatim otherwise.
type Loader interface {
	Load(ctx context.Context, path string) error
}

// Func adapts a plain function to the Loader interface.
type Func func(ctx context.Context, path string) error

// Load implements Loader.
func (f Func) Load(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Kind names a loader implementation.
type Kind string

const (
	KindJS     Kind = "js"
	KindWASM   Kind = "wasm"
	KindNative Kind = "native"
)

var kindsByExt = map[string]Kind{
	".js":    KindJS,
	".mjs":   KindJS,
	".cjs":   KindJS,
	".wasm":  KindWASM,
	".so":    KindNative,
	".dylib": KindNative,
	".dll":   KindNative,
}

// KindFor infers the loader kind from a file name.
func KindFor(filename string) (Kind, bool) {
	k, ok := kindsByExt[strings.ToLower(filepath.Ext(filename))]
	return k, ok
}

// Registry maps loader kinds to implementations.
type Registry struct {
	loaders map[Kind]Loader
}

// NewRegistry returns a registry holding the built-in loaders.
func NewRegistry() *Registry {
	r := &Registry{loaders: make(map[Kind]Loader)}
	r.Register(KindJS, NewJS())
	r.Register(KindWASM, NewWASM())
	r.Register(KindNative, NewNative())
	return r
}

// Register adds or replaces the loader for a kind.
func (r *Registry) Register(kind Kind, l Loader) {
	r.loaders[kind] = l
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.loaders))
	for k := range r.loaders {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}

// Resolve picks the loader for an entry: its explicit Loader field when set,
// otherwise the kind inferred from the file extension.
func (r *Registry) Resolve(e manifest.Entry) (Loader, Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(e.Loader)))
	if kind == "" {
		inferred, ok := KindFor(e.Filename)
		if !ok {
			return nil, "", fmt.Errorf("no loader for %s: unknown extension %q (set loader to one of %s)",
				e.Filename, filepath.Ext(e.Filename), strings.Join(r.Kinds(), ", "))
		}
		kind = inferred
	}
	l, ok := r.loaders[kind]
	if !ok {
		return nil, kind, fmt.Errorf("no loader registered for kind %q (known: %s)", kind, strings.Join(r.Kinds(), ", "))
	}
	return l, kind, nil
}
