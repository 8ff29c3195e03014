package loader

import (
	"context"

	"github.com/specialistvlad/binverify/internal/ctxlog"
	"go.uber.org/zap"
)

// Native loads shared libraries (.so, .dylib, .dll) with the platform's
// dynamic loader and unloads them again. Library initialisers run; no
// exported symbol is called.
type Native struct{}

// NewNative creates a shared library loader.
func NewNative() *Native {
	return &Native{}
}

// Load implements Loader.
func (n *Native) Load(ctx context.Context, path string) error {
	if err := openAndClose(path); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Shared library loaded.", zap.String("path", path))
	return nil
}
