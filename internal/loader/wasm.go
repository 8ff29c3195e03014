package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/binverify/internal/ctxlog"
	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
)

// WASM loads standalone WebAssembly modules by compiling them with wazero,
// which decodes and validates the whole binary. Modules are not instantiated:
// their imports belong to a host this harness does not provide.
type WASM struct {
	config wazero.RuntimeConfig
}

// NewWASM creates a WebAssembly loader using the interpreter, which avoids
// spending time on native code generation for a one-shot check.
func NewWASM() *WASM {
	return &WASM{config: wazero.NewRuntimeConfigInterpreter()}
}

// Load implements Loader.
func (w *WASM) Load(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)

	bin, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	rt := wazero.NewRuntimeWithConfig(ctx, w.config)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, bin)
	if err != nil {
		return fmt.Errorf("invalid WebAssembly module: %w", err)
	}
	defer compiled.Close(ctx)

	logger.Debug("WebAssembly module compiled.", zap.String("path", path),
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Int("exports", len(compiled.ExportedFunctions())))
	return nil
}
