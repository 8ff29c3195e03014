//go:build (darwin || freebsd || linux) && !android

package loader

import (
	"fmt"

	"github.com/ebitengine/purego"
)

func openAndClose(path string) error {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return err
	}
	if err := purego.Dlclose(handle); err != nil {
		return fmt.Errorf("failed to unload %s: %w", path, err)
	}
	return nil
}
