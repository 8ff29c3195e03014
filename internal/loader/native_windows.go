//go:build windows

package loader

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func openAndClose(path string) error {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return fmt.Errorf("LoadLibrary %s: %w", path, err)
	}
	if err := windows.FreeLibrary(handle); err != nil {
		return fmt.Errorf("failed to unload %s: %w", path, err)
	}
	return nil
}
