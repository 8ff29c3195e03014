// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
)

// InstallRoot returns the directory relative manifest entries resolve against
// when no root is configured: the parent of the directory holding the running
// executable, so a harness installed as <root>/bin/binverify checks
// <root>/bin/... no matter where it is invoked from.
func InstallRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	return rootFromExecutable(exe)
}

func rootFromExecutable(exe string) (string, error) {
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path %s: %w", exe, err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to make executable path absolute: %w", err)
	}
	return filepath.Dir(filepath.Dir(abs)), nil
}
