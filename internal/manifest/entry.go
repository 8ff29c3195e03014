// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Role classifies what a verification run does with an entry.
type Role string

const (
	// RoleLoader entries are checked for presence and then loaded.
	RoleLoader Role = "loader"
	// RolePayload entries are checked for presence and size only.
	RolePayload Role = "payload"
)

// ParseRole converts a configuration string into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleLoader, RolePayload:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role %q: must be %q or %q", s, RoleLoader, RolePayload)
	}
}

// Entry is a single expected artifact.
type Entry struct {
	Directory string
	Filename  string
	Role      Role
	// Loader overrides the loader kind inferred from the file extension.
	Loader string
	// SHA256 is the expected hex digest. Empty means the digest is not checked.
	SHA256 string
}

// Path joins the entry's directory and filename. Relative directories are
// resolved against root.
func (e Entry) Path(root string) string {
	dir := e.Directory
	if !filepath.IsAbs(dir) && root != "" {
		dir = filepath.Join(root, dir)
	}
	return filepath.Join(dir, e.Filename)
}

// IsLoader reports whether the entry takes part in the load phase.
func (e Entry) IsLoader() bool {
	return e.Role == RoleLoader
}

// String is used in log fields and error messages.
func (e Entry) String() string {
	return fmt.Sprintf("%s (%s)", filepath.ToSlash(filepath.Join(e.Directory, e.Filename)), e.Role)
}
