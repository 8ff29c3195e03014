// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// SizeUnit selects how file sizes are rendered in diagnostics.
type SizeUnit string

const (
	SizeMegabytes SizeUnit = "mb"
	SizeBytes     SizeUnit = "bytes"
)

// ParseSizeUnit converts a configuration string into a SizeUnit. An empty
// string selects megabytes.
func ParseSizeUnit(s string) (SizeUnit, error) {
	switch u := SizeUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case "":
		return SizeMegabytes, nil
	case SizeMegabytes, SizeBytes:
		return u, nil
	default:
		return "", fmt.Errorf("invalid size unit %q: must be %q or %q", s, SizeMegabytes, SizeBytes)
	}
}

// Manifest is the ordered list of artifacts one run expects.
type Manifest struct {
	Name     string
	SizeUnit SizeUnit
	Entries  []Entry
}

// ErrEmptyManifest is returned by Validate for a manifest without entries.
var ErrEmptyManifest = errors.New("manifest has no entries")

// Validate checks the structural invariants of a manifest. Paths are compared
// after resolution against root so two spellings of the same file collide.
func (m *Manifest) Validate(root string) error {
	if m == nil || len(m.Entries) == 0 {
		return ErrEmptyManifest
	}
	if _, err := ParseSizeUnit(string(m.SizeUnit)); err != nil {
		return err
	}

	var errs []error
	seen := make(map[string]int, len(m.Entries))
	for i, e := range m.Entries {
		if strings.TrimSpace(e.Filename) == "" {
			errs = append(errs, fmt.Errorf("entry %d: filename is empty", i))
			continue
		}
		if e.Filename != filepath.Base(e.Filename) {
			errs = append(errs, fmt.Errorf("entry %d: filename %q must not contain a path separator", i, e.Filename))
		}
		if _, err := ParseRole(string(e.Role)); err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i, e.Filename, err))
		}
		p := filepath.Clean(e.Path(root))
		if prev, dup := seen[p]; dup {
			errs = append(errs, fmt.Errorf("entry %d (%s): duplicates entry %d", i, e.Filename, prev))
			continue
		}
		seen[p] = i
	}
	return errors.Join(errs...)
}

// Loaders returns the entries with the loader role, in manifest order.
func (m *Manifest) Loaders() []Entry {
	var out []Entry
	for _, e := range m.Entries {
		if e.IsLoader() {
			out = append(out, e)
		}
	}
	return out
}
