// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Layout names a built-in directory convention.
type Layout string

const (
	// LayoutWASM keeps client and server artifacts in separate directories:
	// bin/wasm/client and bin/wasm/server.
	LayoutWASM Layout = "wasm"
	// LayoutWASMFlat keeps all four wasm artifacts in bin/wasm.
	LayoutWASMFlat Layout = "wasm-flat"
	// LayoutNative checks the client and server shared libraries built for
	// one platform under bin/<os>/<variant>/<libdir>, by default
	// bin/<os>/<variant>/dll/{client,server}.dll on every OS.
	LayoutNative Layout = "native"
)

// Layouts lists the presets in the order they are shown in help text.
var Layouts = []Layout{LayoutWASM, LayoutWASMFlat, LayoutNative}

// Platform selects the native build being checked.
type Platform struct {
	OS      string
	Variant string
	// LibDir and LibExt name the library directory and file extension.
	// Empty values select DefaultLibDir and DefaultLibExt.
	LibDir string
	LibExt string
}

// Native library defaults. Builds ship dll/*.dll for every platform.
const (
	DefaultLibDir = "dll"
	DefaultLibExt = ".dll"
)

// DefaultPlatform matches the native harness defaults.
var DefaultPlatform = Platform{OS: "win", Variant: "64", LibDir: DefaultLibDir, LibExt: DefaultLibExt}

// ParseLayout converts a configuration string into a Layout.
func ParseLayout(s string) (Layout, error) {
	l := Layout(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Layouts {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("invalid layout %q: must be one of %s", s, joinLayouts())
}

func joinLayouts() string {
	names := make([]string, len(Layouts))
	for i, l := range Layouts {
		names[i] = fmt.Sprintf("%q", l)
	}
	return strings.Join(names, ", ")
}

// Build produces the manifest for a preset. The platform is ignored by the
// wasm layouts.
func (l Layout) Build(p Platform, unit SizeUnit) (*Manifest, error) {
	if unit == "" {
		unit = SizeMegabytes
	}
	switch l {
	case LayoutWASM:
		client := filepath.Join("bin", "wasm", "client")
		server := filepath.Join("bin", "wasm", "server")
		return &Manifest{
			Name:     "WASM",
			SizeUnit: unit,
			Entries: []Entry{
				{Directory: client, Filename: "client.js", Role: RoleLoader},
				{Directory: client, Filename: "client.wasm", Role: RolePayload},
				{Directory: server, Filename: "server.js", Role: RoleLoader},
				{Directory: server, Filename: "server.wasm", Role: RolePayload},
			},
		}, nil
	case LayoutWASMFlat:
		dir := filepath.Join("bin", "wasm")
		return &Manifest{
			Name:     "WASM",
			SizeUnit: unit,
			Entries: []Entry{
				{Directory: dir, Filename: "client.js", Role: RoleLoader},
				{Directory: dir, Filename: "client.wasm", Role: RolePayload},
				{Directory: dir, Filename: "server.js", Role: RoleLoader},
				{Directory: dir, Filename: "server.wasm", Role: RolePayload},
			},
		}, nil
	case LayoutNative:
		if p.OS == "" || p.Variant == "" {
			return nil, fmt.Errorf("native layout requires an os and a variant")
		}
		osName := strings.ToLower(p.OS)
		libDir, ext := p.library()
		dir := filepath.Join("bin", osName, strings.ToLower(p.Variant), libDir)
		return &Manifest{
			Name:     fmt.Sprintf("Native %s/%s", osName, p.Variant),
			SizeUnit: unit,
			Entries: []Entry{
				{Directory: dir, Filename: "client" + ext, Role: RoleLoader},
				{Directory: dir, Filename: "server" + ext, Role: RoleLoader},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown layout %q", l)
	}
}

// library returns the library directory and extension, applying defaults.
func (p Platform) library() (libDir, ext string) {
	libDir, ext = p.LibDir, p.LibExt
	if libDir == "" {
		libDir = DefaultLibDir
	}
	if ext == "" {
		ext = DefaultLibExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return libDir, ext
}
