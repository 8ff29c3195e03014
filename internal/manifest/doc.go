// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package manifest defines the fixed set of artifacts a verification run
// expects to find.
//
// A Manifest is an ordered list of entries. Each entry names a file, the
// directory it lives in and its role: loaders are the entry-point files that
// get a load attempt, payloads are the binary data files the loaders pull in
// and are only checked for presence and size.
//
// Directory layout is configuration. The three historical harness variants
// (split wasm directories, one shared wasm directory, per-platform native
// libraries) are all expressed as Layout presets that build a Manifest, and
// manifest files decoded by the config package build the same type.
package manifest
