package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/binverify/internal/cli"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "run() should only return ExitErrors, got %v", err)
	return exitErr.Code
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Equal(t, 2, exitCode(t, err))
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_PassAndFail(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	manifest := filepath.Join(root, "binaries.hcl")
	writeFile(t, manifest, `
name = "Tools"

artifact "tool.js" {
  role = "loader"
  dir  = "bin"
}

artifact "tool.dat" {
  role = "payload"
  dir  = "bin"
}
`)
	writeFile(t, filepath.Join(root, "bin", "tool.js"), "exports.run = function () { return 1; };\n")
	args := []string{"--root", root, "--manifest", manifest, "--no-color"}

	// --- Act ---
	missingOut := &bytes.Buffer{}
	missingErr := run(context.Background(), missingOut, &bytes.Buffer{}, args)

	writeFile(t, filepath.Join(root, "bin", "tool.dat"), "payload")
	passOut := &bytes.Buffer{}
	passErr := run(context.Background(), passOut, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Equal(t, 1, exitCode(t, missingErr))
	require.Contains(t, missingOut.String(), "[FAIL] tool.dat - NOT FOUND")
	require.Contains(t, missingOut.String(), "[FAIL] Some Tools files are missing")

	require.Equal(t, 0, exitCode(t, passErr), "output:\n%s", passOut.String())
	require.Contains(t, passOut.String(), "[OK] tool.js loads successfully")
	require.Contains(t, passOut.String(), "[PASS] All Tools tests passed")
}

func TestRun_LoadFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bin", "wasm", "client.js"), "module.exports = {;\n")
	writeFile(t, filepath.Join(root, "bin", "wasm", "client.wasm"), "\x00asm\x01\x00\x00\x00")
	writeFile(t, filepath.Join(root, "bin", "wasm", "server.js"), "module.exports = {};\n")
	writeFile(t, filepath.Join(root, "bin", "wasm", "server.wasm"), "\x00asm\x01\x00\x00\x00")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--root", root, "--layout", "wasm-flat", "--no-color"})

	// --- Assert ---
	require.Equal(t, 1, exitCode(t, err))
	require.Contains(t, out.String(), "[FAIL] Module loading error:")
	require.NotContains(t, out.String(), "server.js loads successfully", "loading stops at the first failure")
}

func TestRun_ManifestErrorIsUnexpected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	manifest := filepath.Join(root, "broken.hcl")
	writeFile(t, manifest, "artifact \"x\" {\n")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--root", root, "--manifest", manifest})

	// --- Assert ---
	require.Equal(t, 1, exitCode(t, err))
	require.Contains(t, out.String(), "[FAIL] Unexpected error:")
	require.Contains(t, out.String(), "failed to parse")
}
