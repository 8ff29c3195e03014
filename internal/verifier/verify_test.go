package verifier

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/binverify/internal/fsutil"
	"github.com/specialistvlad/binverify/internal/loader"
	"github.com/specialistvlad/binverify/internal/manifest"
	"github.com/stretchr/testify/require"
)

// stubLoaders resolves every entry to a loader that records its invocation
// and fails for the filenames listed in failures.
type stubLoaders struct {
	failures map[string]error
	panics   map[string]bool
	calls    []string
}

func (s *stubLoaders) Resolve(e manifest.Entry) (loader.Loader, loader.Kind, error) {
	return loader.Func(func(_ context.Context, path string) error {
		name := filepath.Base(path)
		s.calls = append(s.calls, name)
		if s.panics[name] {
			panic("loader exploded")
		}
		return s.failures[name]
	}), loader.KindJS, nil
}

// recorder captures observer events in order.
type recorder struct {
	events []string
	report *Report
	err    error
}

func (r *recorder) Started(m *manifest.Manifest) {
	r.events = append(r.events, "started:"+m.Name)
}

func (r *recorder) Checked(c CheckResult) {
	r.events = append(r.events, "checked:"+c.Entry.Filename)
}

func (r *recorder) MissingArtifacts([]CheckResult) {
	r.events = append(r.events, "missing")
}

func (r *recorder) Loaded(c CheckResult) {
	r.events = append(r.events, "loaded:"+c.Entry.Filename)
}

func (r *recorder) Finished(rep *Report) {
	r.report = rep
	r.events = append(r.events, "finished")
}

func (r *recorder) Unexpected(err error) {
	r.err = err
	r.events = append(r.events, "unexpected")
}

// fixture writes the named files under root/dir.
func fixture(t *testing.T, dir string, files ...string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, dir, f), []byte("content of "+f), 0o644))
	}
	return root
}

func clientManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Name:     "WASM",
		SizeUnit: manifest.SizeMegabytes,
		Entries: []manifest.Entry{
			{Directory: "bin/wasm/client", Filename: "client.js", Role: manifest.RoleLoader},
			{Directory: "bin/wasm/client", Filename: "client.wasm", Role: manifest.RolePayload},
		},
	}
}

func TestRun_AllPresentAndLoadable(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := fixture(t, "bin/wasm/client", "client.js", "client.wasm")
	loaders := &stubLoaders{}
	rec := &recorder{}

	// --- Act ---
	code := Run(context.Background(), clientManifest(), Options{Root: root, Loaders: loaders, Observer: rec})

	// --- Assert ---
	require.Equal(t, ExitPass, code)
	require.Equal(t, []string{"client.js"}, loaders.calls, "only loader entries should be loaded")
	require.Equal(t, []string{"started:WASM", "checked:client.js", "checked:client.wasm", "loaded:client.js", "finished"}, rec.events)
	require.True(t, rec.report.Passed)
	require.Equal(t, StatePass, rec.report.State())
	require.Equal(t, []State{StateStart, StateCheckingExistence, StateAllPresent, StateLoading, StateAllLoaded, StatePass}, rec.report.Trail)
	require.NoError(t, rec.report.Err())

	size := int64(len("content of client.wasm"))
	require.Equal(t, &size, rec.report.Results[1].SizeBytes)
	require.False(t, rec.report.Results[1].LoadAttempted, "payloads are never loaded")
}

func TestRun_MissingLoaderSkipsLoadPhase(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := fixture(t, "bin/wasm/client", "client.wasm")
	loaders := &stubLoaders{}
	rec := &recorder{}

	// --- Act ---
	code := Run(context.Background(), clientManifest(), Options{Root: root, Loaders: loaders, Observer: rec})

	// --- Assert ---
	require.Equal(t, ExitFail, code)
	require.Empty(t, loaders.calls, "no loader may be invoked when an artifact is missing")
	require.Equal(t, []string{"started:WASM", "checked:client.js", "checked:client.wasm", "missing", "finished"}, rec.events)

	rep := rec.report
	require.False(t, rep.Passed)
	require.Equal(t, StateFail, rep.State())
	require.Contains(t, rep.Trail, StateMissingFiles)
	require.False(t, rep.Results[0].Exists)
	require.Nil(t, rep.Results[0].SizeBytes)
	require.True(t, rep.Results[1].Exists, "entries after a missing one are still checked")

	err := rep.Err()
	require.ErrorIs(t, err, ErrMissingArtifact)
	require.EqualError(t, err, "missing artifacts: client.js")
}

func TestRun_ExistencePhaseReportsEveryEntry(t *testing.T) {
	t.Parallel()

	m, err := manifest.LayoutWASM.Build(manifest.Platform{}, "")
	require.NoError(t, err)
	rec := &recorder{}

	code := Run(context.Background(), m, Options{Root: t.TempDir(), Loaders: &stubLoaders{}, Observer: rec})

	require.Equal(t, ExitFail, code)
	require.Len(t, rec.report.Results, 4)
	require.Len(t, rec.report.Missing(), 4, "every entry should be evaluated even though the first is missing")
}

func TestRun_LoadFailureShortCircuits(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	for _, dir := range []string{"server", "client"} {
		d := filepath.Join(root, "bin", "wasm", dir)
		require.NoError(t, os.MkdirAll(d, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(d, dir+".js"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(d, dir+".wasm"), []byte("x"), 0o644))
	}
	m := &manifest.Manifest{
		Name:     "WASM",
		SizeUnit: manifest.SizeBytes,
		Entries: []manifest.Entry{
			{Directory: "bin/wasm/server", Filename: "server.js", Role: manifest.RoleLoader},
			{Directory: "bin/wasm/server", Filename: "server.wasm", Role: manifest.RolePayload},
			{Directory: "bin/wasm/client", Filename: "client.js", Role: manifest.RoleLoader},
			{Directory: "bin/wasm/client", Filename: "client.wasm", Role: manifest.RolePayload},
		},
	}
	loaders := &stubLoaders{failures: map[string]error{"server.js": errors.New("unexpected token")}}
	rec := &recorder{}

	// --- Act ---
	code := Run(context.Background(), m, Options{Root: root, Loaders: loaders, Observer: rec})

	// --- Assert ---
	require.Equal(t, ExitFail, code)
	require.Equal(t, []string{"server.js"}, loaders.calls, "loaders after the first failure must not be attempted")

	failed := rec.report.FailedLoad()
	require.NotNil(t, failed)
	require.Equal(t, "server.js", failed.Entry.Filename)
	require.Equal(t, "unexpected token", failed.LoadError)
	require.False(t, rec.report.Results[2].LoadAttempted)
	require.Equal(t, []State{StateStart, StateCheckingExistence, StateAllPresent, StateLoading, StateLoadFailed, StateFail}, rec.report.Trail)

	err := rec.report.Err()
	require.ErrorIs(t, err, ErrLoadFailure)
	require.EqualError(t, err, "failed to load server.js: unexpected token")
}

func TestRun_PanickingLoaderIsALoadFailure(t *testing.T) {
	t.Parallel()

	root := fixture(t, "bin/wasm/client", "client.js", "client.wasm")
	rec := &recorder{}

	code := Run(context.Background(), clientManifest(), Options{
		Root:     root,
		Loaders:  &stubLoaders{panics: map[string]bool{"client.js": true}},
		Observer: rec,
	})

	require.Equal(t, ExitFail, code)
	require.Equal(t, "panic during load: loader exploded", rec.report.Results[0].LoadError)
}

func TestRun_UnresolvableLoaderIsALoadFailure(t *testing.T) {
	t.Parallel()

	root := fixture(t, "bin", "client.bin")
	m := &manifest.Manifest{SizeUnit: manifest.SizeMegabytes, Entries: []manifest.Entry{
		{Directory: "bin", Filename: "client.bin", Role: manifest.RoleLoader},
	}}
	rec := &recorder{}

	code := Run(context.Background(), m, Options{Root: root, Observer: rec})

	require.Equal(t, ExitFail, code)
	require.Contains(t, rec.report.Results[0].LoadError, "unknown extension")
}

// deniedFS reports a permission error for one path.
type deniedFS struct {
	fsutil.OS
	denied string
}

func (d deniedFS) Stat(name string) (fs.FileInfo, error) {
	if filepath.Base(name) == d.denied {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrPermission}
	}
	return d.OS.Stat(name)
}

func TestRun_PermissionErrorIsUnexpected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := fixture(t, "bin/wasm/client", "client.js", "client.wasm")
	loaders := &stubLoaders{}
	rec := &recorder{}

	// --- Act ---
	code := Run(context.Background(), clientManifest(), Options{
		Root:     root,
		FS:       deniedFS{denied: "client.wasm"},
		Loaders:  loaders,
		Observer: rec,
	})

	// --- Assert ---
	require.Equal(t, ExitFail, code)
	require.Empty(t, loaders.calls)
	require.Equal(t, "unexpected", rec.events[len(rec.events)-1])
	require.ErrorIs(t, rec.err, ErrUnexpected)
	require.ErrorIs(t, rec.err, fs.ErrPermission)
	require.Nil(t, rec.report, "an aborted run has no final report")
}

func TestRun_InvalidManifestIsUnexpected(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	code := Run(context.Background(), &manifest.Manifest{}, Options{Observer: rec})

	require.Equal(t, ExitFail, code)
	require.ErrorIs(t, rec.err, manifest.ErrEmptyManifest)
	require.ErrorIs(t, rec.err, ErrUnexpected)
}

// panickyObserver blows up when the report is delivered.
type panickyObserver struct {
	recorder
}

func (p *panickyObserver) Finished(*Report) { panic("observer bug") }

func TestRun_RecoversFromPanics(t *testing.T) {
	t.Parallel()

	root := fixture(t, "bin/wasm/client", "client.js", "client.wasm")
	obs := &panickyObserver{}

	code := Run(context.Background(), clientManifest(), Options{Root: root, Loaders: &stubLoaders{}, Observer: obs})

	require.Equal(t, ExitFail, code)
	require.ErrorContains(t, obs.err, "panic: observer bug")
}

func TestVerify_ChecksumMismatchFailsExistencePhase(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := fixture(t, "bin", "client.js", "client.wasm")
	m := &manifest.Manifest{SizeUnit: manifest.SizeMegabytes, Entries: []manifest.Entry{
		{Directory: "bin", Filename: "client.js", Role: manifest.RoleLoader},
		{Directory: "bin", Filename: "client.wasm", Role: manifest.RolePayload, SHA256: "00ff"},
	}}
	loaders := &stubLoaders{}

	// --- Act ---
	rep, err := Verify(context.Background(), m, Options{Root: root, Loaders: loaders})

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, rep.Passed)
	require.Empty(t, loaders.calls)
	require.True(t, rep.Results[1].Exists)
	require.True(t, rep.Results[1].ChecksumMismatch)
	require.Len(t, rep.Results[1].SHA256, 64)
	require.Empty(t, rep.Results[0].SHA256, "digests are only computed when expected")
	require.ErrorIs(t, rep.Err(), ErrMissingArtifact)
}

func TestVerify_MatchingChecksumPasses(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "client.wasm"), []byte("hello world"), 0o644))
	m := &manifest.Manifest{SizeUnit: manifest.SizeMegabytes, Entries: []manifest.Entry{
		{Directory: root, Filename: "client.wasm", Role: manifest.RolePayload,
			SHA256: "B94D27B9934D3E08A52E52D7DA7DABFAC484EFE37A5380EE9088F7ACE2EFCDE9"},
	}}

	rep, err := Verify(context.Background(), m, Options{})

	require.NoError(t, err)
	require.True(t, rep.Passed, "digest comparison should ignore case")
}

func TestVerify_IsIdempotent(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		files     []string
		failures  map[string]error
		wantState State
	}{
		{name: "passing run", files: []string{"client.js", "client.wasm"}, wantState: StatePass},
		{
			name:      "load failure",
			files:     []string{"client.js", "client.wasm"},
			failures:  map[string]error{"client.js": errors.New("SyntaxError: unexpected token")},
			wantState: StateFail,
		},
		{name: "missing payload", files: []string{"client.js"}, wantState: StateFail},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			root := fixture(t, "bin/wasm/client", tc.files...)
			opts := Options{Root: root, Loaders: &stubLoaders{failures: tc.failures}}

			// --- Act ---
			first, err := Verify(context.Background(), clientManifest(), opts)
			require.NoError(t, err)
			second, err := Verify(context.Background(), clientManifest(), opts)
			require.NoError(t, err)

			// --- Assert ---
			require.Equal(t, tc.wantState, first.State())
			require.Empty(t, cmp.Diff(first, second), "two runs over the same files should produce identical reports")
		})
	}
}

func TestVerify_IdempotentRunReachesLoadPhase(t *testing.T) {
	t.Parallel()

	root := fixture(t, "bin/wasm/client", "client.js", "client.wasm")
	rep, err := Verify(context.Background(), clientManifest(), Options{Root: root, Loaders: &stubLoaders{}})

	require.NoError(t, err)
	require.Contains(t, rep.Trail, StateLoading)
	require.True(t, rep.Results[0].LoadAttempted, "the loader entry should have been loaded")
}

func TestVerify_CancelledContextAbortsLoadPhase(t *testing.T) {
	t.Parallel()

	root := fixture(t, "bin/wasm/client", "client.js", "client.wasm")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loaders := &stubLoaders{}

	_, err := Verify(ctx, clientManifest(), Options{Root: root, Loaders: loaders})

	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, loaders.calls)
}

func TestVerify_DirectoryInPlaceOfFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin", "client.js"), 0o755))
	m := &manifest.Manifest{SizeUnit: manifest.SizeMegabytes, Entries: []manifest.Entry{
		{Directory: "bin", Filename: "client.js", Role: manifest.RoleLoader},
	}}

	_, err := Verify(context.Background(), m, Options{Root: root})
	require.ErrorIs(t, err, ErrUnexpected)
	require.ErrorContains(t, err, "is a directory")
}
