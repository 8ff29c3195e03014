package verifier

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/specialistvlad/binverify/internal/ctxlog"
	"github.com/specialistvlad/binverify/internal/fsutil"
	"github.com/specialistvlad/binverify/internal/loader"
	"github.com/specialistvlad/binverify/internal/manifest"
	"go.uber.org/zap"
)

// Process exit codes returned by Run.
const (
	ExitPass = 0
	ExitFail = 1
)

// Resolver picks the loader for a manifest entry. *loader.Registry
// implements it.
type Resolver interface {
	Resolve(e manifest.Entry) (loader.Loader, loader.Kind, error)
}

// Options configures a run. Zero values select the host filesystem, the
// built-in loaders and no observer.
type Options struct {
	// Root is the directory relative entry directories resolve against.
	Root     string
	FS       fsutil.FileSystem
	Loaders  Resolver
	Observer Observer
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = fsutil.OS{}
	}
	if o.Loaders == nil {
		o.Loaders = loader.NewRegistry()
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return o
}

// Verify checks every entry of m. The returned error is non-nil only for
// failures outside the missing/load taxonomy; a failing but well-formed run
// returns a Report with Passed set to false and a nil error.
func Verify(ctx context.Context, m *manifest.Manifest, opts Options) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	opts = opts.withDefaults()

	if err := m.Validate(opts.Root); err != nil {
		return nil, &UnexpectedError{Err: fmt.Errorf("invalid manifest: %w", err)}
	}

	sm := newMachine()
	report := &Report{
		Manifest: m.Name,
		SizeUnit: m.SizeUnit,
		Results:  make([]CheckResult, 0, len(m.Entries)),
	}
	finish := func() *Report {
		report.Trail = sm.trail
		return report
	}

	opts.Observer.Started(m)
	if err := sm.transition(StateCheckingExistence); err != nil {
		return nil, &UnexpectedError{Err: err}
	}

	allPresent := true
	for _, entry := range m.Entries {
		res, err := checkEntry(opts.FS, opts.Root, entry)
		if err != nil {
			return nil, err
		}
		logger.Debug("Artifact checked.", zap.String("path", res.Path), zap.Bool("exists", res.Exists), zap.Bool("checksum_mismatch", res.ChecksumMismatch))
		report.Results = append(report.Results, res)
		opts.Observer.Checked(res)
		allPresent = allPresent && res.Present()
	}

	if !allPresent {
		logger.Debug("Existence phase failed, skipping load phase.")
		if err := failWith(sm, StateMissingFiles); err != nil {
			return nil, err
		}
		opts.Observer.MissingArtifacts(report.Missing())
		return finish(), nil
	}

	if err := sm.transition(StateAllPresent); err != nil {
		return nil, &UnexpectedError{Err: err}
	}
	if err := sm.transition(StateLoading); err != nil {
		return nil, &UnexpectedError{Err: err}
	}

	for i := range report.Results {
		res := &report.Results[i]
		if !res.Entry.IsLoader() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, &UnexpectedError{Err: err}
		}

		res.LoadAttempted = true
		if err := loadEntry(ctx, opts.Loaders, res); err != nil {
			res.LoadError = err.Error()
			logger.Debug("Loader failed.", zap.String("path", res.Path), zap.Error(err))
			opts.Observer.Loaded(*res)
			if err := failWith(sm, StateLoadFailed); err != nil {
				return nil, err
			}
			return finish(), nil
		}
		logger.Debug("Loader loaded.", zap.String("path", res.Path))
		opts.Observer.Loaded(*res)
	}

	if err := sm.transition(StateAllLoaded); err != nil {
		return nil, &UnexpectedError{Err: err}
	}
	if err := sm.transition(StatePass); err != nil {
		return nil, &UnexpectedError{Err: err}
	}
	report.Passed = true
	return finish(), nil
}

func failWith(sm *machine, s State) error {
	if err := sm.transition(s); err != nil {
		return &UnexpectedError{Err: err}
	}
	if err := sm.transition(StateFail); err != nil {
		return &UnexpectedError{Err: err}
	}
	return nil
}

// checkEntry stats one entry. A missing file is a result; any other error
// aborts the run.
func checkEntry(fsys fsutil.FileSystem, root string, entry manifest.Entry) (CheckResult, error) {
	res := CheckResult{Entry: entry, Path: entry.Path(root)}

	info, err := fsys.Stat(res.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return res, nil
	case err != nil:
		return res, &UnexpectedError{Path: res.Path, Err: err}
	case info.IsDir():
		return res, &UnexpectedError{Path: res.Path, Err: errors.New("is a directory")}
	}

	res.Exists = true
	size := info.Size()
	res.SizeBytes = &size

	if entry.SHA256 != "" {
		sum, err := fsutil.SHA256(fsys, res.Path)
		if err != nil {
			return res, &UnexpectedError{Path: res.Path, Err: err}
		}
		res.SHA256 = sum
		res.ChecksumMismatch = !strings.EqualFold(sum, strings.TrimSpace(entry.SHA256))
	}
	return res, nil
}

// loadEntry resolves and runs the loader for one entry. A panicking loader
// counts as a failed load.
func loadEntry(ctx context.Context, resolver Resolver, res *CheckResult) (err error) {
	l, _, err := resolver.Resolve(res.Entry)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during load: %v", r)
		}
	}()
	return l.Load(ctx, res.Path)
}

// Run verifies m, reports the outcome to the observer and returns the process
// exit code. It never panics.
func Run(ctx context.Context, m *manifest.Manifest, opts Options) (code int) {
	opts = opts.withDefaults()
	logger := ctxlog.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Verification panicked.", zap.Any("panic", r))
			opts.Observer.Unexpected(&UnexpectedError{Err: fmt.Errorf("panic: %v", r)})
			code = ExitFail
		}
	}()

	report, err := Verify(ctx, m, opts)
	if err != nil {
		logger.Debug("Verification aborted.", zap.Error(err))
		opts.Observer.Unexpected(err)
		return ExitFail
	}

	opts.Observer.Finished(report)
	if report.Passed {
		return ExitPass
	}
	return ExitFail
}
