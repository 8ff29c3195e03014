package verifier

import (
	"errors"

	"github.com/specialistvlad/binverify/internal/manifest"
)

// CheckResult is the outcome for one manifest entry.
type CheckResult struct {
	Entry manifest.Entry
	// Path is the resolved absolute path that was checked.
	Path      string
	Exists    bool
	SizeBytes *int64
	// SHA256 is only computed for entries that declare an expected digest.
	SHA256           string
	ChecksumMismatch bool
	LoadAttempted    bool
	LoadError        string
}

// Present reports whether the entry passed the existence phase.
func (r CheckResult) Present() bool {
	return r.Exists && !r.ChecksumMismatch
}

// Loaded reports whether the entry was loaded without error.
func (r CheckResult) Loaded() bool {
	return r.LoadAttempted && r.LoadError == ""
}

// Report aggregates every CheckResult of a run.
type Report struct {
	Manifest string
	SizeUnit manifest.SizeUnit
	Results  []CheckResult
	Passed   bool
	// Trail lists the states the run went through, ending in PASS or FAIL.
	Trail []State
}

// State returns the terminal state of the run.
func (r *Report) State() State {
	if len(r.Trail) == 0 {
		return StateStart
	}
	return r.Trail[len(r.Trail)-1]
}

// Missing returns the results that failed the existence phase.
func (r *Report) Missing() []CheckResult {
	var out []CheckResult
	for _, res := range r.Results {
		if !res.Present() {
			out = append(out, res)
		}
	}
	return out
}

// FailedLoad returns the loader that failed, or nil.
func (r *Report) FailedLoad() *CheckResult {
	for i := range r.Results {
		if r.Results[i].LoadAttempted && r.Results[i].LoadError != "" {
			return &r.Results[i]
		}
	}
	return nil
}

// Err describes why the run failed, or returns nil for a passing run.
func (r *Report) Err() error {
	if r.Passed {
		return nil
	}
	if missing := r.Missing(); len(missing) > 0 {
		entries := make([]manifest.Entry, len(missing))
		for i, m := range missing {
			entries[i] = m.Entry
		}
		return &MissingError{Entries: entries}
	}
	if failed := r.FailedLoad(); failed != nil {
		return &LoadError{Entry: failed.Entry, Err: errors.New(failed.LoadError)}
	}
	return ErrUnexpected
}
