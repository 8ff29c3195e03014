package verifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/binverify/internal/manifest"
)

var (
	// ErrMissingArtifact matches runs that failed because an entry was absent
	// or did not match its expected digest.
	ErrMissingArtifact = errors.New("missing artifact")
	// ErrLoadFailure matches runs that failed because a loader raised an error.
	ErrLoadFailure = errors.New("load failure")
	// ErrUnexpected matches every other failure, such as a permission error.
	ErrUnexpected = errors.New("unexpected error")
)

// MissingError lists the entries that failed the existence phase.
type MissingError struct {
	Entries []manifest.Entry
}

func (e *MissingError) Error() string {
	names := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		names[i] = entry.Filename
	}
	return fmt.Sprintf("missing artifacts: %s", strings.Join(names, ", "))
}

func (e *MissingError) Unwrap() error { return ErrMissingArtifact }

// LoadError records the first loader that failed to load.
type LoadError struct {
	Entry manifest.Entry
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Entry.Filename, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoadFailure, e.Err} }

// UnexpectedError wraps a failure outside the missing/load taxonomy.
type UnexpectedError struct {
	Path string
	Err  error
}

func (e *UnexpectedError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *UnexpectedError) Unwrap() []error { return []error{ErrUnexpected, e.Err} }
