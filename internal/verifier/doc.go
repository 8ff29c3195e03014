// Package verifier runs the two-phase artifact check.
//
// Phase one stats every manifest entry, in order, and never stops early so the
// report always covers the whole manifest. If anything is missing the run
// fails there and no module is loaded. Phase two loads each loader entry in
// order and stops at the first failure.
//
// Verify produces a Report and performs no output of its own; progress is
// delivered to an Observer as it happens. Run wraps Verify, maps the outcome
// to a process exit code and converts every error, panics included, into a
// failing code.
package verifier
