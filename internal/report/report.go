// Package report renders a verification run as a versioned JSON document for
// pipelines that want more than the exit code.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/binverify/internal/manifest"
	"github.com/specialistvlad/binverify/internal/verifier"
)

// Version is the report format version. Bump it on any incompatible change
// to Document.
const Version = "1"

// Status values for reports.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Document is the JSON summary of one run.
type Document struct {
	ReportVersion string    `json:"report_version"`
	RunID         string    `json:"run_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	Manifest      string    `json:"manifest"`
	Status        string    `json:"status"`
	State         string    `json:"state"`
	Error         string    `json:"error,omitempty"`
	Results       []Result  `json:"results"`
}

// Result is one entry of Document.Results.
type Result struct {
	File             string `json:"file"`
	Directory        string `json:"directory"`
	Path             string `json:"path"`
	Role             string `json:"role"`
	Exists           bool   `json:"exists"`
	SizeBytes        *int64 `json:"size_bytes,omitempty"`
	SHA256           string `json:"sha256,omitempty"`
	ChecksumMismatch bool   `json:"checksum_mismatch,omitempty"`
	LoadAttempted    bool   `json:"load_attempted"`
	LoadError        string `json:"load_error,omitempty"`
}

// Writer is a verifier.Observer that builds a Document from the run's final
// events.
type Writer struct {
	verifier.NopObserver

	doc Document
	now func() time.Time
}

// NewWriter returns a Writer stamped with a fresh run ID.
func NewWriter() *Writer {
	return &Writer{
		doc: Document{
			ReportVersion: Version,
			RunID:         uuid.New().String(),
			Status:        StatusFail,
			Results:       []Result{},
		},
		now: time.Now,
	}
}

// Started implements verifier.Observer.
func (w *Writer) Started(m *manifest.Manifest) {
	w.doc.Manifest = m.Name
}

// Finished implements verifier.Observer.
func (w *Writer) Finished(r *verifier.Report) {
	w.doc.GeneratedAt = w.now().UTC()
	w.doc.Manifest = r.Manifest
	w.doc.State = string(r.State())
	w.doc.Status = StatusFail
	if r.Passed {
		w.doc.Status = StatusPass
	}
	if err := r.Err(); err != nil {
		w.doc.Error = err.Error()
	}
	w.doc.Results = make([]Result, len(r.Results))
	for i, res := range r.Results {
		w.doc.Results[i] = Result{
			File:             res.Entry.Filename,
			Directory:        res.Entry.Directory,
			Path:             res.Path,
			Role:             string(res.Entry.Role),
			Exists:           res.Exists,
			SizeBytes:        res.SizeBytes,
			SHA256:           res.SHA256,
			ChecksumMismatch: res.ChecksumMismatch,
			LoadAttempted:    res.LoadAttempted,
			LoadError:        res.LoadError,
		}
	}
}

// Unexpected implements verifier.Observer.
func (w *Writer) Unexpected(err error) {
	w.doc.GeneratedAt = w.now().UTC()
	w.doc.Status = StatusFail
	w.doc.State = string(verifier.StateFail)
	w.doc.Error = err.Error()
}

// Document returns the document built so far.
func (w *Writer) Document() Document {
	return w.doc
}

// WriteFile writes the document as indented JSON.
func (w *Writer) WriteFile(path string) error {
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
