// Package console prints verification progress for pipeline operators, one
// line per event, as the run proceeds.
package console

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/specialistvlad/binverify/internal/manifest"
	"github.com/specialistvlad/binverify/internal/verifier"
)

// Console implements verifier.Observer by writing human-readable lines.
type Console struct {
	out   io.Writer
	color bool
	name  string
	unit  manifest.SizeUnit
}

// New returns a Console writing to out. When useColor is set the status tags
// are coloured, provided the terminal supports it.
func New(out io.Writer, useColor bool) *Console {
	return &Console{out: out, color: useColor && color.SupportColor()}
}

var _ verifier.Observer = (*Console)(nil)

func (c *Console) ok() string   { return c.tag(color.FgGreen, "[OK]") }
func (c *Console) fail() string { return c.tag(color.FgRed, "[FAIL]") }
func (c *Console) pass() string { return c.tag(color.FgGreen, "[PASS]") }

func (c *Console) tag(col color.Color, s string) string {
	if !c.color {
		return s
	}
	return col.Render(s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Started implements verifier.Observer.
func (c *Console) Started(m *manifest.Manifest) {
	c.name = m.Name
	c.unit = m.SizeUnit
	c.printf("\n=== %s Binary Test ===\n\n", c.name)
}

// Checked implements verifier.Observer.
func (c *Console) Checked(r verifier.CheckResult) {
	switch {
	case !r.Exists:
		c.printf("%s %s - NOT FOUND\n", c.fail(), r.Entry.Filename)
	case r.ChecksumMismatch:
		c.printf("%s %s - CHECKSUM MISMATCH (expected %s, got %s)\n", c.fail(), r.Entry.Filename, r.Entry.SHA256, r.SHA256)
	default:
		c.printf("%s %-15s (%s)\n", c.ok(), r.Entry.Filename, FormatSize(*r.SizeBytes, c.unit))
	}
}

// MissingArtifacts implements verifier.Observer.
func (c *Console) MissingArtifacts([]verifier.CheckResult) {
	c.printf("\n%s Some %s files are missing\n", c.fail(), c.name)
}

// Loaded implements verifier.Observer.
func (c *Console) Loaded(r verifier.CheckResult) {
	if r.LoadError != "" {
		c.printf("\n%s Module loading error: %s\n", c.fail(), r.LoadError)
		return
	}
	c.printf("%s %s loads successfully\n", c.ok(), r.Entry.Filename)
}

// Finished implements verifier.Observer.
func (c *Console) Finished(r *verifier.Report) {
	if r.Passed {
		c.printf("\n%s All %s tests passed\n\n", c.pass(), c.name)
		return
	}
	c.printf("\n%s %s verification failed\n\n", c.fail(), c.name)
}

// Unexpected implements verifier.Observer.
func (c *Console) Unexpected(err error) {
	c.printf("\n%s Unexpected error: %v\n\n", c.fail(), err)
}

// FormatSize renders a byte count in the given unit.
func FormatSize(n int64, unit manifest.SizeUnit) string {
	if unit == manifest.SizeBytes {
		return humanize.Comma(n) + " bytes"
	}
	return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
}
