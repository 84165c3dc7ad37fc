// Package lint implements the curriculum QA checks: internal link
// resolution, fenced code block language tags, details/summary disclosure
// blocks, and consistency between per-track copies of the same lesson.
package lint

import "fmt"

// Severity of a finding
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Check identifiers
const (
	CheckLinks       = "links"
	CheckFences      = "fences"
	CheckDisclosures = "disclosures"
	CheckVariants    = "variants"
)

// Finding is one problem reported by a check
type Finding struct {
	Check    string `json:"check"`
	Severity string `json:"severity"`
	Track    string `json:"track"`
	Slug     string `json:"slug"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("[%s] %s/%s:%d %s", f.Check, f.Track, f.Slug, f.Line, f.Message)
	}
	return fmt.Sprintf("[%s] %s/%s %s", f.Check, f.Track, f.Slug, f.Message)
}

// Document is one lesson copy as seen by the checks. The runner builds these
// from the lessons table; the CLI builds them from local files.
type Document struct {
	Slug   string
	Track  string
	Title  string
	Source []byte
}

func finding(check, severity string, doc Document, line int, format string, args ...interface{}) Finding {
	return Finding{
		Check:    check,
		Severity: severity,
		Track:    doc.Track,
		Slug:     doc.Slug,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	}
}
