// Package report collects compile findings for a dashboard file and defines
// the error kinds surfaced by the compiler.
package report

import "fmt"

// Severity indicates whether a finding blocks compilation.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler so JSON output uses the string form.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Location points at an authored node, e.g. "dashboards[0].panels[3].grid".
type Location struct {
	File string `json:"file"`
	Path string `json:"path"`
}

// Finding is one problem found in a dashboard file.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

func NewError(rule, message string, loc Location) Finding {
	return Finding{Rule: rule, Severity: SeverityError, Message: message, Location: loc}
}

func NewWarning(rule, message string, loc Location) Finding {
	return Finding{Rule: rule, Severity: SeverityWarning, Message: message, Location: loc}
}

// Summary holds aggregate counts for a report.
type Summary struct {
	Dashboards   int `json:"dashboards"`
	Panels       int `json:"panels"`
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
}

// Report collects every finding for a single file.
type Report struct {
	File     string    `json:"file"`
	Loaded   bool      `json:"loaded"`
	Compiled bool      `json:"compiled"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
	Summary  Summary   `json:"summary"`
}

func NewReport(file string) *Report {
	return &Report{
		File:     file,
		Errors:   []Finding{},
		Warnings: []Finding{},
	}
}

// AddFinding files f under errors or warnings.
func (r *Report) AddFinding(f Finding) {
	if f.Location.File == "" {
		f.Location.File = r.File
	}
	switch f.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, f)
		r.Summary.ErrorCount++
	case SeverityWarning:
		r.Warnings = append(r.Warnings, f)
		r.Summary.WarningCount++
	}
}

// AddError converts err to a finding and adds it.
func (r *Report) AddError(err error) {
	r.AddFinding(FindingFromError(r.File, err))
}

func (r *Report) HasErrors() bool {
	return r.Summary.ErrorCount > 0
}

func (r *Report) HasWarnings() bool {
	return r.Summary.WarningCount > 0
}
