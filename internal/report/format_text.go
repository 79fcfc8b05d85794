package report

import (
	"fmt"
	"strings"
)

// FormatText renders the report with one finding per line and a summary line.
func FormatText(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "File: %s\n", r.File)

	for _, f := range r.Errors {
		writeFinding(&b, f)
	}
	for _, f := range r.Warnings {
		writeFinding(&b, f)
	}

	fmt.Fprintf(&b, "\n%d dashboards, %d panels, %d errors, %d warnings\n",
		r.Summary.Dashboards, r.Summary.Panels, r.Summary.ErrorCount, r.Summary.WarningCount)
	return b.String()
}

func writeFinding(b *strings.Builder, f Finding) {
	if f.Location.Path == "" {
		fmt.Fprintf(b, "  [%s] %s: %s\n", f.Rule, f.Severity, f.Message)
		return
	}
	fmt.Fprintf(b, "  [%s] %s: %s at %s\n", f.Rule, f.Severity, f.Message, f.Location.Path)
}
