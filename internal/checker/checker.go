// Package checker orchestrates loading, semantic passes, compilation and
// output schema validation for dashboard files, producing a consolidated
// report.
package checker

import (
	"fmt"
	"os"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/dashboard"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/loader"
	"github.com/foundry-zero/kbdash/internal/logger"
	"github.com/foundry-zero/kbdash/internal/report"
	"github.com/foundry-zero/kbdash/internal/schema"
	"github.com/foundry-zero/kbdash/internal/semantic"
)

// PassFunc is a semantic pass that inspects one dashboard and returns any
// findings (errors or warnings) with paths relative to the dashboard.
type PassFunc func(*config.Dashboard) []report.Finding

// CheckOptions controls which phases and passes run.
type CheckOptions struct {
	SemanticOnly bool     // Skip compilation and output schema validation.
	PassFilter   []string // If non-empty, only run passes with these names.
	Strict       bool     // Treat warnings as errors for exit-code purposes.
}

// passEntry binds a semantic pass to its name.
type passEntry struct {
	Name string
	Fn   PassFunc
}

// Checker orchestrates validation of dashboard files.
type Checker struct {
	sv     *schema.SchemaValidator
	passes []passEntry
	log    *logger.Logger
}

// NewChecker creates a Checker with the embedded output schema validator
// and all available semantic passes registered.
func NewChecker() (*Checker, error) {
	sv, err := schema.NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, "initialize schema validator")
	}
	c := &Checker{sv: sv, log: logger.New().With("component", "checker")}
	registerPasses(c)
	return c, nil
}

// RegisterPass adds a semantic pass to the checker.
func (c *Checker) RegisterPass(name string, fn PassFunc) {
	c.passes = append(c.passes, passEntry{Name: name, Fn: fn})
}

// Passes returns the names of the registered passes in run order.
func (c *Checker) Passes() []string {
	names := make([]string, 0, len(c.passes))
	for _, p := range c.passes {
		names = append(names, p.Name)
	}
	return names
}

// Check validates the dashboard file at path and returns a report. Every
// semantic finding is reported, not only the first; compilation runs only
// when no pass found an error.
func (c *Checker) Check(path string, opts CheckOptions) *report.Report {
	r := report.NewReport(path)

	if _, err := os.Stat(path); err != nil {
		r.AddFinding(report.NewError("INPUT", fmt.Sprintf("cannot access file: %v", err),
			report.Location{File: path}))
		return r
	}

	f, err := loader.Read(path)
	if err != nil {
		r.AddError(err)
		return r
	}
	c.check(r, f, opts)
	return r
}

// CheckFile runs the semantic passes and, unless disabled, compilation over
// an already decoded file.
func (c *Checker) CheckFile(name string, f *config.File, opts CheckOptions) *report.Report {
	r := report.NewReport(name)
	c.check(r, f, opts)
	return r
}

func (c *Checker) check(r *report.Report, f *config.File, opts CheckOptions) {
	r.Loaded = true
	r.Summary.Dashboards = len(f.Dashboards)

	for i := range f.Dashboards {
		d := &f.Dashboards[i]
		r.Summary.Panels += len(d.Panels)
		for _, p := range c.passes {
			if !passMatchesFilter(p.Name, opts.PassFilter) {
				continue
			}
			for _, finding := range p.Fn(d) {
				finding.Location.Path = rootPath(i, finding.Location.Path)
				r.AddFinding(finding)
			}
		}
	}

	c.log.Debug("passes finished", "file", r.File, "errors", len(r.Errors), "warnings", len(r.Warnings))
	if r.HasErrors() || opts.SemanticOnly {
		return
	}

	for i := range f.Dashboards {
		doc, err := dashboard.Render(&f.Dashboards[i])
		if err != nil {
			r.AddError(report.AtPath(fmt.Sprintf("dashboards[%d]", i), err))
			continue
		}
		c.log.Debug("rendered", "dashboard", f.Dashboards[i].Name, "panels", len(f.Dashboards[i].Panels))
		c.validateOutput(r, i, doc)
	}
	r.Compiled = !r.HasErrors()
}

func (c *Checker) validateOutput(r *report.Report, i int, doc *kbn.Dashboard) {
	for _, se := range c.sv.Validate(doc) {
		r.AddFinding(report.NewError("SCHEMA", se.String(),
			report.Location{Path: fmt.Sprintf("dashboards[%d]", i)}))
	}
}

// passMatchesFilter returns true if name is in the filter, or if the filter
// is empty (meaning run all passes).
func passMatchesFilter(name string, filter []string) bool {
	return len(filter) == 0 || slices.Contains(filter, name)
}

// rootPath roots a dashboard-relative path at the dashboard's index.
func rootPath(i int, path string) string {
	root := fmt.Sprintf("dashboards[%d]", i)
	switch {
	case path == "":
		return root
	case path[0] == '[':
		return root + path
	}
	return root + "." + path
}

// errorPass adapts an error pass into a PassFunc.
func errorPass(fn semantic.PassFunc) PassFunc {
	return func(d *config.Dashboard) []report.Finding {
		var findings []report.Finding
		for _, err := range fn(d) {
			findings = append(findings, report.FindingFromError("", err))
		}
		return findings
	}
}

// registerPasses wires up all available semantic passes.
func registerPasses(c *Checker) {
	for _, p := range semantic.Passes() {
		c.RegisterPass(p.Name, errorPass(p.Fn))
	}
	c.RegisterPass("warnings", semantic.CheckWarnings)
}
