package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/report"
)

func parseDashboard(t *testing.T, src string) *config.Dashboard {
	t.Helper()
	f, err := config.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, f.Dashboards, 1)
	return &f.Dashboards[0]
}

func errorPaths(errs []error) []string {
	var paths []string
	for _, err := range errs {
		paths = append(paths, report.FindingFromError("", err).Location.Path)
	}
	return paths
}

func rules(findings []report.Finding) []string {
	var out []string
	for _, f := range findings {
		out = append(out, f.Rule)
	}
	return out
}

func TestCheckGridOverlap(t *testing.T) {
	d := parseDashboard(t, `
dashboards:
  - name: Overlap
    panels:
      - {type: markdown, title: A, content: a, grid: {x: 0, y: 0, w: 20, h: 10}}
      - {type: markdown, title: B, content: b, grid: {x: 10, y: 5, w: 20, h: 10}}
`)
	errs := CheckGrid(d)
	require.Len(t, errs, 1)
	assert.True(t, report.IsKind(errs[0], report.KindGrid))
	assert.Equal(t, []string{"panels[1].grid"}, errorPaths(errs))
	msg := errs[0].Error()
	assert.Contains(t, msg, `"A"`)
	assert.Contains(t, msg, `"B"`)
	assert.Contains(t, msg, "(x=0, y=0, w=20, h=10)")
	assert.Contains(t, msg, "(x=10, y=5, w=20, h=10)")

	err := Validate(d)
	require.Error(t, err)
	assert.True(t, report.IsKind(err, report.KindGrid))
}

func TestCheckGridTouchingEdges(t *testing.T) {
	d := parseDashboard(t, `
dashboards:
  - name: Tiles
    panels:
      - {type: markdown, content: a, grid: {x: 0, y: 0, w: 24, h: 10}}
      - {type: markdown, content: b, grid: {x: 24, y: 0, w: 24, h: 10}}
      - {type: markdown, content: c, grid: {x: 0, y: 10, w: 48, h: 5}}
`)
	assert.Empty(t, CheckGrid(d))
	assert.NoError(t, Validate(d))
}

func TestCheckGridBounds(t *testing.T) {
	d := &config.Dashboard{Name: "Wide", Panels: []config.Panel{
		{PanelFields: config.PanelFields{Type: "markdown", Grid: config.Grid{X: 40, W: 10, H: 10}}, Markdown: &config.MarkdownPanel{Content: "a"}},
		{PanelFields: config.PanelFields{Type: "markdown", Grid: config.Grid{Y: 20, H: 10}}, Markdown: &config.MarkdownPanel{Content: "b"}},
	}}
	errs := CheckGrid(d)
	assert.Equal(t, []string{"panels[0].grid", "panels[1].grid"}, errorPaths(errs))
	assert.Contains(t, errs[0].Error(), "x+w=50")
}

func TestCheckLayersRooted(t *testing.T) {
	d := parseDashboard(t, `
dashboards:
  - name: Layers
    panels:
      - type: charts
        grid: {x: 0, y: 0, w: 24, h: 10}
        layers:
          - {type: reference_line, value: 10}
`)
	errs := CheckLayers(d)
	assert.Equal(t, []string{"panels[0].layers[0].type"}, errorPaths(errs))
}

func TestCheckReferences(t *testing.T) {
	d := parseDashboard(t, `
dashboards:
  - name: Refs
    panels:
      - type: charts
        grid: {x: 0, y: 0, w: 24, h: 10}
        chart:
          type: pie
          data_view: logs-*
          metrics: [{aggregation: count}]
          slice_by:
            - {type: values, field: host.name, sort: {by: Count of records}}
            - {type: values, field: service.name, sort: {by: missing}}
      - type: charts
        grid: {x: 24, y: 0, w: 24, h: 10}
        chart:
          type: datatable
          data_view: logs-*
          metrics: [{id: hits, aggregation: count}]
          rows: [{id: host, type: values, field: host.name}]
          sorting: {column_id: nope}
`)
	errs := CheckReferences(d)
	assert.Equal(t, []string{
		"panels[0].chart.slice_by[1].sort.by",
		"panels[1].chart.sorting.column_id",
	}, errorPaths(errs))
}

func TestCheckUniqueness(t *testing.T) {
	d := parseDashboard(t, `
dashboards:
  - name: Dupes
    controls:
      - {id: host, type: options, data_view: logs-*, field: host.name}
      - {id: host, type: options, data_view: logs-*, field: service.name}
    panels:
      - {id: notes, type: markdown, content: a, grid: {x: 0, y: 0, w: 10, h: 5}}
      - {id: notes, type: markdown, content: b, grid: {x: 10, y: 0, w: 10, h: 5}}
      - {type: markdown, content: c, grid: {x: 20, y: 0, w: 10, h: 5}}
`)
	errs := CheckUniqueness(d)
	assert.Equal(t, []string{"panels[1].id", "controls[1].id"}, errorPaths(errs))
	assert.Contains(t, errs[0].Error(), "panels[0]")
}

func TestCheckWarnings(t *testing.T) {
	d := parseDashboard(t, `
dashboards:
  - name: Warn
    controls:
      - {type: options, data_view: metrics-*, field: host.name}
    panels:
      - {type: markdown, content: "  ", hide_title: true, grid: {x: 0, y: 0, w: 10, h: 5}}
      - type: charts
        grid: {x: 10, y: 0, w: 10, h: 5}
        chart:
          type: metric
          data_view: logs-*
          primary: {aggregation: count}
`)
	findings := CheckWarnings(d)
	assert.Equal(t, []string{"WARN-EMPTY-MARKDOWN", "WARN-HIDE-UNTITLED", "WARN-CONTROL-DATA-VIEW"}, rules(findings))
	for _, f := range findings {
		assert.Equal(t, report.SeverityWarning, f.Severity)
	}
	assert.Equal(t, "controls[0].data_view", findings[2].Location.Path)
}
