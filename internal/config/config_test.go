package config

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundry-zero/kbdash/internal/report"
)

const sample = `
common: &grid
  w: 24
  h: 10
dashboards:
  - name: Web logs
    description: Traffic overview
    settings:
      margins: false
      sync: {cursor: false}
      controls:
        label_position: above
        chain_controls: false
    query: {kql: "service.name : web"}
    filters:
      - exists: host.name
      - field: status
        in: [200, 304]
      - not: {field: env, equals: dev}
    controls:
      - type: options
        data_view: logs-*
        field: host.name
        match_technique: contains
      - type: time
    panels:
      - title: Notes
        type: markdown
        grid: {x: 0, y: 0, w: 24, h: 5}
        content: "# Hello"
      - title: Requests
        type: charts
        grid: {<<: *grid, x: 24, y: 0}
        chart:
          type: metric
          data_view: logs-*
          primary: {aggregation: count}
      - title: Errors
        type: charts
        grid: {x: 0, y: 10, w: 48, h: 12}
        layers:
          - type: bar
            data_view: logs-*
            dimension: {type: date_histogram}
            metrics:
              - {id: ratio, formula: {divide: [{count: {kql: "status >= 500"}}, {count: null}]}}
          - type: reference_line
            value: 100
      - title: Top hosts
        type: charts
        grid: {x: 0, y: 22, w: 24, h: 10}
        esql:
          type: datatable
          query: FROM logs-* | STATS c = COUNT(*) BY host.name
          metrics: [{field: c}]
          rows: [{field: host.name}]
`

func TestParseSample(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Dashboards, 1)

	d := f.Dashboards[0]
	assert.Equal(t, "Web logs", d.Name)
	require.NotNil(t, d.Settings.Margins)
	assert.False(t, *d.Settings.Margins)
	assert.Equal(t, "above", d.Settings.Controls.LabelPosition)
	assert.Equal(t, &Query{Language: KQL, Text: "service.name : web"}, d.Query)

	require.Len(t, d.Filters, 3)
	kinds := make([]FilterKind, len(d.Filters))
	for i, flt := range d.Filters {
		k, err := flt.Kind()
		require.NoError(t, err)
		kinds[i] = k
	}
	assert.Equal(t, []FilterKind{FilterExists, FilterPhrases, FilterNot}, kinds)
	assert.Equal(t, []any{200, 304}, d.Filters[1].In)

	require.Len(t, d.Controls, 2)
	assert.Equal(t, ControlOptions, d.Controls[0].Type)
	assert.Equal(t, ControlTime, d.Controls[1].Type)

	require.Len(t, d.Panels, 4)
	wantKinds := []PanelKind{PanelMarkdown, PanelLens, PanelMultiLayer, PanelESQL}
	for i, p := range d.Panels {
		k, err := p.Kind()
		require.NoError(t, err)
		assert.Equal(t, wantKinds[i], k, "panel %d", i)
	}

	assert.Equal(t, Grid{X: 24, Y: 0, W: 24, H: 10}, d.Panels[1].Grid)
	require.NotNil(t, d.Panels[1].Charts.Chart.Metric)
	assert.Equal(t, "count", d.Panels[1].Charts.Chart.Metric.Primary.Aggregation)

	layers := d.Panels[2].Charts.Layers
	require.Len(t, layers, 2)
	require.NotNil(t, layers[0].XY)
	ratio := layers[0].XY.Metrics[0]
	kind, err := ratio.Kind()
	require.NoError(t, err)
	assert.Equal(t, MetricFormula, kind)
	assert.Equal(t, OpDivide, ratio.Formula.Op)
	require.Len(t, ratio.Formula.Args, 2)
	assert.Equal(t, NewKQL("status >= 500"), ratio.Formula.Args[0].Agg.Filter)
	require.NotNil(t, layers[1].ReferenceLine)
	assert.Equal(t, 100.0, *layers[1].ReferenceLine.Value)

	esql := d.Panels[3].Charts.ESQL
	assert.Equal(t, ESQL, esql.Query.Language)
	require.NotNil(t, esql.Datatable)
	mk, err := esql.Datatable.Metrics[0].Kind()
	require.NoError(t, err)
	assert.Equal(t, MetricColumn, mk)
	assert.Equal(t, DimensionColumn, esql.Datatable.Rows[0].Kind())
}

func TestParseErrors(t *testing.T) {
	tests := map[string]struct {
		yaml string
		kind report.Kind
		path string
	}{
		"unknown dashboard key": {
			yaml: "dashboards: [{name: a, colour: red}]",
			kind: report.KindConfig,
			path: "dashboards[0].colour",
		},
		"missing name": {
			yaml: "dashboards: [{description: x}]",
			kind: report.KindConfig,
			path: "dashboards[0].name",
		},
		"unknown panel type": {
			yaml: "dashboards: [{name: a, panels: [{type: video, grid: {x: 0, y: 0, w: 1, h: 1}}]}]",
			kind: report.KindConfig,
			path: "dashboards[0].panels[0].type",
		},
		"ambiguous charts panel": {
			yaml: `dashboards: [{name: a, panels: [{type: charts, grid: {x: 0, y: 0, w: 1, h: 1},
              chart: {type: metric, data_view: d, primary: {aggregation: count}}, layers: []}]}]`,
			kind: report.KindConfig,
			path: "dashboards[0].panels[0]",
		},
		"grid past the right edge": {
			yaml: "dashboards: [{name: a, panels: [{type: markdown, content: x, grid: {x: 40, y: 0, w: 10, h: 1}}]}]",
			kind: report.KindGrid,
			path: "dashboards[0].panels[0].grid",
		},
		"negative grid": {
			yaml: "dashboards: [{name: a, panels: [{type: markdown, content: x, grid: {x: -1, y: 0, w: 10, h: 1}}]}]",
			kind: report.KindGrid,
			path: "dashboards[0].panels[0].grid",
		},
		"ambiguous filter": {
			yaml: "dashboards: [{name: a, filters: [{exists: a, dsl: {match_all: {}}}]}]",
			kind: report.KindConfig,
			path: "dashboards[0].filters[0]",
		},
		"range filter with gt and gte": {
			yaml: "dashboards: [{name: a, filters: [{field: n, gt: 1, gte: 2}]}]",
			kind: report.KindConfig,
			path: "dashboards[0].filters[0].gt",
		},
		"metric key not valid for kind": {
			yaml: `dashboards: [{name: a, panels: [{type: charts, grid: {x: 0, y: 0, w: 1, h: 1},
              chart: {type: metric, data_view: d, primary: {formula: {count: null}, field: x}}}]}]`,
			kind: report.KindConfig,
			path: "dashboards[0].panels[0].chart.primary.field",
		},
		"unknown formula operator": {
			yaml: `dashboards: [{name: a, panels: [{type: charts, grid: {x: 0, y: 0, w: 1, h: 1},
              chart: {type: metric, data_view: d, primary: {formula: {power: [1, 2]}}}}]}]`,
			kind: report.KindFormula,
			path: "dashboards[0].panels[0].chart.primary.formula.power",
		},
		"formula filter with kql and lucene": {
			yaml: `dashboards: [{name: a, panels: [{type: charts, grid: {x: 0, y: 0, w: 1, h: 1},
              chart: {type: metric, data_view: d, primary: {formula: {add: [{count: {kql: a, lucene: b}}, 1]}}}}]}]`,
			kind: report.KindFormula,
			path: "dashboards[0].panels[0].chart.primary.formula.add[0].count",
		},
		"custom extent without bounds": {
			yaml: `dashboards: [{name: a, panels: [{type: charts, grid: {x: 0, y: 0, w: 1, h: 1},
              chart: {type: bar, data_view: d, metrics: [{aggregation: count}],
                      appearance: {left_axis: {extent: {mode: custom, min: 0}}}}}]}]`,
			kind: report.KindConfig,
			path: "dashboards[0].panels[0].chart.appearance.left_axis.extent.mode",
		},
		"reference line outside layers": {
			yaml: `dashboards: [{name: a, panels: [{type: charts, grid: {x: 0, y: 0, w: 1, h: 1},
              chart: {type: reference_line, value: 1}}]}]`,
			kind: report.KindConfig,
			path: "dashboards[0].panels[0].chart.type",
		},
		"unknown control type": {
			yaml: "dashboards: [{name: a, controls: [{type: slider}]}]",
			kind: report.KindConfig,
			path: "dashboards[0].controls[0].type",
		},
		"query with two languages": {
			yaml: "dashboards: [{name: a, query: {kql: a, lucene: b}}]",
			kind: report.KindConfig,
			path: "dashboards[0].query",
		},
		"dimension type unknown": {
			yaml: `dashboards: [{name: a, panels: [{type: charts, grid: {x: 0, y: 0, w: 1, h: 1},
              chart: {type: bar, data_view: d, metrics: [{aggregation: count}], dimension: {type: geo, field: f}}}]}]`,
			kind: report.KindConfig,
			path: "dashboards[0].panels[0].chart.dimension.type",
		},
		"no dashboards": {
			yaml: "other: 1",
			kind: report.KindConfig,
			path: "dashboards",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)

			var e *report.Error
			require.True(t, errors.As(err, &e), "error %v is not a report.Error", err)
			assert.Equal(t, tc.kind, e.Kind, e.Error())
			assert.Equal(t, tc.path, e.Path, e.Error())
		})
	}
}

func TestParseSyntaxErrorIsUnkinded(t *testing.T) {
	_, err := Parse([]byte("dashboards: [\n"))
	require.Error(t, err)
	assert.Equal(t, report.Kind(0), report.KindOf(err))
}

func TestClassifiersAgree(t *testing.T) {
	raw := map[string]any{"type": "charts", "layers": []any{}}
	k, err := ClassifyPanel(raw)
	require.NoError(t, err)
	p := Panel{PanelFields: PanelFields{Type: "charts"}, Charts: &ChartsPanel{Layers: []Chart{}}}
	k2, err := p.Kind()
	require.NoError(t, err)
	assert.Equal(t, k, k2)
	assert.Equal(t, PanelMultiLayer, k)

	fk, err := ClassifyFilter(map[string]any{"field": "n", "gte": 1})
	require.NoError(t, err)
	fk2, err := Filter{Field: "n", GTE: 1}.Kind()
	require.NoError(t, err)
	assert.Equal(t, FilterRange, fk)
	assert.Equal(t, fk, fk2)

	mk, err := ClassifyMetric(map[string]any{"value": 3.0})
	require.NoError(t, err)
	v := 3.0
	mk2, err := Metric{Value: &v}.Kind()
	require.NoError(t, err)
	assert.Equal(t, MetricStatic, mk)
	assert.Equal(t, mk, mk2)
}

func TestGrid(t *testing.T) {
	_, err := NewGrid(0, 0, 0, 4)
	assert.True(t, report.IsKind(err, report.KindGrid))

	a, err := NewGrid(0, 0, 20, 10)
	require.NoError(t, err)
	b, err := NewGrid(10, 5, 20, 10)
	require.NoError(t, err)
	c, err := NewGrid(20, 0, 20, 10)
	require.NoError(t, err)
	d, err := NewGrid(0, 10, 20, 10)
	require.NoError(t, err)

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	assert.False(t, a.Overlaps(c), "touching on the right edge")
	assert.False(t, a.Overlaps(d), "touching on the bottom edge")
	assert.Equal(t, "(x=0, y=0, w=20, h=10)", a.String())
}

func TestMarshalRoundTrip(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	out, err := Marshal(f.Dashboards)
	require.NoError(t, err)

	again, err := Parse(out)
	require.NoError(t, err, string(out))
	assert.Equal(t, f.Dashboards, again.Dashboards)
}

func TestFormatShorthand(t *testing.T) {
	f, err := Parse([]byte(`dashboards: [{name: a, panels: [{type: charts, grid: {x: 0, y: 0, w: 1, h: 1},
  chart: {type: metric, data_view: d, primary: {aggregation: sum, field: bytes, format: bytes}}}]}]`))
	require.NoError(t, err)
	assert.Equal(t, &Format{Type: FormatBytes}, f.Dashboards[0].Panels[0].Charts.Chart.Metric.Primary.Format)
}
