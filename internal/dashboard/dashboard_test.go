package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/report"
)

const webLogs = `
dashboards:
  - name: Web logs
    description: Traffic overview
    query: {kql: "service.name : web"}
    filters:
      - exists: host.name
    controls:
      - {id: host, type: options, data_view: logs-*, field: host.name}
    panels:
      - {id: notes, title: Notes, type: markdown, content: "# Hi", grid: {x: 0, y: 0, w: 24, h: 5}}
      - id: requests
        title: Requests
        type: charts
        grid: {x: 24, y: 0, w: 24, h: 5}
        chart:
          type: metric
          data_view: logs-*
          primary: {aggregation: count}
`

func parse(t *testing.T, src string) *config.Dashboard {
	t.Helper()
	f, err := config.Parse([]byte(src))
	require.NoError(t, err)
	require.NotEmpty(t, f.Dashboards)
	return &f.Dashboards[0]
}

func render(t *testing.T, src string) ([]byte, gjson.Result) {
	t.Helper()
	t.Cleanup(ids.SetRandomSource(ids.Sequence("id")))
	doc, err := Render(parse(t, src))
	require.NoError(t, err)
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data, gjson.ParseBytes(data)
}

// nested parses a stringified sub-document.
func nested(doc gjson.Result, path string) gjson.Result {
	v := doc.Get(path)
	return gjson.Parse(v.String())
}

func TestRenderEnvelope(t *testing.T) {
	_, doc := render(t, webLogs)

	assert.Equal(t, ids.Stable("Web logs"), doc.Get("id").String())
	assert.Equal(t, "dashboard", doc.Get("type").String())
	assert.Equal(t, "8.8.0", doc.Get("coreMigrationVersion").String())
	assert.Equal(t, "10.2.0", doc.Get("typeMigrationVersion").String())
	assert.Equal(t, "Web logs", doc.Get("attributes.title").String())
	assert.Equal(t, "Traffic overview", doc.Get("attributes.description").String())
	assert.False(t, doc.Get("attributes.timeRestore").Bool())
	assert.Equal(t, int64(1), doc.Get("attributes.version").Int())
	assert.Equal(t, gjson.String, doc.Get("attributes.panelsJSON").Type)
	assert.Equal(t, gjson.String, doc.Get("attributes.optionsJSON").Type)

	opts := nested(doc, "attributes.optionsJSON")
	assert.True(t, opts.Get("useMargins").Bool())
	assert.False(t, opts.Get("hidePanelTitles").Bool())
	assert.True(t, opts.Get("syncCursor").Bool())
	assert.False(t, opts.Get("syncTooltips").Bool())
	assert.False(t, opts.Get("syncColors").Bool())

	search := nested(doc, "attributes.kibanaSavedObjectMeta.searchSourceJSON")
	assert.Equal(t, "service.name : web", search.Get("query.query").String())
	assert.Equal(t, "kuery", search.Get("query.language").String())
	assert.Len(t, search.Get("filter").Array(), 1)

	panels := nested(doc, "attributes.panelsJSON")
	assert.Equal(t, []any{"notes", "requests"}, panels.Get("#.panelIndex").Value())
	assert.Equal(t, []any{"visualization", "lens"}, panels.Get("#.type").Value())

	group := nested(doc, "attributes.controlGroupInput.panelsJSON")
	assert.Equal(t, "optionsListControl", group.Get("host.type").String())
}

func TestRenderReferencesAreNamespaced(t *testing.T) {
	_, doc := render(t, webLogs)

	refs := doc.Get("references").Array()
	require.Len(t, refs, 1)
	assert.Equal(t, "index-pattern", refs[0].Get("type").String())
	assert.Equal(t, "logs-*", refs[0].Get("id").String())
	assert.Regexp(t, `^requests:indexpattern-datasource-layer-`, refs[0].Get("name").String())
}

func TestRenderIsDeterministic(t *testing.T) {
	first, _ := render(t, webLogs)
	second, _ := render(t, webLogs)
	assert.JSONEq(t, string(first), string(second))
}

func TestRenderEmptyDashboard(t *testing.T) {
	_, doc := render(t, "dashboards:\n  - {name: Empty, id: empty}\n")

	assert.Equal(t, "empty", doc.Get("id").String())
	assert.True(t, doc.Get("references").IsArray())
	assert.Empty(t, doc.Get("references").Array())
	assert.Equal(t, "[]", doc.Get("attributes.panelsJSON").String())
	assert.Equal(t, "{}", doc.Get("attributes.controlGroupInput.panelsJSON").String())
}

func TestRenderSettings(t *testing.T) {
	_, doc := render(t, `
dashboards:
  - name: Settings
    settings:
      margins: false
      titles: false
      sync: {cursor: false, tooltips: true, colors: true}
`)
	opts := nested(doc, "attributes.optionsJSON")
	assert.False(t, opts.Get("useMargins").Bool())
	assert.True(t, opts.Get("hidePanelTitles").Bool())
	assert.False(t, opts.Get("syncCursor").Bool())
	assert.True(t, opts.Get("syncTooltips").Bool())
	assert.True(t, opts.Get("syncColors").Bool())
}

func TestRenderVersionFloors(t *testing.T) {
	tests := map[string]struct {
		src  string
		want string
	}{
		"baseline": {
			src:  "dashboards:\n  - name: A\n",
			want: "8.8.0",
		},
		"esql chart": {
			src: `
dashboards:
  - name: B
    panels:
      - type: charts
        grid: {x: 0, y: 0, w: 24, h: 10}
        esql:
          type: metric
          query: FROM logs-* | STATS c = COUNT(*)
          primary: {field: c}
`,
			want: "8.13.0",
		},
		"esql control wins over esql chart": {
			src: `
dashboards:
  - name: C
    controls:
      - {type: esql_static, variable_name: "?env", values: [prod, dev]}
    panels:
      - type: charts
        grid: {x: 0, y: 0, w: 24, h: 10}
        esql:
          type: metric
          query: FROM logs-* | STATS c = COUNT(*)
          primary: {field: c}
`,
			want: "8.19.0",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, doc := render(t, test.src)
			assert.Equal(t, test.want, doc.Get("coreMigrationVersion").String())
		})
	}
}

func TestRenderRejectsOverlap(t *testing.T) {
	d := parse(t, `
dashboards:
  - name: Overlap
    panels:
      - {type: markdown, title: A, content: a, grid: {x: 0, y: 0, w: 20, h: 10}}
      - {type: markdown, title: B, content: b, grid: {x: 10, y: 5, w: 20, h: 10}}
`)
	doc, err := Render(d)
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, report.IsKind(err, report.KindGrid))
	assert.Contains(t, err.Error(), `"A" at (x=0, y=0, w=20, h=10)`)
	assert.Contains(t, err.Error(), `"B" at (x=10, y=5, w=20, h=10)`)
}

func TestRenderErrorPaths(t *testing.T) {
	tests := map[string]struct {
		src  string
		kind report.Kind
		path string
	}{
		"map panel": {
			src: `
dashboards:
  - name: Map
    panels:
      - {type: map, grid: {x: 0, y: 0, w: 10, h: 10}}
`,
			kind: report.KindUnsupported,
			path: "panels[0].type",
		},
		"lens chart without data view": {
			src: `
dashboards:
  - name: Lens
    panels:
      - {type: markdown, content: a, grid: {x: 0, y: 0, w: 10, h: 10}}
      - type: charts
        grid: {x: 10, y: 0, w: 10, h: 10}
        chart: {type: metric, primary: {aggregation: count}}
`,
			kind: report.KindConfig,
			path: "panels[1].chart.data_view",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Render(parse(t, test.src))
			require.Error(t, err)
			f := report.FindingFromError("", err)
			assert.Equal(t, test.kind.String(), f.Rule)
			assert.Equal(t, test.path, f.Location.Path)
		})
	}
}

func TestRenderBuiltInCode(t *testing.T) {
	grid := config.Grid{X: 0, Y: 0, W: 10, H: 10}
	tests := map[string]struct {
		panel config.Panel
		path  string
	}{
		"markdown without body": {
			panel: config.Panel{PanelFields: config.PanelFields{Type: "markdown", Grid: grid}},
			path:  "panels[0].type",
		},
		"chart without body": {
			panel: config.Panel{
				PanelFields: config.PanelFields{Type: "charts", Grid: grid},
				Charts: &config.ChartsPanel{Chart: &config.Chart{
					ChartFields: config.ChartFields{Type: config.ChartPie, DataView: "logs-*"},
				}},
			},
			path: "panels[0].chart.type",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Cleanup(ids.SetRandomSource(ids.Sequence("id")))
			d := &config.Dashboard{Name: "Built", Panels: []config.Panel{test.panel}}
			var err error
			require.NotPanics(t, func() { _, err = Render(d) })
			require.Error(t, err)
			f := report.FindingFromError("", err)
			assert.Equal(t, report.KindConfig.String(), f.Rule)
			assert.Equal(t, test.path, f.Location.Path)
		})
	}
}

func TestRenderAllRootsErrors(t *testing.T) {
	f, err := config.Parse([]byte(`
dashboards:
  - name: Fine
  - name: Map
    panels:
      - {type: map, grid: {x: 0, y: 0, w: 10, h: 10}}
`))
	require.NoError(t, err)

	_, err = RenderAll(f)
	require.Error(t, err)
	assert.Equal(t, "dashboards[1].panels[0].type", report.FindingFromError("", err).Location.Path)

	f.Dashboards = f.Dashboards[:1]
	docs, err := RenderAll(f)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Fine", docs[0].Attributes.Title)
}
