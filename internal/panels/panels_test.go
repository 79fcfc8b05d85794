package panels

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/report"
)

func parsePanel(t *testing.T, src string) config.Panel {
	t.Helper()
	var p config.Panel
	require.NoError(t, yaml.Unmarshal([]byte(src), &p))
	return p
}

func compileJSON(t *testing.T, src string) (*Result, gjson.Result) {
	t.Helper()
	res, err := Compile(parsePanel(t, src), Options{SyncCursor: true})
	require.NoError(t, err)
	data, err := json.Marshal(res.Panel)
	require.NoError(t, err)
	return res, gjson.ParseBytes(data)
}

func TestIndex(t *testing.T) {
	p := parsePanel(t, "type: markdown\ntitle: Notes\ncontent: hi\ngrid: {x: 0, y: 0, w: 10, h: 5}")
	assert.Equal(t, ids.Stable("markdown", "Notes", "(x=0, y=0, w=10, h=5)"), Index(p))
	assert.Equal(t, Index(p), Index(p))

	p.ID = "notes"
	assert.Equal(t, "notes", Index(p))
}

func TestMarkdown(t *testing.T) {
	res, doc := compileJSON(t, `
id: notes
type: markdown
title: Notes
description: About this dashboard
hide_title: true
content: "# Hello"
grid: {x: 0, y: 0, w: 24, h: 8}
`)
	assert.Empty(t, res.References)
	assert.Equal(t, "visualization", doc.Get("type").String())
	assert.JSONEq(t, `{"x":0,"y":0,"w":24,"h":8,"i":"notes"}`, doc.Get("gridData").Raw)

	cfg := doc.Get("embeddableConfig")
	assert.True(t, cfg.Get("hidePanelTitles").Bool())
	assert.Equal(t, "About this dashboard", cfg.Get("description").String())
	assert.Equal(t, "markdown", cfg.Get("savedVis.type").String())
	assert.Equal(t, "# Hello", cfg.Get("savedVis.params.markdown").String())
	assert.Equal(t, int64(12), cfg.Get("savedVis.params.fontSize").Int())
	assert.True(t, cfg.Get("savedVis.params.openLinksInNewTab").Bool())
	assert.JSONEq(t, `{}`, cfg.Get("enhancements").Raw)
}

func TestSearch(t *testing.T) {
	res, doc := compileJSON(t, "id: s\ntype: search\nsaved_search_id: abc\ngrid: {x: 0, y: 0, w: 24, h: 8}")
	assert.Equal(t, "panel_s", doc.Get("panelRefName").String())
	assert.Equal(t, []kbn.Reference{{Type: "search", ID: "abc", Name: "s:panel_s"}}, res.References)
}

func TestLinks(t *testing.T) {
	res, doc := compileJSON(t, `
id: nav
type: links
layout: vertical
grid: {x: 0, y: 0, w: 10, h: 4}
items:
  - {id: home, dashboard: home-dash, label: Home, with_time: false}
  - {id: docs, url: "https://example.com", new_tab: true}
`)
	assert.Equal(t, []kbn.Reference{{Type: "dashboard", ID: "home-dash", Name: "nav:link_home_dashboard"}}, res.References)

	links := doc.Get("embeddableConfig.attributes")
	assert.Equal(t, "vertical", links.Get("layout").String())
	assert.Equal(t, "dashboardLink", links.Get("links.0.type").String())
	assert.Equal(t, "link_home_dashboard", links.Get("links.0.destinationRefName").String())
	assert.True(t, links.Get("links.0.options.useCurrentFilters").Bool())
	assert.False(t, links.Get("links.0.options.useCurrentDateRange").Bool())
	assert.Equal(t, "externalLink", links.Get("links.1.type").String())
	assert.Equal(t, int64(1), links.Get("links.1.order").Int())
	assert.True(t, links.Get("links.1.options.openInNewTab").Bool())
	assert.True(t, links.Get("links.1.options.encodeUrl").Bool())
}

func TestImage(t *testing.T) {
	_, doc := compileJSON(t, "type: image\nfrom_url: https://example.com/logo.png\nalt_text: Logo\ngrid: {x: 0, y: 0, w: 4, h: 4}")
	img := doc.Get("embeddableConfig.imageConfig")
	assert.JSONEq(t, `{"type":"url","url":"https://example.com/logo.png"}`, img.Get("src").Raw)
	assert.Equal(t, "contain", img.Get("sizing.objectFit").String())
	assert.Equal(t, "Logo", img.Get("altText").String())
}

func TestMapIsUnsupported(t *testing.T) {
	_, err := Compile(parsePanel(t, "type: map\ngrid: {x: 0, y: 0, w: 4, h: 4}\nlayers: [whatever]"), Options{})
	assert.True(t, report.IsKind(err, report.KindUnsupported))
}

func TestLensReferencesAreNamespaced(t *testing.T) {
	t.Cleanup(ids.SetRandomSource(ids.Sequence("layer")))
	res, doc := compileJSON(t, `
id: hits
type: charts
title: Hits
grid: {x: 0, y: 0, w: 12, h: 6}
chart:
  type: metric
  data_view: logs-*
  primary: {aggregation: count}
`)
	require.Len(t, res.References, 1)
	assert.Equal(t, kbn.Reference{Type: "index-pattern", ID: "logs-*", Name: "hits:indexpattern-datasource-layer-layer-0"}, res.References[0])
	assert.False(t, res.ESQL)

	cfg := doc.Get("embeddableConfig")
	assert.Equal(t, "lens", doc.Get("type").String())
	assert.Equal(t, "lnsMetric", cfg.Get("attributes.visualizationType").String())
	assert.Equal(t, "indexpattern-datasource-layer-layer-0", cfg.Get("attributes.references.0.name").String())
	assert.True(t, cfg.Get("syncCursor").Bool())
	assert.False(t, cfg.Get("syncColors").Bool())

	for _, r := range res.References {
		assert.True(t, strings.HasPrefix(r.Name, res.Panel.PanelIndex+":"))
	}
}

func TestESQLPanel(t *testing.T) {
	res, doc := compileJSON(t, `
type: charts
grid: {x: 0, y: 0, w: 12, h: 6}
esql:
  type: datatable
  query: FROM logs-* | STATS c = COUNT() BY host
  metrics: [{field: c}]
  rows: [{field: host}]
`)
	assert.True(t, res.ESQL)
	assert.Empty(t, res.References)
	assert.True(t, doc.Get("embeddableConfig.attributes.state.datasourceStates.textBased").Exists())
}

func TestChartErrorsAreRooted(t *testing.T) {
	tests := map[string]string{
		"type: charts\ngrid: {x: 0, y: 0, w: 4, h: 4}\nchart: {type: metric, primary: {aggregation: count}}":        "chart.data_view",
		"type: charts\ngrid: {x: 0, y: 0, w: 4, h: 4}\nlayers: [{type: reference_line, value: 1}]":                  "layers[0].type",
		"type: charts\ngrid: {x: 0, y: 0, w: 4, h: 4}\nesql: {type: metric, query: ROW a = 1, primary: {field: a}}": "esql.query",
	}
	for src, path := range tests {
		_, err := Compile(parsePanel(t, src), Options{})
		var e *report.Error
		require.ErrorAs(t, err, &e, src)
		assert.Equal(t, path, e.Path, src)
	}
}
