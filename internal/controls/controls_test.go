package controls

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/report"
)

func groupJSON(t *testing.T, controls string, s config.ControlSettings) gjson.Result {
	t.Helper()
	var cs []config.Control
	require.NoError(t, yaml.Unmarshal([]byte(controls), &cs))
	g, err := Group(cs, s)
	require.NoError(t, err)
	data, err := json.Marshal(g)
	require.NoError(t, err)
	return gjson.ParseBytes(data)
}

func TestInvertedSettings(t *testing.T) {
	doc := groupJSON(t, "[]", config.ControlSettings{
		ApplyGlobalFilters:   defaults.Bool(false),
		ApplyGlobalTimerange: defaults.Bool(true),
		IgnoreZeroResults:    defaults.Bool(true),
		ChainControls:        defaults.Bool(false),
		LabelPosition:        "inline",
		ClickToApply:         defaults.Bool(true),
	})

	assert.Equal(t, "NONE", doc.Get("chainingSystem").String())
	assert.Equal(t, "oneLine", doc.Get("controlStyle").String())
	assert.True(t, doc.Get("showApplySelections").Bool())
	assert.Equal(t, "{}", doc.Get("panelsJSON").String())
	assert.JSONEq(t,
		`{"ignoreFilters":true,"ignoreQuery":true,"ignoreTimerange":false,"ignoreValidations":true}`,
		doc.Get("ignoreParentSettingsJSON").String())
}

func TestSettingsDefaults(t *testing.T) {
	doc := groupJSON(t, "[]", config.ControlSettings{})
	assert.Equal(t, "HIERARCHICAL", doc.Get("chainingSystem").String())
	assert.Equal(t, "oneLine", doc.Get("controlStyle").String())
	assert.False(t, doc.Get("showApplySelections").Bool())
	assert.JSONEq(t,
		`{"ignoreFilters":false,"ignoreQuery":false,"ignoreTimerange":false,"ignoreValidations":false}`,
		doc.Get("ignoreParentSettingsJSON").String())

	above := groupJSON(t, "[]", config.ControlSettings{LabelPosition: "above", ApplyGlobalTimerange: defaults.Bool(false)})
	assert.Equal(t, "twoLine", above.Get("controlStyle").String())
	assert.True(t, gjson.Get(above.Get("ignoreParentSettingsJSON").String(), "ignoreTimerange").Bool())
}

func TestControlKinds(t *testing.T) {
	t.Cleanup(ids.SetRandomSource(ids.Sequence("ctl")))
	doc := groupJSON(t, `
- {type: options, id: host, data_view: logs-*, field: host.name, match_technique: contains, single_select: true}
- {type: range, data_view: logs-*, field: bytes, step: 10, width: large, grow: true}
- {type: time, start_offset: 0.25, end_offset: 0.75}
- {type: esql_static, id: env, variable_name: "?env", values: [prod, dev]}
- {type: esql_query, id: svc, variable_name: svc, query: "FROM logs | STATS BY service", default: web}
`, config.ControlSettings{})
	panels := gjson.Parse(doc.Get("panelsJSON").String())

	opts := panels.Get("host")
	assert.Equal(t, "optionsListControl", opts.Get("type").String())
	assert.Equal(t, "medium", opts.Get("width").String())
	assert.False(t, opts.Get("grow").Bool())
	assert.Equal(t, int64(0), opts.Get("order").Int())
	assert.Equal(t, "wildcard", opts.Get("explicitInput.searchTechnique").String())
	assert.Equal(t, "host", opts.Get("explicitInput.id").String())
	assert.True(t, opts.Get("explicitInput.singleSelect").Bool())
	assert.Equal(t, "[]", opts.Get("explicitInput.selectedOptions").Raw)

	rng := panels.Get("ctl-0")
	assert.Equal(t, "rangeSliderControl", rng.Get("type").String())
	assert.Equal(t, "large", rng.Get("width").String())
	assert.True(t, rng.Get("grow").Bool())
	assert.Equal(t, 10.0, rng.Get("explicitInput.step").Float())

	slider := panels.Get("ctl-1")
	assert.Equal(t, "timeSlider", slider.Get("type").String())
	assert.True(t, slider.Get("grow").Bool())
	assert.Equal(t, 0.25, slider.Get("explicitInput.timesliceStartAsPercentageOfTimeRange").Float())

	static := panels.Get("env.explicitInput")
	assert.Equal(t, "STATIC_VALUES", static.Get("controlType").String())
	assert.Equal(t, "env", static.Get("variableName").String())
	assert.Equal(t, "values", static.Get("variableType").String())
	assert.Equal(t, `["prod","dev"]`, static.Get("availableOptions").Raw)
	assert.Equal(t, `["prod"]`, static.Get("selectedOptions").Raw)

	query := panels.Get("svc.explicitInput")
	assert.Equal(t, "VALUES_FROM_QUERY", query.Get("controlType").String())
	assert.Equal(t, "FROM logs | STATS BY service", query.Get("esqlQuery").String())
	assert.Equal(t, `["web"]`, query.Get("selectedOptions").Raw)
	assert.Equal(t, int64(4), panels.Get("svc.order").Int())
}

func TestDuplicateControlID(t *testing.T) {
	var cs []config.Control
	require.NoError(t, yaml.Unmarshal([]byte("- {type: time, id: t}\n- {type: time, id: t}"), &cs))
	_, err := Group(cs, config.ControlSettings{})
	var e *report.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "[1].id", e.Path)
}
