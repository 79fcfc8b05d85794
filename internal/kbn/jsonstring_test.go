package kbn

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestJSONStringMarshal(t *testing.T) {
	type outer struct {
		Options JSONString[Options] `json:"optionsJSON"`
	}
	b, err := json.Marshal(outer{Options: Stringify(Options{UseMargins: true})})
	require.NoError(t, err)

	raw := gjson.GetBytes(b, "optionsJSON")
	require.Equal(t, gjson.String, raw.Type)
	assert.True(t, gjson.Get(raw.String(), "useMargins").Bool())
	assert.False(t, gjson.Get(raw.String(), "hidePanelTitles").Bool())
}

func TestJSONStringNestedEscapesOncePerLevel(t *testing.T) {
	in := ControlGroupInput{
		ChainingSystem:           "HIERARCHICAL",
		ControlStyle:             "oneLine",
		IgnoreParentSettingsJSON: Stringify(IgnoreParentSettings{IgnoreFilters: true}),
		PanelsJSON:               Stringify(map[string]ControlPanel{}),
	}
	b, err := json.Marshal(Attributes{
		ControlGroupInput: &in,
		PanelsJSON:        Stringify([]Panel{}),
	})
	require.NoError(t, err)

	assert.Equal(t, "{}", gjson.GetBytes(b, "controlGroupInput.panelsJSON").String())
	assert.Equal(t, "[]", gjson.GetBytes(b, "panelsJSON").String())
	ignore := gjson.GetBytes(b, "controlGroupInput.ignoreParentSettingsJSON").String()
	assert.True(t, gjson.Get(ignore, "ignoreFilters").Bool())
}

func TestJSONStringRoundTrip(t *testing.T) {
	src := Stringify(SearchSource{Query: Query{Query: `host:"a<b"`, Language: "kuery"}, Filter: []Filter{}})
	b, err := json.Marshal(src)
	require.NoError(t, err)

	var got JSONString[SearchSource]
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, src.Value, got.Value)
}

func TestOmittedFieldsAreAbsent(t *testing.T) {
	b, err := json.Marshal(Column{Label: "Count of records", DataType: "number", OperationType: "count"})
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(b, "params").Exists())
	assert.False(t, gjson.GetBytes(b, "filter").Exists())
	assert.False(t, gjson.GetBytes(b, "customLabel").Exists())

	b, err = json.Marshal(Range{Label: "open"})
	require.NoError(t, err)
	assert.Equal(t, `{"from":null,"to":null,"label":"open"}`, string(b))
}
