package report

import (
	"encoding/json"
	"testing"
)

func TestFormatJSONEmpty(t *testing.T) {
	r := NewReport("clean.yaml")
	r.Loaded = true

	data, err := FormatJSON(r)
	if err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if m["file"] != "clean.yaml" {
		t.Errorf("file = %v", m["file"])
	}
	if m["loaded"] != true {
		t.Errorf("loaded = %v", m["loaded"])
	}

	// errors and warnings must be empty arrays, not null
	for _, key := range []string{"errors", "warnings"} {
		arr, ok := m[key].([]any)
		if !ok {
			t.Errorf("%q should be an array", key)
			continue
		}
		if len(arr) != 0 {
			t.Errorf("%q should be empty", key)
		}
	}
}

func TestFormatJSONWithFindings(t *testing.T) {
	r := NewReport("bad.yaml")
	r.AddFinding(NewError("GRID", "panels overlap", Location{Path: "dashboards[0].panels[1]"}))

	data, err := FormatJSON(r)
	if err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var got Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(got.Errors))
	}
	e := got.Errors[0]
	if e.Rule != "GRID" || e.Severity != SeverityError || e.Location.File != "bad.yaml" {
		t.Errorf("finding = %+v", e)
	}
}
