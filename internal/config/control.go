package config

import (
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/report"
)

// ControlKind is the type tag of a Control.
type ControlKind string

const (
	ControlOptions    ControlKind = "options"
	ControlRange      ControlKind = "range"
	ControlTime       ControlKind = "time"
	ControlESQLStatic ControlKind = "esql_static"
	ControlESQLQuery  ControlKind = "esql_query"
)

// IsESQL reports whether k is driven by an ES|QL variable.
func (k ControlKind) IsESQL() bool {
	return k == ControlESQLStatic || k == ControlESQLQuery
}

// Control is one control-bar input.
type Control struct {
	Type  ControlKind `yaml:"type"`
	ID    string      `yaml:"id,omitempty"`
	Label string      `yaml:"label,omitempty"`
	Width string      `yaml:"width,omitempty"`
	Grow  *bool       `yaml:"grow,omitempty"`

	DataView       string   `yaml:"data_view,omitempty"`
	Field          string   `yaml:"field,omitempty"`
	MatchTechnique string   `yaml:"match_technique,omitempty"`
	SingleSelect   *bool    `yaml:"single_select,omitempty"`
	Exclude        *bool    `yaml:"exclude,omitempty"`
	WaitForResults *bool    `yaml:"wait_for_results,omitempty"`
	Step           *float64 `yaml:"step,omitempty"`

	StartOffset *float64 `yaml:"start_offset,omitempty"`
	EndOffset   *float64 `yaml:"end_offset,omitempty"`

	VariableName string   `yaml:"variable_name,omitempty"`
	VariableType string   `yaml:"variable_type,omitempty"`
	Values       []string `yaml:"values,omitempty"`
	Query        string   `yaml:"query,omitempty"`
	Default      string   `yaml:"default,omitempty"`
}

var (
	controlCommon  = []string{"type", "id", "label", "width", "grow"}
	controlAllowed = map[ControlKind][]string{
		ControlOptions:    {"data_view", "field", "match_technique", "single_select", "exclude", "wait_for_results"},
		ControlRange:      {"data_view", "field", "step"},
		ControlTime:       {"start_offset", "end_offset"},
		ControlESQLStatic: {"variable_name", "variable_type", "values", "default", "single_select"},
		ControlESQLQuery:  {"variable_name", "variable_type", "query", "default", "single_select"},
	}
)

// ControlKeys returns the keys a control of kind k may carry.
func ControlKeys(k ControlKind) []string {
	return append(slices.Clone(controlCommon), controlAllowed[k]...)
}

func (c *Control) UnmarshalYAML(node *yaml.Node) error {
	type plain Control
	kind, err := scalarAt(node, "type")
	if err != nil {
		return err
	}
	allowed, ok := controlAllowed[ControlKind(kind)]
	if !ok {
		if kind == "" {
			return report.Configf("type", "required")
		}
		return oneOf("type", kind, "options", "range", "time", "esql_static", "esql_query")
	}
	present, err := keys(node)
	if err != nil {
		return err
	}
	if err := allowOnly(present, kind+" control", controlCommon, allowed); err != nil {
		return err
	}
	if err := decodeMapping(node, (*plain)(c)); err != nil {
		return err
	}
	return c.validate()
}

func (c *Control) validate() error {
	if err := oneOf("width", c.Width, "small", "medium", "large"); err != nil {
		return err
	}
	switch c.Type {
	case ControlOptions, ControlRange:
		if c.DataView == "" {
			return report.Configf("data_view", "required")
		}
		if c.Field == "" {
			return report.Configf("field", "required")
		}
		return oneOf("match_technique", c.MatchTechnique, "prefix", "contains", "exact")
	case ControlTime:
		for path, v := range map[string]*float64{"start_offset": c.StartOffset, "end_offset": c.EndOffset} {
			if v != nil && (*v < 0 || *v > 1) {
				return report.Configf(path, "offset must be a fraction between 0 and 1")
			}
		}
		if c.StartOffset != nil && c.EndOffset != nil && *c.StartOffset > *c.EndOffset {
			return report.Configf("start_offset", "start_offset must not exceed end_offset")
		}
	case ControlESQLStatic, ControlESQLQuery:
		if c.VariableName == "" {
			return report.Configf("variable_name", "required")
		}
		if c.Type == ControlESQLStatic && len(c.Values) == 0 {
			return report.Configf("values", "at least one value is required")
		}
		if c.Type == ControlESQLQuery && c.Query == "" {
			return report.Configf("query", "required")
		}
		return oneOf("variable_type", c.VariableType, "values", "fields", "functions", "time_literal")
	}
	return nil
}
