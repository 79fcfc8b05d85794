// Package config is the authored dashboard tree and its YAML form.
//
// Discriminated unions decode from yaml.v3 nodes: panels, charts, controls
// and dimensions by their type tag, filters, metrics and queries by the
// shape of their keys. Decoding is strict; unknown keys are errors whose
// path names the offending key.
package config

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/report"
)

// File is the root of an authored document. Keys other than dashboards are
// ignored so that the root can hold YAML anchors.
type File struct {
	Dashboards []Dashboard `yaml:"dashboards"`
}

func (f *File) UnmarshalYAML(node *yaml.Node) error {
	node = resolve(node)
	if node.Kind != yaml.MappingNode {
		return report.Configf("", "expected a mapping with a dashboards list, got %s", kindName(node))
	}
	pairs, err := mappingPairs(node)
	if err != nil {
		return err
	}
	*f = File{}
	for _, p := range pairs {
		if p.key != "dashboards" {
			continue
		}
		if err := decodeValue(p.value, reflectValue(&f.Dashboards)); err != nil {
			return report.AtPath("dashboards", err)
		}
	}
	if len(f.Dashboards) == 0 {
		return report.Configf("dashboards", "at least one dashboard is required")
	}
	return nil
}

// Dashboard is one authored dashboard.
type Dashboard struct {
	Name        string    `yaml:"name"`
	ID          string    `yaml:"id,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Settings    Settings  `yaml:"settings,omitempty"`
	Query       *Query    `yaml:"query,omitempty"`
	Filters     []Filter  `yaml:"filters,omitempty"`
	Controls    []Control `yaml:"controls,omitempty"`
	Panels      []Panel   `yaml:"panels,omitempty"`
}

func (d *Dashboard) UnmarshalYAML(node *yaml.Node) error {
	type plain Dashboard
	if err := decodeMapping(node, (*plain)(d)); err != nil {
		return err
	}
	if d.Name == "" {
		return report.Configf("name", "required")
	}
	if d.Query != nil && d.Query.Language == ESQL {
		return report.Configf("query", "dashboard query must be kql or lucene")
	}
	return nil
}

// Settings are the dashboard-wide display options.
type Settings struct {
	Margins  *bool           `yaml:"margins,omitempty"`
	Titles   *bool           `yaml:"titles,omitempty"`
	Sync     SyncSettings    `yaml:"sync,omitempty"`
	Controls ControlSettings `yaml:"controls,omitempty"`
}

type SyncSettings struct {
	Cursor   *bool `yaml:"cursor,omitempty"`
	Tooltips *bool `yaml:"tooltips,omitempty"`
	Colors   *bool `yaml:"colors,omitempty"`
}

// ControlSettings configure the control group. Its flags are affirmative;
// the platform stores most of them inverted.
type ControlSettings struct {
	LabelPosition        string `yaml:"label_position,omitempty"`
	ApplyGlobalFilters   *bool  `yaml:"apply_global_filters,omitempty"`
	ApplyGlobalTimerange *bool  `yaml:"apply_global_timerange,omitempty"`
	IgnoreZeroResults    *bool  `yaml:"ignore_zero_results,omitempty"`
	ChainControls        *bool  `yaml:"chain_controls,omitempty"`
	ClickToApply         *bool  `yaml:"click_to_apply,omitempty"`
}

func (s *ControlSettings) UnmarshalYAML(node *yaml.Node) error {
	type plain ControlSettings
	if err := decodeMapping(node, (*plain)(s)); err != nil {
		return err
	}
	return oneOf("label_position", s.LabelPosition, "inline", "above")
}

// Parse decodes an authored document. YAML syntax errors are returned
// unkinded; structural errors are configuration errors.
func Parse(data []byte) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "parse yaml")
	}
	if len(root.Content) == 0 {
		return nil, report.Configf("", "empty document")
	}
	var f File
	if err := f.UnmarshalYAML(&root); err != nil {
		return nil, err
	}
	return &f, nil
}

// Marshal encodes dashboards as an authored document.
func Marshal(dashboards []Dashboard) ([]byte, error) {
	return yaml.Marshal(File{Dashboards: dashboards})
}
