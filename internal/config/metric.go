package config

import (
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/agg"
	"github.com/foundry-zero/kbdash/internal/report"
)

// MetricKind discriminates Metric by shape.
type MetricKind string

const (
	MetricAggregated MetricKind = "aggregated"
	MetricFormula    MetricKind = "formula"
	MetricStatic     MetricKind = "static"
	// MetricColumn references an ES|QL result column by field.
	MetricColumn MetricKind = "column"
)

// Metric is a value column. A formula key selects a formula, a value key
// without an aggregation selects a static value, an aggregation key selects
// a field aggregation and a bare field references an ES|QL column.
type Metric struct {
	ID          string       `yaml:"id,omitempty"`
	Label       string       `yaml:"label,omitempty"`
	Aggregation string       `yaml:"aggregation,omitempty"`
	Field       string       `yaml:"field,omitempty"`
	Format      *Format      `yaml:"format,omitempty"`
	Filter      *Query       `yaml:"filter,omitempty"`
	Percentile  *float64     `yaml:"percentile,omitempty"`
	Rank        *float64     `yaml:"rank,omitempty"`
	SortField   string       `yaml:"sort_field,omitempty"`
	EmptyAsNull *bool        `yaml:"empty_as_null,omitempty"`
	Formula     *FormulaExpr `yaml:"formula,omitempty"`
	Value       *float64     `yaml:"value,omitempty"`
}

var (
	metricCommon  = []string{"id", "label", "format"}
	metricAllowed = map[MetricKind][]string{
		MetricAggregated: {"aggregation", "field", "filter", "percentile", "rank", "sort_field", "empty_as_null"},
		MetricFormula:    {"formula"},
		MetricStatic:     {"value"},
		MetricColumn:     {"field"},
	}
)

// MetricKeys returns the keys a metric of kind k may carry.
func MetricKeys(k MetricKind) []string {
	return append(slices.Clone(metricCommon), metricAllowed[k]...)
}

func metricKind(has func(string) bool) (MetricKind, error) {
	switch {
	case has("formula"):
		if has("aggregation") || has("value") {
			return "", report.Configf("formula", "ambiguous metric: formula cannot be combined with aggregation or value")
		}
		return MetricFormula, nil
	case has("aggregation"):
		return MetricAggregated, nil
	case has("value"):
		return MetricStatic, nil
	case has("field"):
		return MetricColumn, nil
	}
	return "", report.Configf("", "metric must set one of aggregation, formula, value or field")
}

// ClassifyMetric returns the kind of a metric given as a raw decoded tree.
func ClassifyMetric(raw map[string]any) (MetricKind, error) {
	return metricKind(func(k string) bool { _, ok := raw[k]; return ok })
}

// Kind returns the kind of m.
func (m Metric) Kind() (MetricKind, error) {
	return metricKind(func(k string) bool {
		switch k {
		case "formula":
			return m.Formula != nil
		case "aggregation":
			return m.Aggregation != ""
		case "value":
			return m.Value != nil
		case "field":
			return m.Field != ""
		}
		return false
	})
}

func (m *Metric) UnmarshalYAML(node *yaml.Node) error {
	type plain Metric
	present, err := keys(node)
	if err != nil {
		return err
	}
	kind, err := metricKind(func(k string) bool { return present[k] })
	if err != nil {
		return err
	}
	if err := allowOnly(present, string(kind)+" metric", metricCommon, metricAllowed[kind]); err != nil {
		return err
	}
	if err := decodeMapping(node, (*plain)(m)); err != nil {
		return err
	}
	if kind != MetricAggregated {
		return nil
	}

	info, ok := agg.Lookup(m.Aggregation)
	if !ok {
		return oneOf("aggregation", m.Aggregation, agg.Names()...)
	}
	switch {
	case m.Field == "" && !info.FieldOptional:
		return report.Configf("field", "%s requires a field", m.Aggregation)
	case info.Name == "percentile" && m.Percentile == nil:
		return report.Configf("percentile", "percentile aggregation requires percentile")
	case info.Name != "percentile" && m.Percentile != nil:
		return report.Configf("percentile", "percentile is only valid for the percentile aggregation")
	case info.Name == "percentile_rank" && m.Rank == nil:
		return report.Configf("rank", "percentile_rank aggregation requires rank")
	case info.Name != "percentile_rank" && m.Rank != nil:
		return report.Configf("rank", "rank is only valid for the percentile_rank aggregation")
	case info.Name != "last_value" && m.SortField != "":
		return report.Configf("sort_field", "sort_field is only valid for the last_value aggregation")
	case m.Filter != nil && m.Filter.Language == ESQL:
		return report.Configf("filter", "metric filter must be kql or lucene")
	}
	return nil
}

// Number formats.
const (
	FormatNumber   = "number"
	FormatBytes    = "bytes"
	FormatBits     = "bits"
	FormatPercent  = "percent"
	FormatDuration = "duration"
	FormatCustom   = "custom"
)

// Format is a value format. The short form is the bare type name.
type Format struct {
	Type     string `yaml:"type"`
	Decimals *int   `yaml:"decimals,omitempty"`
	Suffix   string `yaml:"suffix,omitempty"`
	Compact  *bool  `yaml:"compact,omitempty"`
	Pattern  string `yaml:"pattern,omitempty"`
}

func (f *Format) UnmarshalYAML(node *yaml.Node) error {
	type plain Format
	node = resolve(node)
	if node.Kind == yaml.ScalarNode && !isNull(node) {
		*f = Format{Type: node.Value}
	} else if err := decodeMapping(node, (*plain)(f)); err != nil {
		return err
	}
	if f.Type == "" {
		return report.Configf("type", "required")
	}
	if err := oneOf("type", f.Type, FormatNumber, FormatBytes, FormatBits, FormatPercent, FormatDuration, FormatCustom); err != nil {
		return err
	}
	if f.Type == FormatCustom && f.Pattern == "" {
		return report.Configf("pattern", "custom format requires a pattern")
	}
	return nil
}
