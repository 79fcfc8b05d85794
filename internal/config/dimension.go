package config

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/report"
)

// DimensionKind is the type tag of a Dimension.
type DimensionKind string

const (
	DimensionValues        DimensionKind = "values"
	DimensionDateHistogram DimensionKind = "date_histogram"
	DimensionIntervals     DimensionKind = "intervals"
	DimensionFilters       DimensionKind = "filters"
	// DimensionColumn is an untyped ES|QL result column.
	DimensionColumn DimensionKind = "column"
)

// Dimension is a bucketing column.
type Dimension struct {
	Type  DimensionKind `yaml:"type,omitempty"`
	ID    string        `yaml:"id,omitempty"`
	Label string        `yaml:"label,omitempty"`
	Field string        `yaml:"field,omitempty"`
	// Collapse is honoured by pie charts only.
	Collapse string `yaml:"collapse,omitempty"`

	Size           *int           `yaml:"size,omitempty"`
	Sort           *DimensionSort `yaml:"sort,omitempty"`
	OtherBucket    *bool          `yaml:"other_bucket,omitempty"`
	MissingBucket  *bool          `yaml:"missing_bucket,omitempty"`
	Include        []string       `yaml:"include,omitempty"`
	Exclude        []string       `yaml:"exclude,omitempty"`
	IncludeIsRegex *bool          `yaml:"include_is_regex,omitempty"`
	ExcludeIsRegex *bool          `yaml:"exclude_is_regex,omitempty"`

	Interval         string `yaml:"interval,omitempty"`
	IncludeEmptyRows *bool  `yaml:"include_empty_rows,omitempty"`
	DropPartials     *bool  `yaml:"drop_partials,omitempty"`

	Granularity *int          `yaml:"granularity,omitempty"`
	Ranges      []RangeBucket `yaml:"ranges,omitempty"`

	Filters []Bucket `yaml:"filters,omitempty"`
}

// DimensionSort orders a values dimension by a metric, referenced by label
// or id.
type DimensionSort struct {
	By        string `yaml:"by,omitempty"`
	Direction string `yaml:"direction,omitempty"`
}

// RangeBucket is one numeric range. Nil bounds are open.
type RangeBucket struct {
	From  *float64 `yaml:"from,omitempty"`
	To    *float64 `yaml:"to,omitempty"`
	Label string   `yaml:"label,omitempty"`
}

// Bucket is one predicate bucket of a filters dimension.
type Bucket struct {
	Label string `yaml:"label,omitempty"`
	Query Query  `yaml:"query"`
}

var (
	dimensionCommon  = []string{"type", "id", "label", "collapse"}
	dimensionAllowed = map[DimensionKind][]string{
		DimensionValues:        {"field", "size", "sort", "other_bucket", "missing_bucket", "include", "exclude", "include_is_regex", "exclude_is_regex"},
		DimensionDateHistogram: {"field", "interval", "include_empty_rows", "drop_partials"},
		DimensionIntervals:     {"field", "granularity", "ranges"},
		DimensionFilters:       {"filters"},
		DimensionColumn:        {"field"},
	}
)

// DimensionKeys returns the keys a dimension of kind k may carry.
func DimensionKeys(k DimensionKind) []string {
	return append(slices.Clone(dimensionCommon), dimensionAllowed[k]...)
}

// Kind returns the dimension kind; an untyped dimension is an ES|QL column.
func (d Dimension) Kind() DimensionKind {
	if d.Type == "" {
		return DimensionColumn
	}
	return d.Type
}

func (d *Dimension) UnmarshalYAML(node *yaml.Node) error {
	type plain Dimension
	present, err := keys(node)
	if err != nil {
		return err
	}
	kind, err := scalarAt(node, "type")
	if err != nil {
		return err
	}
	if kind == "" {
		kind = string(DimensionColumn)
	}
	allowed, ok := dimensionAllowed[DimensionKind(kind)]
	if !ok || kind == string(DimensionColumn) && present["type"] {
		return oneOf("type", kind, "values", "date_histogram", "intervals", "filters")
	}
	if err := allowOnly(present, kind+" dimension", dimensionCommon, allowed); err != nil {
		return err
	}
	if err := decodeMapping(node, (*plain)(d)); err != nil {
		return err
	}

	switch d.Kind() {
	case DimensionValues, DimensionDateHistogram, DimensionIntervals, DimensionColumn:
		if d.Field == "" && d.Kind() != DimensionDateHistogram {
			return report.Configf("field", "%s dimension requires a field", d.Kind())
		}
	case DimensionFilters:
		if len(d.Filters) == 0 {
			return report.Configf("filters", "filters dimension requires at least one bucket")
		}
	}
	if d.Granularity != nil && (*d.Granularity < 1 || *d.Granularity > 7) {
		return report.Configf("granularity", "granularity must be between 1 and 7, got %d", *d.Granularity)
	}
	if d.Sort != nil {
		if err := oneOf("sort.direction", d.Sort.Direction, "asc", "desc"); err != nil {
			return err
		}
	}
	if d.Size != nil && *d.Size <= 0 {
		return report.Configf("size", "size must be positive")
	}
	for i, b := range d.Filters {
		switch b.Query.Language {
		case "":
			return report.Configf(fmt.Sprintf("filters[%d].query", i), "required")
		case ESQL:
			return report.Configf(fmt.Sprintf("filters[%d].query", i), "bucket query must be kql or lucene")
		}
	}
	return oneOf("collapse", d.Collapse, "sum", "avg", "min", "max")
}
