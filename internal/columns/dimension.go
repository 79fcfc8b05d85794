package columns

import (
	"fmt"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/query"
	"github.com/foundry-zero/kbdash/internal/report"
)

const (
	defaultTermsSize   = 5
	defaultGranularity = 4
	defaultTimeField   = "@timestamp"
)

// maxBars maps an intervals granularity to a histogram bar budget.
var maxBars = map[int]int{1: 1, 2: 4, 3: 10, 4: 25, 5: 50, 6: 75, 7: 100}

// DimensionID returns the accessor id of d: the author id, else a random id.
func DimensionID(d config.Dimension) string {
	if d.ID != "" {
		return d.ID
	}
	return ids.Random()
}

// Dimension compiles d into s. metrics are the chart's compiled metrics, in
// authored order; a values dimension sorts by one of them.
func Dimension(s *Set, d config.Dimension, metrics []MetricRef) (string, error) {
	var col kbn.Column
	var err error
	switch d.Kind() {
	case config.DimensionValues:
		col, err = terms(d, metrics)
	case config.DimensionDateHistogram:
		col = dateHistogram(d)
	case config.DimensionIntervals:
		col = intervals(d)
	case config.DimensionFilters:
		col, err = filters(d)
	case config.DimensionColumn:
		return "", report.Configf("type", "required")
	default:
		return "", report.Unsupportedf("type", "dimension type %q", d.Type)
	}
	if err != nil {
		return "", err
	}
	col.IsBucketed = true
	if d.Label != "" {
		col.Label = d.Label
		col.CustomLabel = true
	}
	id := DimensionID(d)
	if err := s.Add(id, col); err != nil {
		return "", err
	}
	return id, nil
}

func terms(d config.Dimension, metrics []MetricRef) (kbn.Column, error) {
	size := defaults.Value(d.Size, defaultTermsSize)
	params := &kbn.ColumnParams{
		Size:           size,
		OtherBucket:    defaults.Bool(defaults.Or(d.OtherBucket, true)),
		MissingBucket:  defaults.Bool(defaults.Or(d.MissingBucket, false)),
		ParentFormat:   &kbn.ParentFormat{ID: "terms"},
		Include:        d.Include,
		Exclude:        d.Exclude,
		IncludeIsRegex: defaults.Bool(defaults.Or(d.IncludeIsRegex, false)),
		ExcludeIsRegex: defaults.Bool(defaults.Or(d.ExcludeIsRegex, false)),
	}

	var by, direction string
	if d.Sort != nil {
		by, direction = d.Sort.By, d.Sort.Direction
	}
	switch {
	case by != "":
		ref, ok := resolveMetric(by, metrics)
		if !ok {
			return kbn.Column{}, report.Configf("sort.by", "no metric with label or id %q in this chart", by)
		}
		params.OrderBy = &kbn.OrderBy{Type: "column", ColumnID: ref.ID}
		params.OrderDirection = defaults.String(&direction, "desc")
	case len(metrics) > 0:
		params.OrderBy = &kbn.OrderBy{Type: "column", ColumnID: metrics[0].ID}
		params.OrderDirection = defaults.String(&direction, "desc")
	default:
		params.OrderBy = &kbn.OrderBy{Type: "alphabetical", Fallback: true}
		params.OrderDirection = defaults.String(&direction, "asc")
	}

	return kbn.Column{
		Label:         fmt.Sprintf("Top %d values of %s", size, d.Field),
		DataType:      "string",
		OperationType: "terms",
		Scale:         "ordinal",
		SourceField:   d.Field,
		Params:        params,
	}, nil
}

// resolveMetric matches by against metric labels first, then ids.
func resolveMetric(by string, metrics []MetricRef) (MetricRef, bool) {
	for _, m := range metrics {
		if m.Label == by {
			return m, true
		}
	}
	for _, m := range metrics {
		if m.ID == by {
			return m, true
		}
	}
	return MetricRef{}, false
}

func dateHistogram(d config.Dimension) kbn.Column {
	field := d.Field
	if field == "" {
		field = defaultTimeField
	}
	return kbn.Column{
		Label:         field,
		DataType:      "date",
		OperationType: "date_histogram",
		Scale:         "interval",
		SourceField:   field,
		Params: &kbn.ColumnParams{
			Interval:         defaults.String(&d.Interval, "auto"),
			IncludeEmptyRows: defaults.Bool(defaults.Or(d.IncludeEmptyRows, true)),
			DropPartials:     defaults.Bool(defaults.Or(d.DropPartials, false)),
		},
	}
}

func intervals(d config.Dimension) kbn.Column {
	if len(d.Ranges) == 0 {
		return kbn.Column{
			Label:         d.Field,
			DataType:      "number",
			OperationType: "range",
			Scale:         "interval",
			SourceField:   d.Field,
			Params: &kbn.ColumnParams{
				Type:             "histogram",
				Ranges:           []kbn.Range{{From: ptr(0), To: ptr(1000), Label: ""}},
				MaxBars:          maxBars[defaults.Value(d.Granularity, defaultGranularity)],
				IncludeEmptyRows: defaults.Bool(true),
			},
		}
	}

	ranges := make([]kbn.Range, len(d.Ranges))
	for i, r := range d.Ranges {
		ranges[i] = kbn.Range{From: r.From, To: r.To, Label: r.Label}
	}
	return kbn.Column{
		Label:         d.Field,
		DataType:      "string",
		OperationType: "range",
		Scale:         "ordinal",
		SourceField:   d.Field,
		Params: &kbn.ColumnParams{
			Type:   "range",
			Ranges: ranges,
			ParentFormat: &kbn.ParentFormat{ID: "range", Params: &kbn.ParentFormatParams{
				Template:        "arrow_right",
				ReplaceInfinity: true,
			}},
		},
	}
}

func filters(d config.Dimension) (kbn.Column, error) {
	buckets := make([]kbn.FilterBucket, len(d.Filters))
	for i, b := range d.Filters {
		q, err := query.Compile(&b.Query)
		if err != nil {
			return kbn.Column{}, report.AtPath(fmt.Sprintf("filters[%d].query", i), err)
		}
		buckets[i] = kbn.FilterBucket{Label: b.Label, Input: q}
	}
	return kbn.Column{
		Label:         "Filters",
		DataType:      "string",
		OperationType: "filters",
		Scale:         "ordinal",
		Params:        &kbn.ColumnParams{Filters: buckets},
	}, nil
}

func ptr(v float64) *float64 { return &v }
