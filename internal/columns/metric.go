package columns

import (
	"math"
	"strconv"

	"github.com/foundry-zero/kbdash/internal/agg"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/formula"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/query"
	"github.com/foundry-zero/kbdash/internal/report"
)

// MetricRef is a compiled metric as seen by dimensions that sort by it.
type MetricRef struct {
	ID    string
	Label string
}

var defaultDecimals = map[string]int{
	config.FormatNumber:   2,
	config.FormatBytes:    2,
	config.FormatBits:     0,
	config.FormatPercent:  2,
	config.FormatDuration: 0,
	config.FormatCustom:   0,
}

// Format compiles a value format.
func Format(f *config.Format) *kbn.Format {
	if f == nil {
		return nil
	}
	return &kbn.Format{ID: f.Type, Params: &kbn.FormatParams{
		Decimals: defaults.Value(f.Decimals, defaultDecimals[f.Type]),
		Suffix:   f.Suffix,
		Compact:  defaults.IsTrue(f.Compact),
		Pattern:  f.Pattern,
	}}
}

// MetricID returns the accessor id of m: the author id, else a content hash.
func MetricID(m config.Metric) (string, error) {
	if m.ID != "" {
		return m.ID, nil
	}
	kind, err := m.Kind()
	if err != nil {
		return "", err
	}
	switch kind {
	case config.MetricFormula:
		text, err := formula.Render(*m.Formula)
		if err != nil {
			return "", err
		}
		return ids.Stable("formula", text), nil
	case config.MetricStatic:
		return ids.Stable("static_value", *m.Value), nil
	}
	atoms := []any{m.Aggregation, nilIfEmpty(m.Field)}
	switch {
	case m.Percentile != nil:
		atoms = append(atoms, *m.Percentile)
	case m.Rank != nil:
		atoms = append(atoms, *m.Rank)
	}
	if m.Filter != nil {
		atoms = append(atoms, m.Filter.Language, m.Filter.Text)
	}
	return ids.Stable(atoms...), nil
}

// Metric compiles m into s and returns its accessor id and label.
func Metric(s *Set, m config.Metric) (MetricRef, error) {
	kind, err := m.Kind()
	if err != nil {
		return MetricRef{}, err
	}
	id, err := MetricID(m)
	if err != nil {
		return MetricRef{}, err
	}

	switch kind {
	case config.MetricFormula:
		res, err := formula.Compile(id, m.Label, *m.Formula, Format(m.Format))
		if err != nil {
			return MetricRef{}, report.AtPath("formula", err)
		}
		for _, e := range res.Columns {
			if err := s.Add(e.ID, e.Column); err != nil {
				return MetricRef{}, err
			}
		}
		return MetricRef{ID: id, Label: res.Columns[0].Column.Label}, nil

	case config.MetricStatic:
		ref, err := Static(s, id, m.Label, *m.Value)
		if err != nil {
			return MetricRef{}, err
		}
		if f := Format(m.Format); f != nil {
			col, _ := s.Get(id)
			col.Params.Format = f
			s.cols[id] = col
		}
		return ref, nil

	case config.MetricColumn:
		return MetricRef{}, report.Configf("field", "metric needs an aggregation; bare fields reference ES|QL result columns")
	}

	info, ok := agg.Lookup(m.Aggregation)
	if !ok {
		return MetricRef{}, report.Configf("aggregation", "unknown aggregation %q", m.Aggregation)
	}
	filter, err := query.Ptr(m.Filter)
	if err != nil {
		return MetricRef{}, report.AtPath("filter", err)
	}
	col := agg.Column(info, agg.Params{
		Field:      m.Field,
		Percentile: m.Percentile,
		Rank:       m.Rank,
		SortField:  m.SortField,
		Filter:     filter,
	})
	if m.Label != "" {
		col.Label = m.Label
		col.CustomLabel = true
	}
	if m.EmptyAsNull != nil || m.Format != nil {
		if col.Params == nil {
			col.Params = &kbn.ColumnParams{}
		}
		if m.EmptyAsNull != nil {
			col.Params.EmptyAsNull = m.EmptyAsNull
		}
		col.Params.Format = Format(m.Format)
	}
	if err := s.Add(id, col); err != nil {
		return MetricRef{}, err
	}
	return MetricRef{ID: id, Label: col.Label}, nil
}

// Static adds a static-value column.
func Static(s *Set, id, label string, v float64) (MetricRef, error) {
	col := kbn.Column{
		Label:         "Static value: " + agg.Number(v),
		DataType:      "number",
		OperationType: "static_value",
		Scale:         "ratio",
		IsStaticValue: true,
		Params:        &kbn.ColumnParams{Value: FloatString(v)},
		References:    []string{},
	}
	if label != "" {
		col.Label = label
		col.CustomLabel = true
	}
	if err := s.Add(id, col); err != nil {
		return MetricRef{}, err
	}
	return MetricRef{ID: id, Label: col.Label}, nil
}

// FloatString renders v the way static values are stored: always with a
// fraction or an exponent, e.g. "100.0", "0.25", "1e+16".
func FloatString(v float64) string {
	abs := math.Abs(v)
	switch {
	case math.IsInf(v, 0) || math.IsNaN(v):
		return strconv.FormatFloat(v, 'g', -1, 64)
	case abs != 0 && (abs < 1e-4 || abs >= 1e16):
		return strconv.FormatFloat(v, 'e', -1, 64)
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
