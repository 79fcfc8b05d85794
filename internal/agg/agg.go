// Package agg describes the field aggregations shared by metric columns and
// formula helper columns.
package agg

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/foundry-zero/kbdash/internal/kbn"
)

// RecordsField is the pseudo-field counted by a field-less count.
const RecordsField = "___records___"

// Info describes one aggregation.
type Info struct {
	Name  string
	Title string
	// EmptyAsNull is the platform default the compiler emits explicitly.
	EmptyAsNull bool
	// FieldOptional is true only for count.
	FieldOptional bool
}

var table = map[string]Info{
	"count":           {Name: "count", Title: "Count", EmptyAsNull: true, FieldOptional: true},
	"sum":             {Name: "sum", Title: "Sum", EmptyAsNull: true},
	"min":             {Name: "min", Title: "Minimum", EmptyAsNull: true},
	"max":             {Name: "max", Title: "Maximum", EmptyAsNull: true},
	"average":         {Name: "average", Title: "Average"},
	"unique_count":    {Name: "unique_count", Title: "Unique count", EmptyAsNull: true},
	"median":          {Name: "median", Title: "Median"},
	"last_value":      {Name: "last_value", Title: "Last value"},
	"percentile":      {Name: "percentile", Title: "Percentile"},
	"percentile_rank": {Name: "percentile_rank", Title: "Percentile rank"},
}

// Lookup returns the aggregation called name.
func Lookup(name string) (Info, bool) {
	info, ok := table[name]
	return info, ok
}

// Names returns every aggregation name, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Params carries the per-aggregation arguments of one column.
type Params struct {
	Field      string
	Percentile *float64
	Rank       *float64
	SortField  string
	// Filter is an optional per-column KQL or Lucene filter.
	Filter *kbn.Query
}

// Label renders the default label of an aggregation column.
func Label(info Info, p Params) string {
	switch info.Name {
	case "count":
		if p.Field == "" {
			return "Count of records"
		}
		return "Count of " + p.Field
	case "percentile":
		return fmt.Sprintf("%s percentile of %s", Ordinal(deref(p.Percentile)), p.Field)
	case "percentile_rank":
		return fmt.Sprintf("Percentile rank (%s) of %s", Number(deref(p.Rank)), p.Field)
	default:
		return fmt.Sprintf("%s of %s", info.Title, p.Field)
	}
}

// Column builds the column record of an aggregation. The label is the
// default label; callers override it for author labels.
func Column(info Info, p Params) kbn.Column {
	col := kbn.Column{
		Label:         Label(info, p),
		DataType:      "number",
		OperationType: info.Name,
		Scale:         "ratio",
		SourceField:   p.Field,
		Filter:        p.Filter,
	}
	params := &kbn.ColumnParams{}
	used := info.EmptyAsNull
	if info.EmptyAsNull {
		params.EmptyAsNull = boolPtr(true)
	}
	switch info.Name {
	case "count":
		if p.Field == "" {
			col.SourceField = RecordsField
		}
	case "last_value":
		params.SortField = p.SortField
		if params.SortField == "" {
			params.SortField = "@timestamp"
		}
		if col.Filter == nil {
			col.Filter = &kbn.Query{Query: fmt.Sprintf("%q: *", p.Field), Language: "kuery"}
		}
		used = true
	case "percentile":
		params.Percentile = p.Percentile
		used = true
	case "percentile_rank":
		params.Value = deref(p.Rank)
		used = true
	}
	if used {
		col.Params = params
	}
	return col
}

// Ordinal renders n as an English ordinal: 1st, 2nd, 3rd, 11th, 95th, 99.9th.
func Ordinal(n float64) string {
	s := Number(n)
	if n != math.Trunc(n) {
		return s + "th"
	}
	i := int64(math.Abs(n))
	switch {
	case i%100 >= 11 && i%100 <= 13:
		return s + "th"
	case i%10 == 1:
		return s + "st"
	case i%10 == 2:
		return s + "nd"
	case i%10 == 3:
		return s + "rd"
	default:
		return s + "th"
	}
}

// Number renders n without a trailing fraction when it is integral.
func Number(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func boolPtr(v bool) *bool { return &v }
