package semantic

import (
	"fmt"
	"slices"

	"github.com/foundry-zero/kbdash/internal/agg"
	"github.com/foundry-zero/kbdash/internal/columns"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/formula"
	"github.com/foundry-zero/kbdash/internal/report"
)

// CheckReferences verifies that ids named inside a chart resolve within
// that chart.
//
//   - an XY series names a metric id
//   - a datatable column override or sort names a metric or dimension id
//   - a values dimension sorts by a metric label or id
func CheckReferences(d *config.Dashboard) []error {
	var errs []error
	for i, p := range d.Panels {
		if p.Charts == nil {
			continue
		}
		root := panelPath(i)
		if c := p.Charts.Chart; c != nil {
			errs = checkChartReferences(errs, root+".chart", c, false)
		}
		if c := p.Charts.ESQL; c != nil {
			errs = checkChartReferences(errs, root+".esql", c, true)
		}
		for k := range p.Charts.Layers {
			errs = checkChartReferences(errs, fmt.Sprintf("%s.layers[%d]", root, k), &p.Charts.Layers[k], false)
		}
	}
	return errs
}

// scope is the set of names a chart's columns answer to.
type scope struct {
	esql    bool
	metrics []named
	dims    []string
}

type named struct {
	id, label string
}

func (s *scope) addMetrics(ms ...config.Metric) {
	for _, m := range ms {
		s.metrics = append(s.metrics, metricName(m, s.esql))
	}
}

func (s *scope) addDimensions(ds ...config.Dimension) {
	for _, d := range ds {
		switch {
		case d.ID != "":
			s.dims = append(s.dims, d.ID)
		case s.esql && d.Field != "":
			s.dims = append(s.dims, d.Field)
		}
	}
}

func (s *scope) hasMetric(id string) bool {
	return slices.ContainsFunc(s.metrics, func(n named) bool { return n.id == id })
}

func (s *scope) hasColumn(id string) bool {
	return s.hasMetric(id) || slices.Contains(s.dims, id)
}

// sortable reports whether by names one of metrics by label or id.
func sortable(by string, metrics []named) bool {
	return slices.ContainsFunc(metrics, func(n named) bool { return n.label == by || n.id == by })
}

func checkChartReferences(errs []error, path string, c *config.Chart, esql bool) []error {
	s := &scope{esql: esql}

	switch {
	case c.Metric != nil:
		s.addMetrics(c.Metric.Primary)
		if c.Metric.Breakdown != nil {
			errs = checkSort(errs, path+".breakdown", *c.Metric.Breakdown, s.metrics)
		}
	case c.Pie != nil:
		s.addMetrics(c.Pie.Metrics...)
		errs = checkSorts(errs, path+".slice_by", c.Pie.SliceBy, s.metrics)
		errs = checkSorts(errs, path+".secondary_slice_by", c.Pie.SecondarySliceBy, s.metrics)
	case c.XY != nil:
		s.addMetrics(c.XY.Metrics...)
		if c.XY.Dimension != nil {
			errs = checkSort(errs, path+".dimension", *c.XY.Dimension, s.metrics)
		}
		if c.XY.Breakdown != nil {
			errs = checkSort(errs, path+".breakdown", *c.XY.Breakdown, s.metrics)
		}
		for i, sr := range c.XY.Appearance.Series {
			if !s.hasMetric(sr.MetricID) {
				errs = append(errs, report.Configf(fmt.Sprintf("%s.appearance.series[%d].metric_id", path, i), "no metric with id %q in this chart", sr.MetricID))
			}
		}
	case c.Datatable != nil:
		t := c.Datatable
		s.addMetrics(t.Metrics...)
		s.addDimensions(t.Rows...)
		s.addDimensions(t.SplitBy...)
		errs = checkSorts(errs, path+".rows", t.Rows, s.metrics)
		errs = checkSorts(errs, path+".split_by", t.SplitBy, s.metrics)
		for i, o := range t.Columns {
			if !s.hasColumn(o.ColumnID) {
				errs = append(errs, report.Configf(fmt.Sprintf("%s.columns[%d].column_id", path, i), "no column with id %q in this chart", o.ColumnID))
			}
		}
		if t.Sorting != nil && !s.hasColumn(t.Sorting.ColumnID) {
			errs = append(errs, report.Configf(path+".sorting.column_id", "no column with id %q in this chart", t.Sorting.ColumnID))
		}
	case c.Heatmap != nil:
		s.addMetrics(c.Heatmap.Metric)
		errs = checkSort(errs, path+".x_axis", c.Heatmap.XAxis, s.metrics)
		if c.Heatmap.YAxis != nil {
			errs = checkSort(errs, path+".y_axis", *c.Heatmap.YAxis, s.metrics)
		}
	case c.Tagcloud != nil:
		s.addMetrics(c.Tagcloud.Metric)
		errs = checkSort(errs, path+".tags", c.Tagcloud.Tags, s.metrics)
	}
	return errs
}

func checkSorts(errs []error, path string, ds []config.Dimension, metrics []named) []error {
	for i, d := range ds {
		errs = checkSort(errs, fmt.Sprintf("%s[%d]", path, i), d, metrics)
	}
	return errs
}

func checkSort(errs []error, path string, d config.Dimension, metrics []named) []error {
	if d.Kind() != config.DimensionValues || d.Sort == nil || d.Sort.By == "" {
		return errs
	}
	if !sortable(d.Sort.By, metrics) {
		errs = append(errs, report.Configf(path+".sort.by", "no metric with label or id %q in this chart", d.Sort.By))
	}
	return errs
}

// metricName returns the accessor id and label a compiled metric answers
// to. Malformed metrics yield empty names; decoding reports them.
func metricName(m config.Metric, esql bool) named {
	if esql {
		id := m.ID
		if id == "" {
			id = m.Field
		}
		label := m.Label
		if label == "" {
			label = m.Field
		}
		return named{id: id, label: label}
	}
	id, _ := columns.MetricID(m)
	n := named{id: id, label: m.Label}
	if n.label != "" {
		return n
	}
	kind, err := m.Kind()
	if err != nil {
		return n
	}
	switch kind {
	case config.MetricFormula:
		n.label, _ = formula.Render(*m.Formula)
	case config.MetricStatic:
		n.label = "Static value: " + agg.Number(*m.Value)
	case config.MetricAggregated:
		if info, ok := agg.Lookup(m.Aggregation); ok {
			n.label = agg.Label(info, agg.Params{Field: m.Field, Percentile: m.Percentile, Rank: m.Rank})
		}
	}
	return n
}
