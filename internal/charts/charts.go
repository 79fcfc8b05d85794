// Package charts assembles Lens visualization states from compiled columns.
//
// Every chart kind is compiled once against a source. A Lens source adds
// form-based columns read from a data view; an ES|QL source references the
// result columns of a query. The same kind compiler serves both.
package charts

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/foundry-zero/kbdash/internal/columns"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/query"
	"github.com/foundry-zero/kbdash/internal/report"
)

const timeField = "@timestamp"

// Result is one compiled chart.
type Result struct {
	VisualizationType string
	Visualization     any
	Layers            []Layer
	// Query is a kbn.Query for Lens charts and a kbn.ESQLQuery for ES|QL
	// charts.
	Query   any
	Filters []kbn.Filter
}

// Layer is one datasource layer. Exactly one of FormBased and TextBased is
// set.
type Layer struct {
	ID        string
	DataView  string
	FormBased *kbn.FormBasedLayer
	TextBased *kbn.TextBasedLayer
	AdHoc     *kbn.AdHocDataView
}

// ESQL reports whether any layer reads from an ES|QL query.
func (r *Result) ESQL() bool {
	return lo.SomeBy(r.Layers, func(l Layer) bool { return l.TextBased != nil })
}

// References returns one data view reference per form-based layer, named
// the way the Lens datasource looks them up.
func (r *Result) References() []kbn.Reference {
	refs := []kbn.Reference{}
	for _, l := range r.Layers {
		if l.FormBased == nil {
			continue
		}
		refs = append(refs, kbn.Reference{
			Type: "index-pattern",
			ID:   l.DataView,
			Name: "indexpattern-datasource-layer-" + l.ID,
		})
	}
	return refs
}

// State returns the Lens state block of the chart.
func (r *Result) State() kbn.LensState {
	st := kbn.LensState{
		AdHocDataViews:     map[string]kbn.AdHocDataView{},
		Filters:            r.Filters,
		InternalReferences: []kbn.Reference{},
		Query:              r.Query,
		Visualization:      r.Visualization,
	}
	if st.Filters == nil {
		st.Filters = []kbn.Filter{}
	}
	for _, l := range r.Layers {
		switch {
		case l.FormBased != nil:
			if st.DatasourceStates.FormBased == nil {
				st.DatasourceStates.FormBased = &kbn.FormBasedState{Layers: map[string]kbn.FormBasedLayer{}}
			}
			st.DatasourceStates.FormBased.Layers[l.ID] = *l.FormBased
		case l.TextBased != nil:
			if st.DatasourceStates.TextBased == nil {
				st.DatasourceStates.TextBased = &kbn.TextBasedState{Layers: map[string]kbn.TextBasedLayer{}}
			}
			st.DatasourceStates.TextBased.Layers[l.ID] = *l.TextBased
			if l.AdHoc != nil {
				st.AdHocDataViews[l.AdHoc.ID] = *l.AdHoc
			}
		}
	}
	return st
}

// Lens compiles a chart that reads fields of a data view.
func Lens(c *config.Chart) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.DataView == "" {
		return nil, report.Configf("data_view", "required")
	}
	q, err := query.Compile(c.Query)
	if err != nil {
		return nil, report.AtPath("query", err)
	}
	return compileSingle(c, newLensSource(c.DataView), q)
}

// ESQL compiles a chart that reads the result columns of an ES|QL query.
func ESQL(c *config.Chart) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	src, err := newESQLSource(c.Query)
	if err != nil {
		return nil, report.AtPath("query", err)
	}
	return compileSingle(c, src, src.query)
}

func compileSingle(c *config.Chart, src source, q any) (*Result, error) {
	filters, err := query.Filters(c.Filters)
	if err != nil {
		return nil, report.AtPath("filters", err)
	}
	layerID := ids.Random()
	visType, vis, err := build(src, layerID, c)
	if err != nil {
		return nil, err
	}
	return &Result{
		VisualizationType: visType,
		Visualization:     vis,
		Layers:            []Layer{src.layer(layerID)},
		Query:             q,
		Filters:           filters,
	}, nil
}

// build dispatches on the chart kind.
func build(src source, layerID string, c *config.Chart) (string, any, error) {
	switch {
	case c.Metric != nil:
		vis, err := Metric(src, layerID, c.Metric)
		return kbn.VisMetric, vis, err
	case c.Gauge != nil:
		vis, err := Gauge(src, layerID, c.Gauge)
		return kbn.VisGauge, vis, err
	case c.Pie != nil:
		vis, err := Pie(src, layerID, c.Type, c.Pie)
		return kbn.VisPie, vis, err
	case c.XY != nil:
		vis, err := XY(src, layerID, c.Type, c.XY)
		return kbn.VisXY, vis, err
	case c.Datatable != nil:
		vis, err := Datatable(src, layerID, c.Datatable)
		return kbn.VisDatatable, vis, err
	case c.Heatmap != nil:
		vis, err := Heatmap(src, layerID, c.Heatmap)
		return kbn.VisHeatmap, vis, err
	case c.Tagcloud != nil:
		vis, err := Tagcloud(src, layerID, c.Tagcloud)
		return kbn.VisTagcloud, vis, err
	case c.ReferenceLine != nil:
		return "", nil, report.Configf("type", "a reference line is a layer of a multi-layer chart")
	}
	return "", nil, report.Unsupportedf("type", "chart type %q", c.Type)
}

// source adds the columns of one layer.
type source interface {
	metric(m config.Metric) (columns.MetricRef, error)
	dimension(d config.Dimension, metrics []columns.MetricRef) (string, error)
	static(id, label string, v float64) (columns.MetricRef, error)
	// has reports whether id is an accessor of the layer.
	has(id string) bool
	layer(id string) Layer
}

type lensSource struct {
	dataView string
	set      *columns.Set
}

func newLensSource(dataView string) *lensSource {
	return &lensSource{dataView: dataView, set: columns.NewSet()}
}

func (s *lensSource) metric(m config.Metric) (columns.MetricRef, error) {
	return columns.Metric(s.set, m)
}

func (s *lensSource) dimension(d config.Dimension, metrics []columns.MetricRef) (string, error) {
	return columns.Dimension(s.set, d, metrics)
}

func (s *lensSource) static(id, label string, v float64) (columns.MetricRef, error) {
	return columns.Static(s.set, id, label, v)
}

func (s *lensSource) has(id string) bool { return s.set.Has(id) }

// layer orders bucketed columns before metric columns.
func (s *lensSource) layer(id string) Layer {
	cols := s.set.Map()
	all := s.set.IDs()
	bucketed := lo.Filter(all, func(c string, _ int) bool { return cols[c].IsBucketed })
	rest := lo.Filter(all, func(c string, _ int) bool { return !cols[c].IsBucketed })
	return Layer{
		ID:       id,
		DataView: s.dataView,
		FormBased: &kbn.FormBasedLayer{
			ColumnOrder:       append(bucketed, rest...),
			Columns:           cols,
			IncompleteColumns: map[string]any{},
			Sampling:          1,
		},
	}
}

// fromIndex captures the source list of an ES|QL FROM command.
var fromIndex = regexp.MustCompile(`(?i)^\s*from\s+([^\s|,]+(?:\s*,\s*[^\s|,]+)*)`)

type esqlSource struct {
	query   kbn.ESQLQuery
	index   string
	columns []kbn.TextBasedColumn
	seen    map[string]bool
}

func newESQLSource(q *config.Query) (*esqlSource, error) {
	if q == nil {
		return nil, report.Configf("", "required")
	}
	kq, err := query.CompileESQL(q)
	if err != nil {
		return nil, err
	}
	m := fromIndex.FindStringSubmatch(kq.ESQL)
	if m == nil {
		return nil, report.Configf("", "ES|QL query must start with a FROM command")
	}
	index := strings.Join(lo.Map(strings.Split(m[1], ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}), ",")
	return &esqlSource{query: kq, index: index, seen: map[string]bool{}}, nil
}

func (s *esqlSource) add(id, field, label, typ string) (string, error) {
	if field == "" {
		return "", report.Configf("field", "required")
	}
	if id == "" {
		id = field
	}
	if s.seen[id] {
		return "", report.Configf("", "column id %q is used twice in one chart; set an explicit id", id)
	}
	s.seen[id] = true
	s.columns = append(s.columns, kbn.TextBasedColumn{
		ColumnID:    id,
		FieldName:   field,
		Label:       label,
		CustomLabel: label != "",
		Meta:        kbn.ColumnMeta{Type: typ},
	})
	return id, nil
}

func (s *esqlSource) metric(m config.Metric) (columns.MetricRef, error) {
	kind, err := m.Kind()
	if err != nil {
		return columns.MetricRef{}, err
	}
	if kind != config.MetricColumn {
		return columns.MetricRef{}, report.Configf("", "ES|QL charts reference result columns by field; %s metrics need a data view", kind)
	}
	id, err := s.add(m.ID, m.Field, m.Label, "number")
	if err != nil {
		return columns.MetricRef{}, err
	}
	return columns.MetricRef{ID: id, Label: defaultLabel(m.Label, m.Field)}, nil
}

func (s *esqlSource) dimension(d config.Dimension, _ []columns.MetricRef) (string, error) {
	typ := "string"
	if d.Type == config.DimensionDateHistogram {
		typ = "date"
	}
	return s.add(d.ID, d.Field, d.Label, typ)
}

func (s *esqlSource) static(string, string, float64) (columns.MetricRef, error) {
	return columns.MetricRef{}, report.Configf("", "fixed values need a data view; compute the bound in the ES|QL query")
}

func (s *esqlSource) has(id string) bool { return s.seen[id] }

func (s *esqlSource) layer(id string) Layer {
	dv := &kbn.AdHocDataView{
		ID:            ids.Stable("esql", s.index),
		Title:         s.index,
		TimeFieldName: timeField,
		Type:          "esql",
	}
	cols := s.columns
	if cols == nil {
		cols = []kbn.TextBasedColumn{}
	}
	return Layer{
		ID: id,
		TextBased: &kbn.TextBasedLayer{
			Index:     dv.ID,
			Query:     s.query,
			Columns:   cols,
			TimeField: timeField,
		},
		AdHoc: dv,
	}
}

func defaultLabel(label, field string) string {
	if label != "" {
		return label
	}
	return field
}

// accessors returns the ids of refs.
func accessors(refs []columns.MetricRef) []string {
	return lo.Map(refs, func(r columns.MetricRef, _ int) string { return r.ID })
}

// metrics compiles ms in order, rooting errors at path[i].
func metrics(src source, path string, ms []config.Metric) ([]columns.MetricRef, error) {
	refs := make([]columns.MetricRef, 0, len(ms))
	for i, m := range ms {
		ref, err := src.metric(m)
		if err != nil {
			return nil, report.AtPath(indexed(path, i), err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// dimensions compiles ds in order, rooting errors at path[i].
func dimensions(src source, path string, ds []config.Dimension, refs []columns.MetricRef) ([]string, error) {
	out := make([]string, 0, len(ds))
	for i, d := range ds {
		id, err := dimension(src, indexed(path, i), d, refs)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func metric(src source, path string, m config.Metric) (columns.MetricRef, error) {
	ref, err := src.metric(m)
	if err != nil {
		return columns.MetricRef{}, report.AtPath(path, err)
	}
	return ref, nil
}

// dimension compiles a dimension of a chart kind that has no collapse
// functions.
func dimension(src source, path string, d config.Dimension, refs []columns.MetricRef) (string, error) {
	if d.Collapse != "" {
		return "", report.Configf(path+".collapse", "collapse is only valid on pie and donut slice groups")
	}
	id, err := src.dimension(d, refs)
	if err != nil {
		return "", report.AtPath(path, err)
	}
	return id, nil
}
