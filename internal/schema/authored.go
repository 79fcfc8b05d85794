package schema

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/foundry-zero/kbdash/internal/agg"
	"github.com/foundry-zero/kbdash/internal/config"
)

// Object forms of the shaped config types. They reflect as plain structs and
// carry the field schemas the shaped definitions refer to.
type (
	metricFields    config.Metric
	dimensionFields config.Dimension
	filterFields    config.Filter
	formatFields    config.Format
	controlFields   config.Control
)

// authoring reflects the config types. Types whose YAML form is chosen by
// key or value shape get a hand-built definition; every other type is
// reflected from its struct tags.
type authoring struct {
	r       *jsonschema.Reflector
	shapes  map[reflect.Type]func() *jsonschema.Schema
	defs    jsonschema.Definitions
	pending []reflect.Type
}

// Authored returns the JSON Schema of the authored dashboard file.
func Authored() *jsonschema.Schema {
	a := &authoring{defs: jsonschema.Definitions{}}
	a.shapes = map[reflect.Type]func() *jsonschema.Schema{
		reflect.TypeFor[config.Query]():       a.query,
		reflect.TypeFor[config.Format]():      a.format,
		reflect.TypeFor[config.GaugeBound]():  a.gaugeBound,
		reflect.TypeFor[config.FormulaExpr](): a.formula,
		reflect.TypeFor[config.Metric]():      a.metric,
		reflect.TypeFor[config.Dimension]():   a.dimension,
		reflect.TypeFor[config.Filter]():      a.filter,
		reflect.TypeFor[config.Control]():     a.control,
		reflect.TypeFor[config.Panel]():       a.panel,
		reflect.TypeFor[config.Chart]():       a.chart,
	}
	a.r = &jsonschema.Reflector{
		FieldNameTag:              "yaml",
		AllowAdditionalProperties: true,
		Anonymous:                 true,
		Mapper:                    a.mapType,
	}

	s := a.r.Reflect(&config.File{})
	a.drain()
	for name, def := range a.defs {
		s.Definitions[name] = def
	}
	s.Title = "Dashboard file"
	return s
}

// GenerateJSONSchema returns Authored encoded with indentation.
func GenerateJSONSchema() ([]byte, error) {
	data, err := json.MarshalIndent(Authored(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (a *authoring) mapType(t reflect.Type) *jsonschema.Schema {
	if _, ok := a.shapes[t]; !ok {
		return nil
	}
	return a.ref(t)
}

// ref returns a reference to the definition of t. Shaped definitions are
// built at once; plain structs are queued for reflection.
func (a *authoring) ref(t reflect.Type) *jsonschema.Schema {
	name := t.Name()
	if _, ok := a.defs[name]; !ok {
		if build, ok := a.shapes[t]; ok {
			// Reserve the name so that recursive shapes refer to themselves.
			a.defs[name] = nil
			a.defs[name] = build()
		} else {
			a.pending = append(a.pending, t)
		}
	}
	return &jsonschema.Schema{Ref: "#/$defs/" + name}
}

func refFor[T any](a *authoring) *jsonschema.Schema {
	return a.ref(reflect.TypeFor[T]())
}

func (a *authoring) drain() {
	for len(a.pending) > 0 {
		t := a.pending[0]
		a.pending = a.pending[1:]
		if _, ok := a.defs[t.Name()]; ok {
			continue
		}
		for name, def := range a.r.ReflectFromType(t).Definitions {
			if _, ok := a.defs[name]; !ok {
				a.defs[name] = def
			}
		}
	}
}

func (a *authoring) query() *jsonschema.Schema {
	forms := []*jsonschema.Schema{{Type: "string", Description: "An ES|QL query."}}
	for _, lang := range []string{config.KQL, config.Lucene, config.ESQL} {
		forms = append(forms, withProperties(&jsonschema.Schema{
			Type:                 "object",
			Required:             []string{lang},
			AdditionalProperties: jsonschema.FalseSchema,
		}, lang, &jsonschema.Schema{Type: "string"}))
	}
	return &jsonschema.Schema{OneOf: forms}
}

func (a *authoring) format() *jsonschema.Schema {
	names := enum(config.FormatNumber, config.FormatBytes, config.FormatBits, config.FormatPercent, config.FormatDuration, config.FormatCustom)
	names.Type = "string"
	return &jsonschema.Schema{OneOf: []*jsonschema.Schema{names, refFor[formatFields](a)}}
}

func (a *authoring) gaugeBound() *jsonschema.Schema {
	return &jsonschema.Schema{OneOf: []*jsonschema.Schema{{Type: "number"}, refFor[config.Metric](a)}}
}

func (a *authoring) formula() *jsonschema.Schema {
	two, one := uint64(2), uint64(1)
	operand := refFor[config.FormulaExpr](a)
	call := &jsonschema.Schema{OneOf: []*jsonschema.Schema{
		{Type: "null"},
		{Type: "string"},
		withProperties(&jsonschema.Schema{Type: "object", AdditionalProperties: jsonschema.FalseSchema},
			"field", &jsonschema.Schema{Type: "string"},
			"kql", &jsonschema.Schema{Type: "string"},
			"lucene", &jsonschema.Schema{Type: "string"},
			"percentile", &jsonschema.Schema{Type: "number"},
			"rank", &jsonschema.Schema{Type: "number"},
		),
	}}

	nodes := jsonschema.NewProperties()
	for _, op := range []string{config.OpAdd, config.OpSubtract, config.OpMultiply, config.OpDivide} {
		nodes.Set(op, &jsonschema.Schema{Type: "array", MinItems: &two, Items: operand})
	}
	for _, name := range agg.Names() {
		nodes.Set(name, call)
	}
	return &jsonschema.Schema{OneOf: []*jsonschema.Schema{
		{Type: "number"},
		{
			Type:                 "object",
			Properties:           nodes,
			MinProperties:        &one,
			MaxProperties:        &one,
			AdditionalProperties: jsonschema.FalseSchema,
		},
	}}
}

func (a *authoring) metric() *jsonschema.Schema {
	aggregation := enum(agg.Names()...)
	aggregation.Type = "string"
	shapes := []struct {
		kind config.MetricKind
		key  string
		prop *jsonschema.Schema
	}{
		{config.MetricAggregated, "aggregation", aggregation},
		{config.MetricFormula, "formula", nil},
		{config.MetricStatic, "value", nil},
		{config.MetricColumn, "field", nil},
	}
	forms := make([]*jsonschema.Schema, 0, len(shapes))
	for _, s := range shapes {
		form := &jsonschema.Schema{
			Title:         string(s.kind),
			Required:      []string{s.key},
			PropertyNames: enum(config.MetricKeys(s.kind)...),
		}
		if s.prop != nil {
			withProperties(form, s.key, s.prop)
		}
		forms = append(forms, form)
	}
	return &jsonschema.Schema{
		Type:  "object",
		AllOf: []*jsonschema.Schema{refFor[metricFields](a)},
		OneOf: forms,
	}
}

func (a *authoring) dimension() *jsonschema.Schema {
	var forms []*jsonschema.Schema
	for _, k := range []config.DimensionKind{config.DimensionValues, config.DimensionDateHistogram, config.DimensionIntervals, config.DimensionFilters} {
		form := typed(string(k))
		form.Title = string(k)
		form.PropertyNames = enum(config.DimensionKeys(k)...)
		forms = append(forms, form)
	}
	forms = append(forms, &jsonschema.Schema{
		Title:         string(config.DimensionColumn),
		Required:      []string{"field"},
		Not:           &jsonschema.Schema{Required: []string{"type"}},
		PropertyNames: enum(config.DimensionKeys(config.DimensionColumn)...),
	})
	return &jsonschema.Schema{
		Type:  "object",
		AllOf: []*jsonschema.Schema{refFor[dimensionFields](a)},
		OneOf: forms,
	}
}

func (a *authoring) filter() *jsonschema.Schema {
	shapes := []struct {
		kind     config.FilterKind
		required []string
	}{
		{config.FilterExists, []string{"exists"}},
		{config.FilterPhrase, []string{"field", "equals"}},
		{config.FilterPhrases, []string{"field", "in"}},
		{config.FilterRange, []string{"field"}},
		{config.FilterCustom, []string{"dsl"}},
		{config.FilterAnd, []string{"and"}},
		{config.FilterOr, []string{"or"}},
		{config.FilterNot, []string{"not"}},
	}
	forms := make([]*jsonschema.Schema, 0, len(shapes))
	for _, s := range shapes {
		form := &jsonschema.Schema{
			Title:         string(s.kind),
			Required:      s.required,
			PropertyNames: enum(config.FilterKeys(s.kind)...),
		}
		if s.kind == config.FilterRange {
			for _, bound := range []string{"gte", "gt", "lte", "lt"} {
				form.AnyOf = append(form.AnyOf, &jsonschema.Schema{Required: []string{bound}})
			}
		}
		forms = append(forms, form)
	}
	return &jsonschema.Schema{
		Type:  "object",
		AllOf: []*jsonschema.Schema{refFor[filterFields](a)},
		OneOf: forms,
	}
}

func (a *authoring) control() *jsonschema.Schema {
	var forms []*jsonschema.Schema
	for _, k := range []config.ControlKind{config.ControlOptions, config.ControlRange, config.ControlTime, config.ControlESQLStatic, config.ControlESQLQuery} {
		form := typed(string(k))
		form.Title = string(k)
		form.PropertyNames = enum(config.ControlKeys(k)...)
		forms = append(forms, form)
	}
	return &jsonschema.Schema{
		Type:  "object",
		AllOf: []*jsonschema.Schema{refFor[controlFields](a)},
		OneOf: forms,
	}
}

func (a *authoring) panel() *jsonschema.Schema {
	fields := refFor[config.PanelFields](a)
	bodies := []struct {
		kind config.PanelKind
		body *jsonschema.Schema
	}{
		{config.PanelMarkdown, refFor[config.MarkdownPanel](a)},
		{config.PanelSearch, refFor[config.SearchPanel](a)},
		{config.PanelLinks, refFor[config.LinksPanel](a)},
		{config.PanelImage, refFor[config.ImagePanel](a)},
		{config.PanelMap, &jsonschema.Schema{Type: "object"}},
	}
	forms := make([]*jsonschema.Schema, 0, len(bodies)+1)
	for _, b := range bodies {
		forms = append(forms, &jsonschema.Schema{
			Title: string(b.kind),
			AllOf: []*jsonschema.Schema{fields, b.body, typed(string(b.kind))},
		})
	}

	var shapes []*jsonschema.Schema
	for _, key := range []string{"chart", "layers", "esql"} {
		shapes = append(shapes, &jsonschema.Schema{Required: []string{key}})
	}
	forms = append(forms, &jsonschema.Schema{
		Title: "charts",
		AllOf: []*jsonschema.Schema{fields, refFor[config.ChartsPanel](a), typed("charts"), {OneOf: shapes}},
	})
	return &jsonschema.Schema{Type: "object", OneOf: forms}
}

func (a *authoring) chart() *jsonschema.Schema {
	fields := refFor[config.ChartFields](a)
	bodies := []struct {
		kinds []config.ChartKind
		body  *jsonschema.Schema
	}{
		{[]config.ChartKind{config.ChartMetric}, refFor[config.MetricChart](a)},
		{[]config.ChartKind{config.ChartGauge}, refFor[config.GaugeChart](a)},
		{[]config.ChartKind{config.ChartPie, config.ChartDonut}, refFor[config.PieChart](a)},
		{[]config.ChartKind{config.ChartBar, config.ChartLine, config.ChartArea}, refFor[config.XYChart](a)},
		{[]config.ChartKind{config.ChartDatatable}, refFor[config.DatatableChart](a)},
		{[]config.ChartKind{config.ChartHeatmap}, refFor[config.HeatmapChart](a)},
		{[]config.ChartKind{config.ChartTagcloud}, refFor[config.TagcloudChart](a)},
	}
	forms := make([]*jsonschema.Schema, 0, len(bodies)+1)
	for _, b := range bodies {
		kinds := make([]string, len(b.kinds))
		for i, k := range b.kinds {
			kinds[i] = string(k)
		}
		forms = append(forms, &jsonschema.Schema{
			Title: kinds[0],
			AllOf: []*jsonschema.Schema{fields, b.body, typed(kinds...)},
		})
	}
	forms = append(forms, &jsonschema.Schema{
		Title: string(config.ChartReferenceLine),
		AllOf: []*jsonschema.Schema{refFor[config.ReferenceLine](a), typed(string(config.ChartReferenceLine))},
	})
	return &jsonschema.Schema{Type: "object", OneOf: forms}
}

// typed requires a type key set to one of kinds.
func typed(kinds ...string) *jsonschema.Schema {
	tag := enum(kinds...)
	if len(kinds) == 1 {
		tag = &jsonschema.Schema{Const: kinds[0]}
	}
	return withProperties(&jsonschema.Schema{Required: []string{"type"}}, "type", tag)
}

func enum(values ...string) *jsonschema.Schema {
	s := &jsonschema.Schema{Enum: make([]any, len(values))}
	for i, v := range values {
		s.Enum[i] = v
	}
	return s
}

// withProperties sets the properties of s from name, schema pairs.
func withProperties(s *jsonschema.Schema, pairs ...any) *jsonschema.Schema {
	p := jsonschema.NewProperties()
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Set(pairs[i].(string), pairs[i+1].(*jsonschema.Schema))
	}
	s.Properties = p
	return s
}
