package config

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/report"
)

// ChartKind is the type tag of a Chart.
type ChartKind string

const (
	ChartMetric        ChartKind = "metric"
	ChartGauge         ChartKind = "gauge"
	ChartPie           ChartKind = "pie"
	ChartDonut         ChartKind = "donut"
	ChartBar           ChartKind = "bar"
	ChartLine          ChartKind = "line"
	ChartArea          ChartKind = "area"
	ChartDatatable     ChartKind = "datatable"
	ChartHeatmap       ChartKind = "heatmap"
	ChartTagcloud      ChartKind = "tagcloud"
	ChartReferenceLine ChartKind = "reference_line"
)

// IsXY reports whether k belongs to the bar/line/area family.
func (k ChartKind) IsXY() bool {
	return k == ChartBar || k == ChartLine || k == ChartArea
}

// ChartFields are carried by every chart. Lens charts set DataView; ES|QL
// charts set Query to an ES|QL query.
type ChartFields struct {
	Type     ChartKind `yaml:"type"`
	DataView string    `yaml:"data_view,omitempty"`
	Query    *Query    `yaml:"query,omitempty"`
	Filters  []Filter  `yaml:"filters,omitempty"`
}

// Chart is a visualization. Exactly one variant pointer matching Type is
// set.
type Chart struct {
	ChartFields `yaml:",inline"`

	Metric        *MetricChart    `yaml:"-"`
	Gauge         *GaugeChart     `yaml:"-"`
	Pie           *PieChart       `yaml:"-"`
	XY            *XYChart        `yaml:"-"`
	Datatable     *DatatableChart `yaml:"-"`
	Heatmap       *HeatmapChart   `yaml:"-"`
	Tagcloud      *TagcloudChart  `yaml:"-"`
	ReferenceLine *ReferenceLine  `yaml:"-"`
}

// variant returns a pointer to the variant struct selected by Type,
// allocating it when alloc is set.
func (c *Chart) variant(alloc bool) (any, error) {
	switch c.Type {
	case ChartMetric:
		if alloc {
			c.Metric = &MetricChart{}
		}
		return c.Metric, nil
	case ChartGauge:
		if alloc {
			c.Gauge = &GaugeChart{}
		}
		return c.Gauge, nil
	case ChartPie, ChartDonut:
		if alloc {
			c.Pie = &PieChart{}
		}
		return c.Pie, nil
	case ChartBar, ChartLine, ChartArea:
		if alloc {
			c.XY = &XYChart{}
		}
		return c.XY, nil
	case ChartDatatable:
		if alloc {
			c.Datatable = &DatatableChart{}
		}
		return c.Datatable, nil
	case ChartHeatmap:
		if alloc {
			c.Heatmap = &HeatmapChart{}
		}
		return c.Heatmap, nil
	case ChartTagcloud:
		if alloc {
			c.Tagcloud = &TagcloudChart{}
		}
		return c.Tagcloud, nil
	case ChartReferenceLine:
		if alloc {
			c.ReferenceLine = &ReferenceLine{}
		}
		return c.ReferenceLine, nil
	case "":
		return nil, report.Configf("type", "required")
	}
	return nil, report.Configf("type", "unknown chart type %q", c.Type)
}

func (c *Chart) UnmarshalYAML(node *yaml.Node) error {
	kind, err := scalarAt(node, "type")
	if err != nil {
		return err
	}
	*c = Chart{ChartFields: ChartFields{Type: ChartKind(kind)}}
	v, err := c.variant(true)
	if err != nil {
		return err
	}
	if c.Type == ChartReferenceLine {
		err = decodeMapping(node, &struct {
			Type ChartKind `yaml:"type"`
		}{}, v)
	} else {
		err = decodeMapping(node, &c.ChartFields, v)
	}
	if err != nil {
		return err
	}
	if c.Query != nil && c.DataView != "" && c.Query.Language == ESQL {
		return report.Configf("query", "an ES|QL chart reads from its query and cannot set data_view")
	}
	if vv, ok := v.(interface{ validate() error }); ok {
		return vv.validate()
	}
	return nil
}

// Validate checks that the body selected by Type is set and satisfies the
// same rules decoding enforces. Charts built in code skip decoding.
func (c *Chart) Validate() error {
	v, err := c.variant(false)
	if err != nil {
		return err
	}
	if reflect.ValueOf(v).IsNil() {
		return report.Configf("type", "%s chart has no %s body", c.Type, c.Type)
	}
	if vv, ok := v.(interface{ validate() error }); ok {
		return vv.validate()
	}
	return nil
}

func (c Chart) MarshalYAML() (any, error) {
	v, err := c.variant(false)
	if err != nil {
		return nil, err
	}
	return mergeNodes(c.ChartFields, v)
}

// MetricChart shows one headline value.
type MetricChart struct {
	Primary    Metric           `yaml:"primary"`
	Secondary  *Metric          `yaml:"secondary,omitempty"`
	Maximum    *Metric          `yaml:"maximum,omitempty"`
	Breakdown  *Dimension       `yaml:"breakdown,omitempty"`
	Appearance MetricAppearance `yaml:"appearance,omitempty"`
}

type MetricAppearance struct {
	Color    string `yaml:"color,omitempty"`
	Subtitle string `yaml:"subtitle,omitempty"`
	Palette  string `yaml:"palette,omitempty"`
}

// GaugeChart shows a value against optional bounds.
type GaugeChart struct {
	Metric     Metric          `yaml:"metric"`
	Minimum    *GaugeBound     `yaml:"minimum,omitempty"`
	Maximum    *GaugeBound     `yaml:"maximum,omitempty"`
	Goal       *GaugeBound     `yaml:"goal,omitempty"`
	Appearance GaugeAppearance `yaml:"appearance,omitempty"`
}

type GaugeAppearance struct {
	Shape         string `yaml:"shape,omitempty"`
	TicksPosition string `yaml:"ticks_position,omitempty"`
	Label         string `yaml:"label,omitempty"`
	HideLabel     *bool  `yaml:"hide_label,omitempty"`
	Sublabel      string `yaml:"sublabel,omitempty"`
	ColorMode     string `yaml:"color_mode,omitempty"`
	Palette       string `yaml:"palette,omitempty"`
	RespectRanges *bool  `yaml:"respect_ranges,omitempty"`
}

func (a *GaugeAppearance) UnmarshalYAML(node *yaml.Node) error {
	type plain GaugeAppearance
	if err := decodeMapping(node, (*plain)(a)); err != nil {
		return err
	}
	if err := oneOf("shape", a.Shape, "arc", "circle", "horizontal_bullet", "vertical_bullet"); err != nil {
		return err
	}
	if err := oneOf("ticks_position", a.TicksPosition, "auto", "bands", "hidden"); err != nil {
		return err
	}
	return oneOf("color_mode", a.ColorMode, "none", "palette")
}

// GaugeBound is a fixed number or a metric.
type GaugeBound struct {
	Value  *float64
	Metric *Metric
}

func (b *GaugeBound) UnmarshalYAML(node *yaml.Node) error {
	node = resolve(node)
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := decodeScalar(node, &v); err != nil {
			return err
		}
		*b = GaugeBound{Value: &v}
		return nil
	}
	var m Metric
	if err := m.UnmarshalYAML(node); err != nil {
		return err
	}
	*b = GaugeBound{Metric: &m}
	return nil
}

func (b GaugeBound) MarshalYAML() (any, error) {
	if b.Value != nil {
		return *b.Value, nil
	}
	return b.Metric, nil
}

// PieChart covers pie and donut charts.
type PieChart struct {
	Metrics          []Metric      `yaml:"metrics"`
	SliceBy          []Dimension   `yaml:"slice_by"`
	SecondarySliceBy []Dimension   `yaml:"secondary_slice_by,omitempty"`
	Appearance       PieAppearance `yaml:"appearance,omitempty"`
}

type PieAppearance struct {
	Values    string    `yaml:"values,omitempty"`
	Labels    string    `yaml:"labels,omitempty"`
	Decimals  *int      `yaml:"decimals,omitempty"`
	DonutHole string    `yaml:"donut_hole,omitempty"`
	Legend    PieLegend `yaml:"legend,omitempty"`
}

type PieLegend struct {
	Visible  string `yaml:"visible,omitempty"`
	Size     string `yaml:"size,omitempty"`
	Truncate *bool  `yaml:"truncate,omitempty"`
	MaxLines int    `yaml:"max_lines,omitempty"`
	Nested   *bool  `yaml:"nested,omitempty"`
}

func (p *PieChart) validate() error {
	switch {
	case len(p.Metrics) == 0:
		return report.Configf("metrics", "at least one metric is required")
	case len(p.SliceBy) == 0:
		return report.Configf("slice_by", "at least one dimension is required")
	}
	a := p.Appearance
	return checkEnums(
		enum{"appearance.values", a.Values, []string{"percent", "value", "integer", "hidden"}},
		enum{"appearance.labels", a.Labels, []string{"default", "inside", "hide"}},
		enum{"appearance.donut_hole", a.DonutHole, []string{"none", "small", "medium", "large"}},
		enum{"appearance.legend.visible", a.Legend.Visible, []string{"show", "hide", "default"}},
		enum{"appearance.legend.size", a.Legend.Size, []string{"auto", "small", "medium", "large", "xlarge"}},
	)
}

// XYChart covers bar, line and area charts.
type XYChart struct {
	Mode       string       `yaml:"mode,omitempty"`
	Dimension  *Dimension   `yaml:"dimension,omitempty"`
	Breakdown  *Dimension   `yaml:"breakdown,omitempty"`
	Metrics    []Metric     `yaml:"metrics"`
	Appearance XYAppearance `yaml:"appearance,omitempty"`
}

type XYAppearance struct {
	Legend      XYLegend     `yaml:"legend,omitempty"`
	ValueLabels *bool        `yaml:"value_labels,omitempty"`
	XAxis       AxisConfig   `yaml:"x_axis,omitempty"`
	LeftAxis    AxisConfig   `yaml:"left_axis,omitempty"`
	RightAxis   AxisConfig   `yaml:"right_axis,omitempty"`
	Series      []SeriesSpec `yaml:"series,omitempty"`
}

type XYLegend struct {
	Visible  *bool  `yaml:"visible,omitempty"`
	Position string `yaml:"position,omitempty"`
}

type AxisConfig struct {
	Title     string      `yaml:"title,omitempty"`
	ShowTitle *bool       `yaml:"show_title,omitempty"`
	Extent    *AxisExtent `yaml:"extent,omitempty"`
}

// AxisExtent bounds an axis. Custom extents require both bounds.
type AxisExtent struct {
	Mode string   `yaml:"mode"`
	Min  *float64 `yaml:"min,omitempty"`
	Max  *float64 `yaml:"max,omitempty"`
}

func (e *AxisExtent) UnmarshalYAML(node *yaml.Node) error {
	type plain AxisExtent
	if err := decodeMapping(node, (*plain)(e)); err != nil {
		return err
	}
	if e.Mode == "" {
		return report.Configf("mode", "required")
	}
	if err := oneOf("mode", e.Mode, "full", "data_bounds", "custom"); err != nil {
		return err
	}
	if e.Mode == "custom" && (e.Min == nil || e.Max == nil) {
		return report.Configf("mode", "custom extent requires both min and max")
	}
	if e.Mode != "custom" && (e.Min != nil || e.Max != nil) {
		return report.Configf("mode", "min and max are only valid for a custom extent")
	}
	return nil
}

// SeriesSpec styles the series of one metric, referenced by id.
type SeriesSpec struct {
	MetricID string `yaml:"metric_id"`
	Axis     string `yaml:"axis,omitempty"`
	Color    string `yaml:"color,omitempty"`
}

func (c *XYChart) validate() error {
	if len(c.Metrics) == 0 {
		return report.Configf("metrics", "at least one metric is required")
	}
	if err := oneOf("mode", c.Mode, "stacked", "unstacked", "percentage"); err != nil {
		return err
	}
	if err := oneOf("appearance.legend.position", c.Appearance.Legend.Position, "top", "bottom", "left", "right"); err != nil {
		return err
	}
	for i, s := range c.Appearance.Series {
		if s.MetricID == "" {
			return report.Configf(fmt.Sprintf("appearance.series[%d].metric_id", i), "required")
		}
		if err := oneOf(fmt.Sprintf("appearance.series[%d].axis", i), s.Axis, "left", "right"); err != nil {
			return err
		}
	}
	return nil
}

// DatatableChart is a tabular chart.
type DatatableChart struct {
	Metrics    []Metric            `yaml:"metrics"`
	Rows       []Dimension         `yaml:"rows,omitempty"`
	SplitBy    []Dimension         `yaml:"split_by,omitempty"`
	Columns    []ColumnOverride    `yaml:"columns,omitempty"`
	Sorting    *TableSort          `yaml:"sorting,omitempty"`
	Paging     *TablePaging        `yaml:"paging,omitempty"`
	Appearance DatatableAppearance `yaml:"appearance,omitempty"`
}

// ColumnOverride styles one metric or dimension column, referenced by id.
type ColumnOverride struct {
	ColumnID     string   `yaml:"column_id"`
	Width        *float64 `yaml:"width,omitempty"`
	Hidden       *bool    `yaml:"hidden,omitempty"`
	Alignment    string   `yaml:"alignment,omitempty"`
	ColorMode    string   `yaml:"color_mode,omitempty"`
	SummaryRow   string   `yaml:"summary_row,omitempty"`
	SummaryLabel string   `yaml:"summary_label,omitempty"`
}

func (o *ColumnOverride) UnmarshalYAML(node *yaml.Node) error {
	type plain ColumnOverride
	if err := decodeMapping(node, (*plain)(o)); err != nil {
		return err
	}
	if o.ColumnID == "" {
		return report.Configf("column_id", "required")
	}
	if err := oneOf("alignment", o.Alignment, "left", "center", "right"); err != nil {
		return err
	}
	if err := oneOf("color_mode", o.ColorMode, "none", "cell", "text"); err != nil {
		return err
	}
	return oneOf("summary_row", o.SummaryRow, "none", "sum", "avg", "count", "min", "max")
}

type TableSort struct {
	ColumnID  string `yaml:"column_id"`
	Direction string `yaml:"direction,omitempty"`
}

type TablePaging struct {
	Size    int   `yaml:"size"`
	Enabled *bool `yaml:"enabled,omitempty"`
}

type DatatableAppearance struct {
	RowHeight            string `yaml:"row_height,omitempty"`
	RowHeightLines       int    `yaml:"row_height_lines,omitempty"`
	HeaderRowHeight      string `yaml:"header_row_height,omitempty"`
	HeaderRowHeightLines int    `yaml:"header_row_height_lines,omitempty"`
	Density              string `yaml:"density,omitempty"`
}

func (a *DatatableAppearance) UnmarshalYAML(node *yaml.Node) error {
	type plain DatatableAppearance
	if err := decodeMapping(node, (*plain)(a)); err != nil {
		return err
	}
	if err := oneOf("row_height", a.RowHeight, "auto", "single", "custom"); err != nil {
		return err
	}
	if err := oneOf("header_row_height", a.HeaderRowHeight, "auto", "single", "custom"); err != nil {
		return err
	}
	return oneOf("density", a.Density, "compact", "normal", "expanded")
}

// HeatmapChart is a two-dimensional bucket chart.
type HeatmapChart struct {
	XAxis      Dimension         `yaml:"x_axis"`
	YAxis      *Dimension        `yaml:"y_axis,omitempty"`
	Metric     Metric            `yaml:"metric"`
	Appearance HeatmapAppearance `yaml:"appearance,omitempty"`
}

type HeatmapAppearance struct {
	CellLabels *bool          `yaml:"cell_labels,omitempty"`
	XAxis      AxisVisibility `yaml:"x_axis,omitempty"`
	YAxis      AxisVisibility `yaml:"y_axis,omitempty"`
	Legend     XYLegend       `yaml:"legend,omitempty"`
}

type AxisVisibility struct {
	Labels *bool `yaml:"labels,omitempty"`
	Title  *bool `yaml:"title,omitempty"`
}

// TagcloudChart is a word cloud.
type TagcloudChart struct {
	Tags       Dimension          `yaml:"tags"`
	Metric     Metric             `yaml:"metric"`
	Appearance TagcloudAppearance `yaml:"appearance,omitempty"`
}

type TagcloudAppearance struct {
	MinFontSize *int   `yaml:"min_font_size,omitempty"`
	MaxFontSize *int   `yaml:"max_font_size,omitempty"`
	Orientation string `yaml:"orientation,omitempty"`
	ShowLabel   *bool  `yaml:"show_label,omitempty"`
}

func (a *TagcloudAppearance) UnmarshalYAML(node *yaml.Node) error {
	type plain TagcloudAppearance
	if err := decodeMapping(node, (*plain)(a)); err != nil {
		return err
	}
	return oneOf("orientation", a.Orientation, "single", "right_angled", "multiple")
}

// ReferenceLine is a horizontal line layer of a multi-layer chart.
type ReferenceLine struct {
	ID             string   `yaml:"id,omitempty"`
	Label          string   `yaml:"label,omitempty"`
	Value          *float64 `yaml:"value"`
	Color          string   `yaml:"color,omitempty"`
	LineWidth      *float64 `yaml:"line_width,omitempty"`
	LineStyle      string   `yaml:"line_style,omitempty"`
	Fill           string   `yaml:"fill,omitempty"`
	Icon           string   `yaml:"icon,omitempty"`
	IconPosition   string   `yaml:"icon_position,omitempty"`
	Axis           string   `yaml:"axis,omitempty"`
	TextVisibility *bool    `yaml:"show_label,omitempty"`
}

func (r *ReferenceLine) validate() error {
	if r.Value == nil {
		return report.Configf("value", "required")
	}
	return checkEnums(
		enum{"line_style", r.LineStyle, []string{"solid", "dashed", "dotted"}},
		enum{"fill", r.Fill, []string{"none", "above", "below"}},
		enum{"icon_position", r.IconPosition, []string{"auto", "left", "right", "above", "below"}},
		enum{"axis", r.Axis, []string{"left", "right", "bottom"}},
	)
}
