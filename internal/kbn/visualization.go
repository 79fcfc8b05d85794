package kbn

// Lens visualization types.
const (
	VisMetric    = "lnsMetric"
	VisGauge     = "lnsGauge"
	VisPie       = "lnsPie"
	VisXY        = "lnsXY"
	VisDatatable = "lnsDatatable"
	VisHeatmap   = "lnsHeatmap"
	VisTagcloud  = "lnsTagcloud"
)

const (
	LayerTypeData          = "data"
	LayerTypeReferenceLine = "referenceLine"
)

type Palette struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type MetricVisualization struct {
	LayerID                 string   `json:"layerId"`
	LayerType               string   `json:"layerType"`
	MetricAccessor          string   `json:"metricAccessor"`
	SecondaryMetricAccessor string   `json:"secondaryMetricAccessor,omitempty"`
	MaxAccessor             string   `json:"maxAccessor,omitempty"`
	BreakdownByAccessor     string   `json:"breakdownByAccessor,omitempty"`
	Color                   string   `json:"color,omitempty"`
	Subtitle                string   `json:"subtitle,omitempty"`
	Palette                 *Palette `json:"palette,omitempty"`
}

type GaugeVisualization struct {
	LayerID        string   `json:"layerId"`
	LayerType      string   `json:"layerType"`
	Shape          string   `json:"shape"`
	TicksPosition  string   `json:"ticksPosition"`
	LabelMajorMode string   `json:"labelMajorMode"`
	LabelMajor     string   `json:"labelMajor,omitempty"`
	LabelMinor     string   `json:"labelMinor,omitempty"`
	ColorMode      string   `json:"colorMode"`
	RespectRanges  *bool    `json:"respectRanges,omitempty"`
	MetricAccessor string   `json:"metricAccessor"`
	MinAccessor    string   `json:"minAccessor,omitempty"`
	MaxAccessor    string   `json:"maxAccessor,omitempty"`
	GoalAccessor   string   `json:"goalAccessor,omitempty"`
	Palette        *Palette `json:"palette,omitempty"`
}

type PieVisualization struct {
	Shape  string     `json:"shape"`
	Layers []PieLayer `json:"layers"`
}

type PieLayer struct {
	LayerID              string            `json:"layerId"`
	LayerType            string            `json:"layerType"`
	PrimaryGroups        []string          `json:"primaryGroups"`
	SecondaryGroups      []string          `json:"secondaryGroups,omitempty"`
	Metrics              []string          `json:"metrics"`
	AllowMultipleMetrics bool              `json:"allowMultipleMetrics"`
	CollapseFns          map[string]string `json:"collapseFns,omitempty"`
	NumberDisplay        string            `json:"numberDisplay"`
	CategoryDisplay      string            `json:"categoryDisplay"`
	LegendDisplay        string            `json:"legendDisplay"`
	LegendSize           string            `json:"legendSize,omitempty"`
	LegendMaxLines       int               `json:"legendMaxLines,omitempty"`
	TruncateLegend       *bool             `json:"truncateLegend,omitempty"`
	NestedLegend         bool              `json:"nestedLegend"`
	EmptySizeRatio       *float64          `json:"emptySizeRatio,omitempty"`
	PercentDecimals      *int              `json:"percentDecimals,omitempty"`
}

type XYVisualization struct {
	Legend                       XYLegend        `json:"legend"`
	ValueLabels                  string          `json:"valueLabels"`
	FittingFunction              string          `json:"fittingFunction,omitempty"`
	PreferredSeriesType          string          `json:"preferredSeriesType"`
	Layers                       []XYLayer       `json:"layers"`
	AxisTitlesVisibilitySettings *AxisVisibility `json:"axisTitlesVisibilitySettings,omitempty"`
	XTitle                       string          `json:"xTitle,omitempty"`
	YTitle                       string          `json:"yTitle,omitempty"`
	YRightTitle                  string          `json:"yRightTitle,omitempty"`
	XExtent                      *AxisExtent     `json:"xExtent,omitempty"`
	YLeftExtent                  *AxisExtent     `json:"yLeftExtent,omitempty"`
	YRightExtent                 *AxisExtent     `json:"yRightExtent,omitempty"`
}

type XYLegend struct {
	IsVisible bool   `json:"isVisible"`
	Position  string `json:"position"`
}

// XYLayer is a data layer or a reference-line layer.
type XYLayer struct {
	LayerID       string    `json:"layerId"`
	LayerType     string    `json:"layerType"`
	SeriesType    string    `json:"seriesType,omitempty"`
	Accessors     []string  `json:"accessors"`
	XAccessor     string    `json:"xAccessor,omitempty"`
	SplitAccessor string    `json:"splitAccessor,omitempty"`
	YConfig       []YConfig `json:"yConfig,omitempty"`
	Position      string    `json:"position,omitempty"`
	ShowGridlines *bool     `json:"showGridlines,omitempty"`
}

type YConfig struct {
	ForAccessor    string  `json:"forAccessor"`
	AxisMode       string  `json:"axisMode,omitempty"`
	Color          string  `json:"color,omitempty"`
	LineWidth      float64 `json:"lineWidth,omitempty"`
	LineStyle      string  `json:"lineStyle,omitempty"`
	Fill           string  `json:"fill,omitempty"`
	Icon           string  `json:"icon,omitempty"`
	IconPosition   string  `json:"iconPosition,omitempty"`
	TextVisibility *bool   `json:"textVisibility,omitempty"`
}

type AxisVisibility struct {
	X      bool `json:"x"`
	YLeft  bool `json:"yLeft"`
	YRight bool `json:"yRight"`
}

type AxisExtent struct {
	Mode       string   `json:"mode"`
	LowerBound *float64 `json:"lowerBound,omitempty"`
	UpperBound *float64 `json:"upperBound,omitempty"`
	NiceValues *bool    `json:"niceValues,omitempty"`
}

type DatatableVisualization struct {
	LayerID              string            `json:"layerId"`
	LayerType            string            `json:"layerType"`
	Columns              []DatatableColumn `json:"columns"`
	Sorting              *Sorting          `json:"sorting,omitempty"`
	Paging               *Paging           `json:"paging,omitempty"`
	RowHeight            string            `json:"rowHeight,omitempty"`
	RowHeightLines       int               `json:"rowHeightLines,omitempty"`
	HeaderRowHeight      string            `json:"headerRowHeight,omitempty"`
	HeaderRowHeightLines int               `json:"headerRowHeightLines,omitempty"`
	Density              string            `json:"density,omitempty"`
}

type DatatableColumn struct {
	ColumnID     string   `json:"columnId"`
	IsTransposed bool     `json:"isTransposed"`
	IsMetric     bool     `json:"isMetric"`
	Width        *float64 `json:"width,omitempty"`
	Hidden       bool     `json:"hidden,omitempty"`
	Alignment    string   `json:"alignment,omitempty"`
	ColorMode    string   `json:"colorMode,omitempty"`
	SummaryRow   string   `json:"summaryRow,omitempty"`
	SummaryLabel string   `json:"summaryLabel,omitempty"`
}

type Sorting struct {
	ColumnID  string `json:"columnId"`
	Direction string `json:"direction"`
}

type Paging struct {
	Size    int  `json:"size"`
	Enabled bool `json:"enabled"`
}

type HeatmapVisualization struct {
	Shape         string        `json:"shape"`
	LayerID       string        `json:"layerId"`
	LayerType     string        `json:"layerType"`
	XAccessor     string        `json:"xAccessor"`
	YAccessor     string        `json:"yAccessor,omitempty"`
	ValueAccessor string        `json:"valueAccessor"`
	GridConfig    HeatmapGrid   `json:"gridConfig"`
	Legend        HeatmapLegend `json:"legend"`
}

type HeatmapGrid struct {
	Type                string `json:"type"`
	IsCellLabelVisible  bool   `json:"isCellLabelVisible"`
	IsXAxisLabelVisible bool   `json:"isXAxisLabelVisible"`
	IsXAxisTitleVisible bool   `json:"isXAxisTitleVisible"`
	IsYAxisLabelVisible bool   `json:"isYAxisLabelVisible"`
	IsYAxisTitleVisible bool   `json:"isYAxisTitleVisible"`
}

type HeatmapLegend struct {
	Type      string `json:"type"`
	IsVisible bool   `json:"isVisible"`
	Position  string `json:"position"`
}

type TagcloudVisualization struct {
	LayerID       string `json:"layerId"`
	LayerType     string `json:"layerType"`
	TagAccessor   string `json:"tagAccessor"`
	ValueAccessor string `json:"valueAccessor"`
	MinFontSize   int    `json:"minFontSize"`
	MaxFontSize   int    `json:"maxFontSize"`
	Orientation   string `json:"orientation"`
	ShowLabel     bool   `json:"showLabel"`
}
