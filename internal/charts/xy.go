package charts

import (
	"github.com/samber/lo"

	"github.com/foundry-zero/kbdash/internal/columns"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/query"
	"github.com/foundry-zero/kbdash/internal/report"
)

var seriesTypes = map[config.ChartKind]map[string]string{
	config.ChartBar:  {"stacked": "bar_stacked", "unstacked": "bar_unstacked", "percentage": "bar_percentage_stacked"},
	config.ChartLine: {"stacked": "line", "unstacked": "line", "percentage": "line"},
	config.ChartArea: {"stacked": "area", "unstacked": "area_unstacked", "percentage": "area_percentage_stacked"},
}

// SeriesType returns the series type of an XY chart kind in a stacking
// mode. The default mode is stacked.
func SeriesType(kind config.ChartKind, mode string) string {
	return seriesTypes[kind][defaults.String(&mode, "stacked")]
}

// XY compiles a single-layer bar, line or area chart.
func XY(src source, layerID string, kind config.ChartKind, c *config.XYChart) (*kbn.XYVisualization, error) {
	layer, err := xyLayer(src, layerID, kind, c)
	if err != nil {
		return nil, err
	}
	vis := xyFrame(c)
	vis.PreferredSeriesType = layer.SeriesType
	vis.Layers = []kbn.XYLayer{layer}
	return vis, nil
}

func xyLayer(src source, layerID string, kind config.ChartKind, c *config.XYChart) (kbn.XYLayer, error) {
	refs, err := metrics(src, "metrics", c.Metrics)
	if err != nil {
		return kbn.XYLayer{}, err
	}
	layer := kbn.XYLayer{
		LayerID:    layerID,
		LayerType:  kbn.LayerTypeData,
		SeriesType: SeriesType(kind, c.Mode),
		Accessors:  accessors(refs),
	}
	if c.Dimension != nil {
		if layer.XAccessor, err = dimension(src, "dimension", *c.Dimension, refs); err != nil {
			return kbn.XYLayer{}, err
		}
	}
	if c.Breakdown != nil {
		if layer.SplitAccessor, err = dimension(src, "breakdown", *c.Breakdown, refs); err != nil {
			return kbn.XYLayer{}, err
		}
	}
	for i, s := range c.Appearance.Series {
		if !lo.ContainsBy(refs, func(r columns.MetricRef) bool { return r.ID == s.MetricID }) {
			return kbn.XYLayer{}, report.Configf(indexed("appearance.series", i)+".metric_id", "no metric with id %q in this chart", s.MetricID)
		}
		layer.YConfig = append(layer.YConfig, kbn.YConfig{
			ForAccessor: s.MetricID,
			AxisMode:    s.Axis,
			Color:       s.Color,
		})
	}
	return layer, nil
}

// xyFrame returns the chart-wide part of an XY state, without layers.
func xyFrame(c *config.XYChart) *kbn.XYVisualization {
	a := c.Appearance
	return &kbn.XYVisualization{
		Legend: kbn.XYLegend{
			IsVisible: defaults.Or(a.Legend.Visible, true),
			Position:  defaults.String(&a.Legend.Position, "right"),
		},
		ValueLabels:     defaults.ReturnIf(a.ValueLabels, "show", "hide", "hide"),
		FittingFunction: "None",
		AxisTitlesVisibilitySettings: &kbn.AxisVisibility{
			X:      defaults.Or(a.XAxis.ShowTitle, true),
			YLeft:  defaults.Or(a.LeftAxis.ShowTitle, true),
			YRight: defaults.Or(a.RightAxis.ShowTitle, true),
		},
		XTitle:       a.XAxis.Title,
		YTitle:       a.LeftAxis.Title,
		YRightTitle:  a.RightAxis.Title,
		XExtent:      axisExtent(a.XAxis.Extent),
		YLeftExtent:  axisExtent(a.LeftAxis.Extent),
		YRightExtent: axisExtent(a.RightAxis.Extent),
	}
}

func axisExtent(e *config.AxisExtent) *kbn.AxisExtent {
	if e == nil {
		return nil
	}
	mode := e.Mode
	if mode == "data_bounds" {
		mode = "dataBounds"
	}
	return &kbn.AxisExtent{Mode: mode, LowerBound: e.Min, UpperBound: e.Max}
}

// CheckLayers enforces the layer-kind rules of a multi-layer chart: the
// first layer is never a reference line, several data layers must all be
// XY charts, and reference lines follow an XY layer.
func CheckLayers(layers []config.Chart) error {
	if len(layers) == 0 {
		return report.Configf("", "at least one layer is required")
	}
	if layers[0].Type == config.ChartReferenceLine {
		return report.Configf("[0].type", "the first layer cannot be a reference line")
	}
	for i := range layers {
		if err := layers[i].Validate(); err != nil {
			return report.AtPath(indexed("", i), err)
		}
	}
	data, lines := splitLayers(layers)
	if len(data) > 1 {
		for _, i := range data {
			if !layers[i].Type.IsXY() {
				return report.Unsupportedf(indexed("", i)+".type", "only bar, line and area charts can share a panel, got %s", layers[i].Type)
			}
		}
	}
	if last := data[len(data)-1]; len(lines) > 0 && !layers[last].Type.IsXY() {
		return report.Configf(indexed("", last)+".type", "reference lines need a bar, line or area layer, got %s", layers[last].Type)
	}
	return nil
}

func splitLayers(layers []config.Chart) (data, lines []int) {
	for i, l := range layers {
		if l.Type == config.ChartReferenceLine {
			lines = append(lines, i)
		} else {
			data = append(data, i)
		}
	}
	return data, lines
}

// MultiLayer compiles the layers of a multi-layer chart. Data layers read
// from their own data views; reference lines are merged into one
// reference-line layer that reads from the data view of the last data
// layer.
func MultiLayer(layers []config.Chart) (*Result, error) {
	if err := CheckLayers(layers); err != nil {
		return nil, err
	}
	data, lines := splitLayers(layers)
	if len(data) == 1 && len(lines) == 0 {
		res, err := Lens(&layers[0])
		return res, report.AtPath("[0]", err)
	}

	res := &Result{VisualizationType: kbn.VisXY}
	var (
		vis   *kbn.XYVisualization
		first *config.Query
	)
	for _, i := range data {
		c := &layers[i]
		path := indexed("", i)
		if c.DataView == "" {
			return nil, report.Configf(path+".data_view", "required")
		}
		if vis != nil && c.Query != nil && (first == nil || *c.Query != *first) {
			return nil, report.Configf(path+".query", "layers of one chart share the query of the first layer")
		}
		filters, err := query.Filters(c.Filters)
		if err != nil {
			return nil, report.AtPath(path+".filters", err)
		}
		src := newLensSource(c.DataView)
		layerID := ids.Random()
		layer, err := xyLayer(src, layerID, c.Type, c.XY)
		if err != nil {
			return nil, report.AtPath(path, err)
		}
		if vis == nil {
			q, err := query.Compile(c.Query)
			if err != nil {
				return nil, report.AtPath(path+".query", err)
			}
			first, res.Query = c.Query, q
			vis = xyFrame(c.XY)
			vis.PreferredSeriesType = layer.SeriesType
		}
		res.Filters = append(res.Filters, filters...)
		vis.Layers = append(vis.Layers, layer)
		res.Layers = append(res.Layers, src.layer(layerID))
	}

	if len(lines) > 0 {
		src := newLensSource(layers[data[len(data)-1]].DataView)
		layer := kbn.XYLayer{
			LayerID:   ids.Random(),
			LayerType: kbn.LayerTypeReferenceLine,
			Accessors: []string{},
		}
		for _, i := range lines {
			yc, err := referenceLine(src, i, layers[i].ReferenceLine)
			if err != nil {
				return nil, report.AtPath(indexed("", i), err)
			}
			layer.Accessors = append(layer.Accessors, yc.ForAccessor)
			layer.YConfig = append(layer.YConfig, yc)
		}
		vis.Layers = append(vis.Layers, layer)
		res.Layers = append(res.Layers, src.layer(layer.LayerID))
	}
	res.Visualization = vis
	return res, nil
}

func referenceLine(src source, i int, r *config.ReferenceLine) (kbn.YConfig, error) {
	if r.Value == nil {
		return kbn.YConfig{}, report.Configf("value", "required")
	}
	id := r.ID
	if id == "" {
		id = ids.Stable("reference_line", i, *r.Value)
	}
	ref, err := src.static(id, r.Label, *r.Value)
	if err != nil {
		return kbn.YConfig{}, err
	}
	return kbn.YConfig{
		ForAccessor:    ref.ID,
		AxisMode:       defaults.String(&r.Axis, "left"),
		Color:          r.Color,
		LineWidth:      defaults.Value(r.LineWidth, 1),
		LineStyle:      defaults.String(&r.LineStyle, "solid"),
		Fill:           defaults.String(&r.Fill, "none"),
		Icon:           r.Icon,
		IconPosition:   defaults.String(&r.IconPosition, "auto"),
		TextVisibility: r.TextVisibility,
	}, nil
}
