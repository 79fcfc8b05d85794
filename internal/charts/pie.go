package charts

import (
	"github.com/foundry-zero/kbdash/internal/columns"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/report"
)

var (
	donutHoles  = map[string]float64{"none": 0, "small": 0.3, "medium": 0.54, "large": 0.7}
	collapseFns = map[string]bool{"sum": true, "avg": true, "min": true, "max": true}
)

// Pie compiles a pie or donut chart.
func Pie(src source, layerID string, kind config.ChartKind, c *config.PieChart) (*kbn.PieVisualization, error) {
	refs, err := metrics(src, "metrics", c.Metrics)
	if err != nil {
		return nil, err
	}
	collapse := map[string]string{}
	primary, err := groups(src, "slice_by", c.SliceBy, refs, collapse)
	if err != nil {
		return nil, err
	}
	secondary, err := groups(src, "secondary_slice_by", c.SecondarySliceBy, refs, collapse)
	if err != nil {
		return nil, err
	}

	a := c.Appearance
	numbers := defaults.String(&a.Values, "percent")
	if numbers == "integer" {
		numbers = "value"
	}
	layer := kbn.PieLayer{
		LayerID:              layerID,
		LayerType:            kbn.LayerTypeData,
		PrimaryGroups:        primary,
		SecondaryGroups:      secondary,
		Metrics:              accessors(refs),
		AllowMultipleMetrics: len(refs) > 1,
		NumberDisplay:        numbers,
		CategoryDisplay:      defaults.String(&a.Labels, "default"),
		LegendDisplay:        defaults.String(&a.Legend.Visible, "default"),
		LegendSize:           a.Legend.Size,
		LegendMaxLines:       a.Legend.MaxLines,
		TruncateLegend:       a.Legend.Truncate,
		NestedLegend:         defaults.IsTrue(a.Legend.Nested),
		PercentDecimals:      a.Decimals,
	}
	if len(collapse) > 0 {
		layer.CollapseFns = collapse
	}

	shape := "pie"
	if kind == config.ChartDonut {
		shape = "donut"
		ratio := donutHoles[defaults.String(&a.DonutHole, "medium")]
		layer.EmptySizeRatio = &ratio
	}
	if layer.AllowMultipleMetrics {
		zero := 0.0
		layer.EmptySizeRatio = &zero
	}
	return &kbn.PieVisualization{Shape: shape, Layers: []kbn.PieLayer{layer}}, nil
}

// groups compiles slice groups and records their collapse functions by
// accessor id.
func groups(src source, path string, ds []config.Dimension, refs []columns.MetricRef, collapse map[string]string) ([]string, error) {
	out := make([]string, 0, len(ds))
	for i, d := range ds {
		at := indexed(path, i)
		if d.Collapse != "" && !collapseFns[d.Collapse] {
			return nil, report.Configf(at+".collapse", "must be one of sum, avg, min or max, got %q", d.Collapse)
		}
		id, err := src.dimension(d, refs)
		if err != nil {
			return nil, report.AtPath(at, err)
		}
		if d.Collapse != "" {
			collapse[id] = d.Collapse
		}
		out = append(out, id)
	}
	return out, nil
}
