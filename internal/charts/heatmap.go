package charts

import (
	"github.com/foundry-zero/kbdash/internal/columns"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/kbn"
)

// Heatmap compiles a heatmap. The grid hides labels and titles unless the
// author turns them on.
func Heatmap(src source, layerID string, c *config.HeatmapChart) (*kbn.HeatmapVisualization, error) {
	value, err := metric(src, "metric", c.Metric)
	if err != nil {
		return nil, err
	}
	refs := []columns.MetricRef{value}
	x, err := dimension(src, "x_axis", c.XAxis, refs)
	if err != nil {
		return nil, err
	}
	vis := &kbn.HeatmapVisualization{
		Shape:         "heatmap",
		LayerID:       layerID,
		LayerType:     kbn.LayerTypeData,
		XAccessor:     x,
		ValueAccessor: value.ID,
		GridConfig: kbn.HeatmapGrid{
			Type:                "heatmap_grid",
			IsCellLabelVisible:  defaults.IsTrue(c.Appearance.CellLabels),
			IsXAxisLabelVisible: defaults.IsTrue(c.Appearance.XAxis.Labels),
			IsXAxisTitleVisible: defaults.IsTrue(c.Appearance.XAxis.Title),
			IsYAxisLabelVisible: defaults.IsTrue(c.Appearance.YAxis.Labels),
			IsYAxisTitleVisible: defaults.IsTrue(c.Appearance.YAxis.Title),
		},
		Legend: kbn.HeatmapLegend{
			Type:      "heatmap_legend",
			IsVisible: defaults.Or(c.Appearance.Legend.Visible, true),
			Position:  defaults.String(&c.Appearance.Legend.Position, "right"),
		},
	}
	if c.YAxis != nil {
		if vis.YAccessor, err = dimension(src, "y_axis", *c.YAxis, refs); err != nil {
			return nil, err
		}
	}
	return vis, nil
}
