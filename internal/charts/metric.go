package charts

import (
	"fmt"

	"github.com/foundry-zero/kbdash/internal/columns"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/kbn"
)

// Metric compiles a headline metric chart.
func Metric(src source, layerID string, c *config.MetricChart) (*kbn.MetricVisualization, error) {
	primary, err := metric(src, "primary", c.Primary)
	if err != nil {
		return nil, err
	}
	vis := &kbn.MetricVisualization{
		LayerID:        layerID,
		LayerType:      kbn.LayerTypeData,
		MetricAccessor: primary.ID,
		Color:          c.Appearance.Color,
		Subtitle:       c.Appearance.Subtitle,
	}
	if c.Secondary != nil {
		ref, err := metric(src, "secondary", *c.Secondary)
		if err != nil {
			return nil, err
		}
		vis.SecondaryMetricAccessor = ref.ID
	}
	if c.Maximum != nil {
		ref, err := metric(src, "maximum", *c.Maximum)
		if err != nil {
			return nil, err
		}
		vis.MaxAccessor = ref.ID
	}
	if c.Breakdown != nil {
		id, err := dimension(src, "breakdown", *c.Breakdown, []columns.MetricRef{primary})
		if err != nil {
			return nil, err
		}
		vis.BreakdownByAccessor = id
	}
	if c.Appearance.Palette != "" {
		vis.Palette = &kbn.Palette{Type: "palette", Name: c.Appearance.Palette}
	}
	return vis, nil
}

func indexed(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
