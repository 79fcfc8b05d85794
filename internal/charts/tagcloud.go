package charts

import (
	"github.com/foundry-zero/kbdash/internal/columns"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/kbn"
)

var orientations = map[string]string{
	"single":       "single",
	"right_angled": "right angled",
	"multiple":     "multiple",
}

// Tagcloud compiles a tag cloud.
func Tagcloud(src source, layerID string, c *config.TagcloudChart) (*kbn.TagcloudVisualization, error) {
	value, err := metric(src, "metric", c.Metric)
	if err != nil {
		return nil, err
	}
	tags, err := dimension(src, "tags", c.Tags, []columns.MetricRef{value})
	if err != nil {
		return nil, err
	}
	a := c.Appearance
	return &kbn.TagcloudVisualization{
		LayerID:       layerID,
		LayerType:     kbn.LayerTypeData,
		TagAccessor:   tags,
		ValueAccessor: value.ID,
		MinFontSize:   defaults.Value(a.MinFontSize, 18),
		MaxFontSize:   defaults.Value(a.MaxFontSize, 72),
		Orientation:   orientations[defaults.String(&a.Orientation, "single")],
		ShowLabel:     defaults.Or(a.ShowLabel, true),
	}, nil
}
