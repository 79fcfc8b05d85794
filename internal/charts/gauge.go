package charts

import (
	"github.com/foundry-zero/kbdash/internal/columns"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/report"
)

var gaugeShapes = map[string]string{
	"arc":               "arc",
	"circle":            "circle",
	"horizontal_bullet": "horizontalBullet",
	"vertical_bullet":   "verticalBullet",
}

// Gauge compiles a gauge. Fixed bounds become static-value columns.
func Gauge(src source, layerID string, c *config.GaugeChart) (*kbn.GaugeVisualization, error) {
	value, err := metric(src, "metric", c.Metric)
	if err != nil {
		return nil, err
	}
	a := c.Appearance
	shape := gaugeShapes[a.Shape]
	if shape == "" {
		shape = "horizontalBullet"
	}
	vis := &kbn.GaugeVisualization{
		LayerID:        layerID,
		LayerType:      kbn.LayerTypeData,
		Shape:          shape,
		TicksPosition:  defaults.String(&a.TicksPosition, "auto"),
		LabelMajorMode: "auto",
		LabelMajor:     a.Label,
		LabelMinor:     a.Sublabel,
		ColorMode:      defaults.String(&a.ColorMode, "none"),
		RespectRanges:  a.RespectRanges,
		MetricAccessor: value.ID,
	}
	switch {
	case a.Label != "":
		vis.LabelMajorMode = "custom"
	case defaults.IsTrue(a.HideLabel):
		vis.LabelMajorMode = "none"
	}
	if a.Palette != "" || vis.ColorMode == "palette" {
		vis.Palette = &kbn.Palette{Type: "palette", Name: defaults.String(&a.Palette, "default")}
	}

	bounds := []struct {
		role  string
		bound *config.GaugeBound
		dst   *string
	}{
		{"minimum", c.Minimum, &vis.MinAccessor},
		{"maximum", c.Maximum, &vis.MaxAccessor},
		{"goal", c.Goal, &vis.GoalAccessor},
	}
	for _, b := range bounds {
		if b.bound == nil {
			continue
		}
		ref, err := gaugeBound(src, b.role, b.bound)
		if err != nil {
			return nil, err
		}
		*b.dst = ref.ID
	}
	return vis, nil
}

func gaugeBound(src source, role string, b *config.GaugeBound) (columns.MetricRef, error) {
	if b.Metric != nil {
		return metric(src, role, *b.Metric)
	}
	if b.Value == nil {
		return columns.MetricRef{}, report.Configf(role, "must be a number or a metric")
	}
	ref, err := src.static(ids.Stable("gauge", role, *b.Value), "", *b.Value)
	if err != nil {
		return columns.MetricRef{}, report.AtPath(role, err)
	}
	return ref, nil
}
