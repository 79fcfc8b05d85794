package semantic

import (
	"github.com/foundry-zero/kbdash/internal/charts"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/report"
)

// CheckLayers verifies the layer kinds of every multi-layer panel.
func CheckLayers(d *config.Dashboard) []error {
	var errs []error
	for i, p := range d.Panels {
		if p.Charts == nil || p.Charts.Layers == nil {
			continue
		}
		if err := charts.CheckLayers(p.Charts.Layers); err != nil {
			errs = append(errs, report.AtPath(panelPath(i)+".layers", err))
		}
	}
	return errs
}
