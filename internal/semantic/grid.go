package semantic

import (
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/report"
)

// CheckGrid verifies panel placement.
//
//   - every rectangle lies within the grid
//   - no two rectangles overlap; touching edges are allowed
func CheckGrid(d *config.Dashboard) []error {
	var errs []error

	errs = checkGridBounds(errs, d)
	errs = checkOverlaps(errs, d)

	return errs
}

func checkGridBounds(errs []error, d *config.Dashboard) []error {
	for i, p := range d.Panels {
		if err := p.Grid.Validate(); err != nil {
			errs = append(errs, report.AtPath(panelPath(i)+".grid", err))
		}
	}
	return errs
}

// checkOverlaps compares every pair of panels. Dashboards are small
// enough for the quadratic scan.
func checkOverlaps(errs []error, d *config.Dashboard) []error {
	for j := range d.Panels {
		for i := range j {
			a, b := d.Panels[i], d.Panels[j]
			if !a.Grid.Overlaps(b.Grid) {
				continue
			}
			errs = append(errs, report.Gridf(panelPath(j)+".grid",
				"panel %q at %s overlaps panel %q at %s",
				b.Title, b.Grid, a.Title, a.Grid))
		}
	}
	return errs
}
