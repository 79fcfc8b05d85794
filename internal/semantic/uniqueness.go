package semantic

import (
	"fmt"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/panels"
	"github.com/foundry-zero/kbdash/internal/report"
)

// CheckUniqueness verifies that ids which namespace references are unique.
//
//   - panel indexes, authored or derived, are unique within a dashboard
//   - authored control ids are unique within a dashboard
func CheckUniqueness(d *config.Dashboard) []error {
	var errs []error

	errs = checkPanelIndexes(errs, d)
	errs = checkControlIDs(errs, d)

	return errs
}

func checkPanelIndexes(errs []error, d *config.Dashboard) []error {
	seen := make(map[string]int, len(d.Panels))
	for i, p := range d.Panels {
		index := panels.Index(p)
		if first, ok := seen[index]; ok {
			errs = append(errs, report.Configf(panelPath(i)+".id",
				"panel index %q is also used by panels[%d]; set a distinct id", index, first))
			continue
		}
		seen[index] = i
	}
	return errs
}

func checkControlIDs(errs []error, d *config.Dashboard) []error {
	seen := make(map[string]int, len(d.Controls))
	for i, c := range d.Controls {
		if c.ID == "" {
			continue
		}
		if first, ok := seen[c.ID]; ok {
			errs = append(errs, report.Configf(fmt.Sprintf("controls[%d].id", i),
				"control id %q is also used by controls[%d]", c.ID, first))
			continue
		}
		seen[c.ID] = i
	}
	return errs
}
