// Package semantic holds the validation passes that run over a loaded
// dashboard before it is compiled: grid placement, multi-layer layer kinds,
// intra-chart id references and id uniqueness.
//
// Error passes return compile errors whose paths are relative to the
// dashboard. CheckWarnings returns findings directly.
package semantic

import (
	"fmt"

	"github.com/foundry-zero/kbdash/internal/config"
)

// PassFunc is an error pass over one dashboard.
type PassFunc func(*config.Dashboard) []error

// Pass names an error pass.
type Pass struct {
	Name string
	Fn   PassFunc
}

// Passes returns every error pass in the order they run.
func Passes() []Pass {
	return []Pass{
		{Name: "grid", Fn: CheckGrid},
		{Name: "layers", Fn: CheckLayers},
		{Name: "references", Fn: CheckReferences},
		{Name: "uniqueness", Fn: CheckUniqueness},
	}
}

// Validate returns the first problem any error pass finds in d.
func Validate(d *config.Dashboard) error {
	for _, p := range Passes() {
		if errs := p.Fn(d); len(errs) > 0 {
			return errs[0]
		}
	}
	return nil
}

func panelPath(i int) string {
	return fmt.Sprintf("panels[%d]", i)
}
