package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/report"
)

// GridWidth is the number of horizontal units of the dashboard grid.
const GridWidth = 48

// Grid is a panel rectangle in grid units.
type Grid struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// NewGrid returns a validated rectangle.
func NewGrid(x, y, w, h int) (Grid, error) {
	g := Grid{X: x, Y: y, W: w, H: h}
	return g, g.Validate()
}

// Validate rejects negative positions, non-positive sizes and rectangles
// that extend past the right edge of the grid.
func (g Grid) Validate() error {
	switch {
	case g.X < 0 || g.Y < 0:
		return report.Gridf("", "grid position %s must not be negative", g)
	case g.W <= 0 || g.H <= 0:
		return report.Gridf("", "grid size %s must be positive", g)
	case g.X+g.W > GridWidth:
		return report.Gridf("", "grid %s extends past the grid width of %d (x+w=%d)", g, GridWidth, g.X+g.W)
	}
	return nil
}

// Overlaps reports whether g and o share any area. Touching edges do not
// overlap.
func (g Grid) Overlaps(o Grid) bool {
	return !(g.X+g.W <= o.X || o.X+o.W <= g.X || g.Y+g.H <= o.Y || o.Y+o.H <= g.Y)
}

func (g Grid) String() string {
	return fmt.Sprintf("(x=%d, y=%d, w=%d, h=%d)", g.X, g.Y, g.W, g.H)
}

func (g *Grid) UnmarshalYAML(node *yaml.Node) error {
	type plain Grid
	present, err := keys(node)
	if err != nil {
		return err
	}
	for _, k := range []string{"x", "y", "w", "h"} {
		if !present[k] {
			return report.Configf(k, "required")
		}
	}
	if err := decodeMapping(node, (*plain)(g)); err != nil {
		return err
	}
	return g.Validate()
}
