// Package columns compiles authored metrics and dimensions into form-based
// column records keyed by accessor id.
package columns

import (
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/report"
)

// Set is an insertion-ordered map of accessor id to column.
type Set struct {
	ids  []string
	cols map[string]kbn.Column
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{cols: make(map[string]kbn.Column)}
}

// Add inserts a column. Accessor ids are unique within a layer.
func (s *Set) Add(id string, c kbn.Column) error {
	if _, ok := s.cols[id]; ok {
		return report.Configf("", "column id %q is used twice in one chart; set an explicit id", id)
	}
	s.ids = append(s.ids, id)
	s.cols[id] = c
	return nil
}

// Get returns the column stored under id.
func (s *Set) Get(id string) (kbn.Column, bool) {
	c, ok := s.cols[id]
	return c, ok
}

// Has reports whether id is in s.
func (s *Set) Has(id string) bool {
	_, ok := s.cols[id]
	return ok
}

// IDs returns the accessor ids in insertion order.
func (s *Set) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the number of columns in s.
func (s *Set) Len() int { return len(s.ids) }

// Map returns the columns keyed by id.
func (s *Set) Map() map[string]kbn.Column {
	out := make(map[string]kbn.Column, len(s.cols))
	for id, c := range s.cols {
		out[id] = c
	}
	return out
}
