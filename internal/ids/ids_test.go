package ids

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStable(t *testing.T) {
	tests := map[string]struct {
		a, b  []any
		equal bool
	}{
		"same atoms":           {a: []any{"count", nil}, b: []any{"count", nil}, equal: true},
		"different field":      {a: []any{"sum", "bytes"}, b: []any{"sum", "latency"}},
		"int vs float":         {a: []any{1}, b: []any{1.0}},
		"nil vs empty string":  {a: []any{nil}, b: []any{""}},
		"order matters":        {a: []any{"a", "b"}, b: []any{"b", "a"}},
		"no separator collide": {a: []any{"ab", "c"}, b: []any{"a", "bc"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			x, y := Stable(tc.a...), Stable(tc.b...)
			if tc.equal {
				assert.Equal(t, x, y)
			} else {
				assert.NotEqual(t, x, y)
			}
		})
	}
}

func TestStableIsUUIDShaped(t *testing.T) {
	id := Stable("metric", "logs-*")
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Len(t, id, 36)
}

func TestRandomSourceSwap(t *testing.T) {
	restore := SetRandomSource(Sequence("x"))
	assert.Equal(t, "x-0", Random())
	assert.Equal(t, "x-1", Random())
	restore()

	a, b := Random(), Random()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestPlaceholder(t *testing.T) {
	restore := SetRandomSource(Placeholder("uuid"))
	defer restore()
	assert.Equal(t, "uuid", Random())
	assert.Equal(t, "uuid", Random())
}
