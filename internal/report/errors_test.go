package report

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := map[string]struct {
		err  error
		kind Kind
		rule string
	}{
		"config":      {err: Configf("a.b", "bad %s", "value"), kind: KindConfig, rule: "CONFIG"},
		"grid":        {err: Gridf("panels[0]", "overlap"), kind: KindGrid, rule: "GRID"},
		"unsupported": {err: Unsupportedf("", "map panels"), kind: KindUnsupported, rule: "UNSUPPORTED"},
		"formula":     {err: Formulaf("formula", "unknown operator"), kind: KindFormula, rule: "FORMULA"},
		"io":          {err: IO("x.yaml", errors.New("no such file")), kind: KindIO, rule: "INPUT"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.kind, KindOf(tc.err))
			assert.True(t, IsKind(errors.Wrap(tc.err, "wrapped"), tc.kind))
			assert.Equal(t, tc.rule, FindingFromError("f", tc.err).Rule)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "grid.w: must be positive", Configf("grid.w", "must be positive").Error())
	assert.Equal(t, "no path", Configf("", "no path").Error())
}

func TestAtPath(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"empty path":   {err: Configf("", "boom"), want: "panels[1]"},
		"dotted path":  {err: Configf("grid.w", "boom"), want: "panels[1].grid.w"},
		"indexed path": {err: Configf("[2].field", "boom"), want: "panels[1][2].field"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var e *Error
			require.True(t, errors.As(AtPath("panels[1]", tc.err), &e))
			assert.Equal(t, tc.want, e.Path)
		})
	}

	plain := errors.New("plain")
	assert.Equal(t, plain, AtPath("x", plain))
	assert.Nil(t, AtPath("x", nil))
}

func TestIOUnwrapsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := IO("dash.yaml", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "INTERNAL", FindingFromError("f", cause).Rule)
}
