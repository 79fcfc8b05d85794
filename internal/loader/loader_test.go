package loader

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/logger"
	"github.com/foundry-zero/kbdash/internal/report"
)

const doc = `
dashboards:
  - name: Web logs
    panels:
      - {title: Notes, type: markdown, content: "# Hi", grid: {x: 0, y: 0, w: 24, h: 5}}
      - title: Requests
        type: charts
        grid: {x: 24, y: 0, w: 24, h: 5}
        chart:
          type: metric
          data_view: logs-*
          primary: {aggregation: count}
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	f, err := Load(writeFile(t, doc))
	require.NoError(t, err)
	require.Len(t, f.Dashboards, 1)
	assert.Equal(t, "Web logs", f.Dashboards[0].Name)
	assert.Len(t, f.Dashboards[0].Panels, 2)
}

func TestLoadLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := log
	log = logger.NewWithHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { log = prev })

	path := writeFile(t, doc)
	_, err := Load(path)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG msg=read file="+path)
	assert.Contains(t, out, "dashboards=1")
	assert.Contains(t, out, "msg=validated")
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, report.IsKind(err, report.KindIO))
	assert.Equal(t, "INPUT", report.FindingFromError(path, err).Rule)
}

func TestLoadBytesErrors(t *testing.T) {
	tests := map[string]struct {
		src  string
		kind report.Kind
		path string
	}{
		"malformed yaml": {
			src:  "dashboards: [",
			kind: report.KindConfig,
		},
		"missing name": {
			src:  "dashboards:\n  - description: x\n",
			kind: report.KindConfig,
			path: "dashboards[0].name",
		},
		"overlapping panels": {
			src: `
dashboards:
  - name: Ok
  - name: Overlap
    panels:
      - {type: markdown, title: A, content: a, grid: {x: 0, y: 0, w: 20, h: 10}}
      - {type: markdown, title: B, content: b, grid: {x: 10, y: 5, w: 20, h: 10}}
`,
			kind: report.KindGrid,
			path: "dashboards[1].panels[1].grid",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadBytes([]byte(test.src))
			require.Error(t, err)
			assert.Equal(t, test.kind, report.KindOf(err))
			assert.Equal(t, test.path, report.FindingFromError("", err).Location.Path)
		})
	}
}

func TestReadSkipsSemanticPasses(t *testing.T) {
	path := writeFile(t, `
dashboards:
  - name: Overlap
    panels:
      - {type: markdown, content: a, grid: {x: 0, y: 0, w: 20, h: 10}}
      - {type: markdown, content: b, grid: {x: 0, y: 0, w: 20, h: 10}}
`)
	f, err := Read(path)
	require.NoError(t, err)
	assert.Error(t, Validate(f))
}

func TestDumpRoundTrip(t *testing.T) {
	f, err := LoadBytes([]byte(doc))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Dump(f.Dashboards, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f.Dashboards, again.Dashboards)
}

func TestDumpUnwritable(t *testing.T) {
	err := Dump([]config.Dashboard{{Name: "x"}}, filepath.Join(t.TempDir(), "missing", "out.yaml"))
	require.Error(t, err)
	assert.True(t, report.IsKind(err, report.KindIO))
}
