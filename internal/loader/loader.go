// Package loader reads authored dashboard files from disk and writes them
// back.
package loader

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/logger"
	"github.com/foundry-zero/kbdash/internal/report"
	"github.com/foundry-zero/kbdash/internal/semantic"
)

var log = logger.New().With("component", "loader")

// Load reads the dashboard file at path and validates every dashboard in
// it. The first problem found is returned.
func Load(path string) (*config.File, error) {
	f, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Read reads and decodes the dashboard file at path without running the
// semantic passes.
func Read(path string) (*config.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, report.IO(path, errors.Wrap(err, "read dashboard file"))
	}
	f, err := Decode(data)
	if err != nil {
		return nil, err
	}
	log.Debug("read", "file", path, "bytes", len(data), "dashboards", len(f.Dashboards))
	return f, nil
}

// LoadBytes decodes and validates an in-memory document.
func LoadBytes(data []byte) (*config.File, error) {
	f, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Decode parses an authored document. Malformed YAML is reported as a
// configuration error at the document root.
func Decode(data []byte) (*config.File, error) {
	f, err := config.Parse(data)
	if err != nil {
		if report.KindOf(err) == 0 {
			return nil, report.Configf("", "malformed YAML: %v", errors.UnwrapAll(err))
		}
		return nil, err
	}
	return f, nil
}

// Validate runs the semantic passes over every dashboard of f. Errors are
// rooted at the dashboard's index.
func Validate(f *config.File) error {
	for i := range f.Dashboards {
		if err := semantic.Validate(&f.Dashboards[i]); err != nil {
			return report.AtPath(fmt.Sprintf("dashboards[%d]", i), err)
		}
	}
	log.Debug("validated", "dashboards", len(f.Dashboards))
	return nil
}

// Dump writes dashboards to path as an authored document.
func Dump(dashboards []config.Dashboard, path string) error {
	data, err := config.Marshal(dashboards)
	if err != nil {
		return errors.Wrap(err, "encode dashboards")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return report.IO(path, errors.Wrap(err, "write dashboard file"))
	}
	log.Debug("wrote", "file", path, "dashboards", len(dashboards))
	return nil
}
