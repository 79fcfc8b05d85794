// Package dashboard compiles one authored dashboard into the saved-object
// document the platform imports.
package dashboard

import (
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/samber/lo"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/controls"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/panels"
	"github.com/foundry-zero/kbdash/internal/query"
	"github.com/foundry-zero/kbdash/internal/report"
	"github.com/foundry-zero/kbdash/internal/semantic"
)

const (
	objectType           = "dashboard"
	typeMigrationVersion = "10.2.0"
	objectVersion        = "WzEsMV0="
	timestamp            = "2024-01-01T00:00:00.000Z"
	createdBy            = "kbdash"
)

// Minimum platform versions a component can demand.
var (
	floorBaseline    = semver.MustParse("8.8.0")
	floorESQLChart   = semver.MustParse("8.13.0")
	floorESQLControl = semver.MustParse("8.19.0")
)

// Render validates d and compiles it. Errors carry paths relative to the
// dashboard.
func Render(d *config.Dashboard) (*kbn.Dashboard, error) {
	if err := semantic.Validate(d); err != nil {
		return nil, err
	}

	opts := options(d.Settings)
	compiled := make([]kbn.Panel, 0, len(d.Panels))
	var refs []kbn.Reference
	version := floorBaseline
	for i, p := range d.Panels {
		res, err := panels.Compile(p, panels.Options{
			SyncColors:   opts.SyncColors,
			SyncCursor:   opts.SyncCursor,
			SyncTooltips: opts.SyncTooltips,
		})
		if err != nil {
			return nil, report.AtPath(fmt.Sprintf("panels[%d]", i), err)
		}
		compiled = append(compiled, res.Panel)
		refs = append(refs, res.References...)
		if res.ESQL {
			version = maxVersion(version, floorESQLChart)
		}
	}

	group, err := controls.Group(d.Controls, d.Settings.Controls)
	if err != nil {
		return nil, report.AtPath("controls", err)
	}
	if lo.SomeBy(d.Controls, func(c config.Control) bool { return c.Type.IsESQL() }) {
		version = maxVersion(version, floorESQLControl)
	}

	search, err := searchSource(d)
	if err != nil {
		return nil, err
	}

	id := d.ID
	if id == "" {
		id = ids.Stable(d.Name)
	}
	if refs == nil {
		refs = []kbn.Reference{}
	}

	return &kbn.Dashboard{
		Attributes: kbn.Attributes{
			ControlGroupInput:     group,
			Description:           d.Description,
			KibanaSavedObjectMeta: kbn.SavedObjectMeta{SearchSourceJSON: kbn.Stringify(search)},
			OptionsJSON:           kbn.Stringify(opts),
			PanelsJSON:            kbn.Stringify(compiled),
			TimeRestore:           false,
			Title:                 d.Name,
			Version:               1,
		},
		CoreMigrationVersion: version.String(),
		CreatedAt:            timestamp,
		CreatedBy:            createdBy,
		ID:                   id,
		References:           refs,
		Type:                 objectType,
		TypeMigrationVersion: typeMigrationVersion,
		UpdatedAt:            timestamp,
		UpdatedBy:            createdBy,
		Version:              objectVersion,
	}, nil
}

// RenderAll compiles every dashboard of f in order. Errors are rooted at
// the dashboard's index.
func RenderAll(f *config.File) ([]*kbn.Dashboard, error) {
	out := make([]*kbn.Dashboard, 0, len(f.Dashboards))
	for i := range f.Dashboards {
		d, err := Render(&f.Dashboards[i])
		if err != nil {
			return nil, report.AtPath(fmt.Sprintf("dashboards[%d]", i), err)
		}
		out = append(out, d)
	}
	return out, nil
}

func options(s config.Settings) kbn.Options {
	return kbn.Options{
		HidePanelTitles: defaults.Invert(s.Titles, false),
		SyncColors:      defaults.Or(s.Sync.Colors, false),
		SyncCursor:      defaults.Or(s.Sync.Cursor, true),
		SyncTooltips:    defaults.Or(s.Sync.Tooltips, false),
		UseMargins:      defaults.Or(s.Margins, true),
	}
}

func searchSource(d *config.Dashboard) (kbn.SearchSource, error) {
	q, err := query.Compile(d.Query)
	if err != nil {
		return kbn.SearchSource{}, report.AtPath("query", err)
	}
	filters, err := query.Filters(d.Filters)
	if err != nil {
		return kbn.SearchSource{}, report.AtPath("filters", err)
	}
	return kbn.SearchSource{Filter: filters, Query: q}, nil
}

func maxVersion(a, b semver.Version) semver.Version {
	if b.GT(a) {
		return b
	}
	return a
}
