// Package kbn defines the saved-object document the dashboard import API
// accepts. Field order and omitempty tags follow the platform's export
// format; fields that are absent on export are omitted, never null.
package kbn

// Reference tells the platform how to resolve an opaque id embedded in the
// document.
type Reference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dashboard is the saved-object envelope of one dashboard.
type Dashboard struct {
	Attributes           Attributes  `json:"attributes"`
	CoreMigrationVersion string      `json:"coreMigrationVersion"`
	CreatedAt            string      `json:"created_at"`
	CreatedBy            string      `json:"created_by"`
	ID                   string      `json:"id"`
	Managed              bool        `json:"managed"`
	References           []Reference `json:"references"`
	Type                 string      `json:"type"`
	TypeMigrationVersion string      `json:"typeMigrationVersion"`
	UpdatedAt            string      `json:"updated_at"`
	UpdatedBy            string      `json:"updated_by"`
	Version              string      `json:"version"`
}

type Attributes struct {
	ControlGroupInput     *ControlGroupInput  `json:"controlGroupInput,omitempty"`
	Description           string              `json:"description"`
	KibanaSavedObjectMeta SavedObjectMeta     `json:"kibanaSavedObjectMeta"`
	OptionsJSON           JSONString[Options] `json:"optionsJSON"`
	PanelsJSON            JSONString[[]Panel] `json:"panelsJSON"`
	TimeRestore           bool                `json:"timeRestore"`
	Title                 string              `json:"title"`
	Version               int                 `json:"version"`
}

type SavedObjectMeta struct {
	SearchSourceJSON JSONString[SearchSource] `json:"searchSourceJSON"`
}

// SearchSource carries the dashboard-wide query and filters.
type SearchSource struct {
	Filter []Filter `json:"filter"`
	Query  Query    `json:"query"`
}

type Options struct {
	HidePanelTitles bool `json:"hidePanelTitles"`
	SyncColors      bool `json:"syncColors"`
	SyncCursor      bool `json:"syncCursor"`
	SyncTooltips    bool `json:"syncTooltips"`
	UseMargins      bool `json:"useMargins"`
}

// Query is a KQL or Lucene query.
type Query struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

// ESQLQuery is an ES|QL query as stored in text-based layers.
type ESQLQuery struct {
	ESQL string `json:"esql"`
}
