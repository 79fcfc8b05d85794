package kbn

// Filter is a pinned or app-state filter as stored in search sources and
// Lens states.
type Filter struct {
	State *FilterState   `json:"$state,omitempty"`
	Meta  FilterMeta     `json:"meta"`
	Query map[string]any `json:"query,omitempty"`
}

type FilterState struct {
	Store string `json:"store"`
}

type FilterMeta struct {
	Alias    string `json:"alias,omitempty"`
	Disabled bool   `json:"disabled"`
	Negate   bool   `json:"negate"`
	Key      string `json:"key,omitempty"`
	Field    string `json:"field,omitempty"`
	Type     string `json:"type"`
	// Params is a value map for phrase and range filters, a value list for
	// phrases filters and a sub-filter list for combined filters.
	Params   any    `json:"params,omitempty"`
	Relation string `json:"relation,omitempty"`
	Value    string `json:"value,omitempty"`
}
