package kbn

// LensAttributes is the attribute block of a Lens saved object.
type LensAttributes struct {
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	VisualizationType string      `json:"visualizationType"`
	Type              string      `json:"type"`
	References        []Reference `json:"references"`
	State             LensState   `json:"state"`
}

type LensState struct {
	AdHocDataViews     map[string]AdHocDataView `json:"adHocDataViews"`
	DatasourceStates   DatasourceStates         `json:"datasourceStates"`
	Filters            []Filter                 `json:"filters"`
	InternalReferences []Reference              `json:"internalReferences"`
	Query              any                      `json:"query"`
	Visualization      any                      `json:"visualization"`
}

// AdHocDataView is an in-document data view, used by ES|QL layers.
type AdHocDataView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	TimeFieldName string `json:"timeFieldName"`
	Type          string `json:"type,omitempty"`
}

type DatasourceStates struct {
	FormBased *FormBasedState `json:"formBased,omitempty"`
	TextBased *TextBasedState `json:"textBased,omitempty"`
}

type FormBasedState struct {
	Layers map[string]FormBasedLayer `json:"layers"`
}

type FormBasedLayer struct {
	ColumnOrder []string          `json:"columnOrder"`
	Columns     map[string]Column `json:"columns"`
	// IncompleteColumns is carried verbatim; the compiler never populates it.
	IncompleteColumns map[string]any `json:"incompleteColumns"`
	Sampling          float64        `json:"sampling"`
}

type TextBasedState struct {
	Layers map[string]TextBasedLayer `json:"layers"`
}

type TextBasedLayer struct {
	Index     string            `json:"index"`
	Query     ESQLQuery         `json:"query"`
	Columns   []TextBasedColumn `json:"columns"`
	TimeField string            `json:"timeField,omitempty"`
}

type TextBasedColumn struct {
	ColumnID    string     `json:"columnId"`
	FieldName   string     `json:"fieldName"`
	Label       string     `json:"label,omitempty"`
	CustomLabel bool       `json:"customLabel,omitempty"`
	Meta        ColumnMeta `json:"meta"`
}

type ColumnMeta struct {
	Type string `json:"type"`
}

// Column is one form-based column record.
type Column struct {
	Label         string        `json:"label"`
	DataType      string        `json:"dataType"`
	OperationType string        `json:"operationType"`
	Scale         string        `json:"scale,omitempty"`
	IsBucketed    bool          `json:"isBucketed"`
	IsStaticValue bool          `json:"isStaticValue,omitempty"`
	SourceField   string        `json:"sourceField,omitempty"`
	CustomLabel   bool          `json:"customLabel,omitempty"`
	Filter        *Query        `json:"filter,omitempty"`
	Params        *ColumnParams `json:"params,omitempty"`
	References    []string      `json:"references,omitempty"`
}

// ColumnParams is the union of every operation's params. Only the fields
// relevant to the column's operation are set.
type ColumnParams struct {
	EmptyAsNull *bool    `json:"emptyAsNull,omitempty"`
	SortField   string   `json:"sortField,omitempty"`
	Percentile  *float64 `json:"percentile,omitempty"`
	// Value is a number for percentile_rank and a string for static_value.
	Value  any     `json:"value,omitempty"`
	Format *Format `json:"format,omitempty"`

	Size           int           `json:"size,omitempty"`
	OrderBy        *OrderBy      `json:"orderBy,omitempty"`
	OrderDirection string        `json:"orderDirection,omitempty"`
	OtherBucket    *bool         `json:"otherBucket,omitempty"`
	MissingBucket  *bool         `json:"missingBucket,omitempty"`
	ParentFormat   *ParentFormat `json:"parentFormat,omitempty"`
	Include        []string      `json:"include,omitempty"`
	Exclude        []string      `json:"exclude,omitempty"`
	IncludeIsRegex *bool         `json:"includeIsRegex,omitempty"`
	ExcludeIsRegex *bool         `json:"excludeIsRegex,omitempty"`

	Interval         string `json:"interval,omitempty"`
	IncludeEmptyRows *bool  `json:"includeEmptyRows,omitempty"`
	DropPartials     *bool  `json:"dropPartials,omitempty"`

	Type    string  `json:"type,omitempty"`
	Ranges  []Range `json:"ranges,omitempty"`
	MaxBars any     `json:"maxBars,omitempty"`

	Filters []FilterBucket `json:"filters,omitempty"`

	Formula         string `json:"formula,omitempty"`
	IsFormulaBroken *bool  `json:"isFormulaBroken,omitempty"`
	TinymathAst     any    `json:"tinymathAst,omitempty"`
}

type Format struct {
	ID     string        `json:"id"`
	Params *FormatParams `json:"params,omitempty"`
}

type FormatParams struct {
	Decimals int    `json:"decimals"`
	Suffix   string `json:"suffix,omitempty"`
	Compact  bool   `json:"compact,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
}

type OrderBy struct {
	Type     string `json:"type"`
	ColumnID string `json:"columnId,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

type ParentFormat struct {
	ID     string              `json:"id"`
	Params *ParentFormatParams `json:"params,omitempty"`
}

type ParentFormatParams struct {
	Template        string `json:"template"`
	ReplaceInfinity bool   `json:"replaceInfinity"`
}

// Range is one numeric bucket. Nil bounds are emitted as null (open range).
type Range struct {
	From  *float64 `json:"from"`
	To    *float64 `json:"to"`
	Label string   `json:"label"`
}

type FilterBucket struct {
	Label string `json:"label"`
	Input Query  `json:"input"`
}

// TinymathFunction is an operator node of a TinyMath AST. Args hold
// numbers, column ids (strings) or nested nodes.
type TinymathFunction struct {
	Type     string           `json:"type"`
	Name     string           `json:"name"`
	Args     []any            `json:"args"`
	Location TinymathLocation `json:"location"`
	Text     string           `json:"text"`
}

type TinymathLocation struct {
	Min int `json:"min"`
	Max int `json:"max"`
}
