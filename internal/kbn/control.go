package kbn

// ControlGroupInput is attributes.controlGroupInput.
type ControlGroupInput struct {
	ChainingSystem           string                              `json:"chainingSystem"`
	ControlStyle             string                              `json:"controlStyle"`
	IgnoreParentSettingsJSON JSONString[IgnoreParentSettings]    `json:"ignoreParentSettingsJSON"`
	PanelsJSON               JSONString[map[string]ControlPanel] `json:"panelsJSON"`
	ShowApplySelections      bool                                `json:"showApplySelections"`
}

type IgnoreParentSettings struct {
	IgnoreFilters     bool `json:"ignoreFilters"`
	IgnoreQuery       bool `json:"ignoreQuery"`
	IgnoreTimerange   bool `json:"ignoreTimerange"`
	IgnoreValidations bool `json:"ignoreValidations"`
}

// ControlPanel is one entry of controlGroupInput.panelsJSON.
type ControlPanel struct {
	Grow          bool          `json:"grow"`
	Order         int           `json:"order"`
	Type          string        `json:"type"`
	Width         string        `json:"width"`
	ExplicitInput ExplicitInput `json:"explicitInput"`
}

// ExplicitInput is implemented by every control kind's input block.
type ExplicitInput interface {
	controlID() string
}

type ControlBase struct {
	ID           string         `json:"id"`
	Title        string         `json:"title,omitempty"`
	Enhancements map[string]any `json:"enhancements"`
}

func (c ControlBase) controlID() string { return c.ID }

type OptionsListInput struct {
	ControlBase
	DataViewID      string `json:"dataViewId"`
	FieldName       string `json:"fieldName"`
	SearchTechnique string `json:"searchTechnique"`
	SingleSelect    bool   `json:"singleSelect,omitempty"`
	Exclude         bool   `json:"exclude,omitempty"`
	RunPastTimeout  bool   `json:"runPastTimeout,omitempty"`
	SelectedOptions []any  `json:"selectedOptions"`
}

type RangeSliderInput struct {
	ControlBase
	DataViewID string   `json:"dataViewId"`
	FieldName  string   `json:"fieldName"`
	Step       *float64 `json:"step,omitempty"`
}

type TimeSliderInput struct {
	ControlBase
	TimesliceStartAsPercentageOfTimeRange *float64 `json:"timesliceStartAsPercentageOfTimeRange,omitempty"`
	TimesliceEndAsPercentageOfTimeRange   *float64 `json:"timesliceEndAsPercentageOfTimeRange,omitempty"`
}

type ESQLControlInput struct {
	ControlBase
	ControlType      string   `json:"controlType"`
	VariableName     string   `json:"variableName"`
	VariableType     string   `json:"variableType"`
	ESQLQuery        string   `json:"esqlQuery"`
	AvailableOptions []string `json:"availableOptions"`
	SelectedOptions  []string `json:"selectedOptions"`
	SingleSelect     bool     `json:"singleSelect"`
}
