// Package controls compiles the control bar of a dashboard.
package controls

import (
	"fmt"
	"strings"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/defaults"
	"github.com/foundry-zero/kbdash/internal/ids"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/report"
)

// Platform control types.
const (
	TypeOptionsList = "optionsListControl"
	TypeRangeSlider = "rangeSliderControl"
	TypeTimeSlider  = "timeSlider"
	TypeESQL        = "esqlControl"
)

var searchTechniques = map[string]string{
	"prefix":   "prefix",
	"contains": "wildcard",
	"exact":    "exact",
}

// Group compiles the controls and settings of a dashboard into its control
// group. The group is emitted even when there are no controls.
func Group(cs []config.Control, s config.ControlSettings) (*kbn.ControlGroupInput, error) {
	panels := make(map[string]kbn.ControlPanel, len(cs))
	for i, c := range cs {
		id, panel, err := Compile(c, i)
		if err != nil {
			return nil, report.AtPath(fmt.Sprintf("[%d]", i), err)
		}
		if _, dup := panels[id]; dup {
			return nil, report.Configf(fmt.Sprintf("[%d].id", i), "control id %q is used twice", id)
		}
		panels[id] = panel
	}
	g := Settings(s)
	g.PanelsJSON = kbn.Stringify(panels)
	return g, nil
}

// Settings compiles the control-group settings. The authored flags are
// affirmative and the platform's are mostly inverted; an unset flag keeps
// the platform default.
func Settings(s config.ControlSettings) *kbn.ControlGroupInput {
	style := "oneLine"
	if s.LabelPosition == "above" {
		style = "twoLine"
	}
	return &kbn.ControlGroupInput{
		ChainingSystem: defaults.ReturnIf(s.ChainControls, "HIERARCHICAL", "NONE", "HIERARCHICAL"),
		ControlStyle:   style,
		IgnoreParentSettingsJSON: kbn.Stringify(kbn.IgnoreParentSettings{
			IgnoreFilters:     defaults.ReturnIf(s.ApplyGlobalFilters, false, true, false),
			IgnoreQuery:       defaults.ReturnIf(s.ApplyGlobalFilters, false, true, false),
			IgnoreTimerange:   defaults.ReturnIf(s.ApplyGlobalTimerange, false, true, false),
			IgnoreValidations: defaults.ReturnIf(s.IgnoreZeroResults, true, false, false),
		}),
		PanelsJSON:          kbn.Stringify(map[string]kbn.ControlPanel{}),
		ShowApplySelections: defaults.IsTrue(s.ClickToApply),
	}
}

// Compile compiles one control at position order and returns its id.
func Compile(c config.Control, order int) (string, kbn.ControlPanel, error) {
	id := c.ID
	if id == "" {
		id = ids.Random()
	}
	base := kbn.ControlBase{ID: id, Title: c.Label, Enhancements: map[string]any{}}
	panel := kbn.ControlPanel{
		Grow:  defaults.Or(c.Grow, false),
		Order: order,
		Width: defaults.String(&c.Width, "medium"),
	}

	switch c.Type {
	case config.ControlOptions:
		panel.Type = TypeOptionsList
		panel.ExplicitInput = kbn.OptionsListInput{
			ControlBase:     base,
			DataViewID:      c.DataView,
			FieldName:       c.Field,
			SearchTechnique: searchTechniques[defaults.String(&c.MatchTechnique, "prefix")],
			SingleSelect:    defaults.IsTrue(c.SingleSelect),
			Exclude:         defaults.IsTrue(c.Exclude),
			RunPastTimeout:  defaults.IsTrue(c.WaitForResults),
			SelectedOptions: []any{},
		}
	case config.ControlRange:
		panel.Type = TypeRangeSlider
		panel.ExplicitInput = kbn.RangeSliderInput{
			ControlBase: base,
			DataViewID:  c.DataView,
			FieldName:   c.Field,
			Step:        c.Step,
		}
	case config.ControlTime:
		panel.Type = TypeTimeSlider
		panel.Grow = true
		panel.ExplicitInput = kbn.TimeSliderInput{
			ControlBase:                           base,
			TimesliceStartAsPercentageOfTimeRange: c.StartOffset,
			TimesliceEndAsPercentageOfTimeRange:   c.EndOffset,
		}
	case config.ControlESQLStatic, config.ControlESQLQuery:
		panel.Type = TypeESQL
		panel.ExplicitInput = esql(base, c)
	default:
		return "", kbn.ControlPanel{}, report.Unsupportedf("type", "control type %q", c.Type)
	}
	return id, panel, nil
}

func esql(base kbn.ControlBase, c config.Control) kbn.ESQLControlInput {
	in := kbn.ESQLControlInput{
		ControlBase:      base,
		ControlType:      "STATIC_VALUES",
		VariableName:     strings.TrimPrefix(c.VariableName, "?"),
		VariableType:     defaults.String(&c.VariableType, "values"),
		AvailableOptions: []string{},
		SelectedOptions:  []string{},
		SingleSelect:     defaults.Or(c.SingleSelect, true),
	}
	if c.Type == config.ControlESQLQuery {
		in.ControlType = "VALUES_FROM_QUERY"
		in.ESQLQuery = c.Query
	} else {
		in.AvailableOptions = append(in.AvailableOptions, c.Values...)
	}
	switch {
	case c.Default != "":
		in.SelectedOptions = []string{c.Default}
	case len(in.AvailableOptions) > 0:
		in.SelectedOptions = []string{in.AvailableOptions[0]}
	}
	return in
}
