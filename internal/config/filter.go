package config

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/report"
)

// FilterKind discriminates Filter by shape.
type FilterKind string

const (
	FilterExists  FilterKind = "exists"
	FilterPhrase  FilterKind = "phrase"
	FilterPhrases FilterKind = "phrases"
	FilterRange   FilterKind = "range"
	FilterCustom  FilterKind = "custom"
	FilterAnd     FilterKind = "and"
	FilterOr      FilterKind = "or"
	FilterNot     FilterKind = "not"
)

// Filter is a dashboard or chart filter. Exactly one discriminating key
// selects its kind: exists, equals, in, a range bound, dsl, and, or, not.
type Filter struct {
	Exists string         `yaml:"exists,omitempty"`
	Field  string         `yaml:"field,omitempty"`
	Equals any            `yaml:"equals,omitempty"`
	In     []any          `yaml:"in,omitempty"`
	GTE    any            `yaml:"gte,omitempty"`
	GT     any            `yaml:"gt,omitempty"`
	LTE    any            `yaml:"lte,omitempty"`
	LT     any            `yaml:"lt,omitempty"`
	DSL    map[string]any `yaml:"dsl,omitempty"`
	And    []Filter       `yaml:"and,omitempty"`
	Or     []Filter       `yaml:"or,omitempty"`
	Not    *Filter        `yaml:"not,omitempty"`

	Alias    string `yaml:"alias,omitempty"`
	Disabled *bool  `yaml:"disabled,omitempty"`
}

var (
	filterModifiers = []string{"alias", "disabled"}
	rangeKeys       = []string{"gte", "gt", "lte", "lt"}
)

// FilterKeys returns the keys a filter of kind k may carry.
func FilterKeys(k FilterKind) []string {
	var keys []string
	switch k {
	case FilterPhrase:
		keys = []string{"field", "equals"}
	case FilterPhrases:
		keys = []string{"field", "in"}
	case FilterRange:
		keys = append([]string{"field"}, rangeKeys...)
	case FilterCustom:
		keys = []string{"dsl"}
	default:
		keys = []string{string(k)}
	}
	return append(keys, filterModifiers...)
}

// filterKind classifies a filter from the set of keys it carries.
func filterKind(has func(string) bool) (FilterKind, error) {
	var found []FilterKind
	for _, c := range []struct {
		key  string
		kind FilterKind
	}{
		{"exists", FilterExists}, {"equals", FilterPhrase}, {"in", FilterPhrases},
		{"dsl", FilterCustom}, {"and", FilterAnd}, {"or", FilterOr}, {"not", FilterNot},
	} {
		if has(c.key) {
			found = append(found, c.kind)
		}
	}
	if slices.ContainsFunc(rangeKeys, has) {
		found = append(found, FilterRange)
	}

	switch len(found) {
	case 0:
		return "", report.Configf("", "filter must set one of exists, equals, in, gte, gt, lte, lt, dsl, and, or, not")
	case 1:
	default:
		names := make([]string, len(found))
		for i, k := range found {
			names[i] = string(k)
		}
		return "", report.Configf("", "ambiguous filter: matches %s", strings.Join(names, ", "))
	}

	kind := found[0]
	needsField := kind == FilterPhrase || kind == FilterPhrases || kind == FilterRange
	switch {
	case needsField && !has("field"):
		return "", report.Configf("field", "%s filter requires a field", kind)
	case !needsField && has("field"):
		return "", report.Configf("field", "field is not valid for a %s filter", kind)
	}
	if kind == FilterRange {
		if has("gt") && has("gte") {
			return "", report.Configf("gt", "range filter cannot set both gt and gte")
		}
		if has("lt") && has("lte") {
			return "", report.Configf("lt", "range filter cannot set both lt and lte")
		}
	}
	return kind, nil
}

// ClassifyFilter returns the kind of a filter given as a raw decoded tree.
func ClassifyFilter(raw map[string]any) (FilterKind, error) {
	return filterKind(func(k string) bool { _, ok := raw[k]; return ok })
}

// Kind returns the kind of f.
func (f Filter) Kind() (FilterKind, error) {
	return filterKind(func(k string) bool {
		switch k {
		case "exists":
			return f.Exists != ""
		case "field":
			return f.Field != ""
		case "equals":
			return f.Equals != nil
		case "in":
			return f.In != nil
		case "gte":
			return f.GTE != nil
		case "gt":
			return f.GT != nil
		case "lte":
			return f.LTE != nil
		case "lt":
			return f.LT != nil
		case "dsl":
			return f.DSL != nil
		case "and":
			return f.And != nil
		case "or":
			return f.Or != nil
		case "not":
			return f.Not != nil
		case "alias":
			return f.Alias != ""
		case "disabled":
			return f.Disabled != nil
		}
		return false
	})
}

func (f *Filter) UnmarshalYAML(node *yaml.Node) error {
	type plain Filter
	present, err := keys(node)
	if err != nil {
		return err
	}
	kind, err := filterKind(func(k string) bool { return present[k] })
	if err != nil {
		return err
	}
	allowed := map[FilterKind][]string{
		FilterExists:  {"exists"},
		FilterPhrase:  {"field", "equals"},
		FilterPhrases: {"field", "in"},
		FilterRange:   append([]string{"field"}, rangeKeys...),
		FilterCustom:  {"dsl"},
		FilterAnd:     {"and"},
		FilterOr:      {"or"},
		FilterNot:     {"not"},
	}[kind]
	if err := allowOnly(present, string(kind)+" filter", filterModifiers, allowed); err != nil {
		return err
	}
	if err := decodeMapping(node, (*plain)(f)); err != nil {
		return err
	}
	switch {
	case kind == FilterExists && f.Exists == "":
		return report.Configf("exists", "exists filter requires a field name")
	case kind == FilterPhrases && len(f.In) == 0:
		return report.Configf("in", "in filter requires at least one value")
	case kind == FilterAnd && len(f.And) == 0:
		return report.Configf("and", "and filter requires at least one filter")
	case kind == FilterOr && len(f.Or) == 0:
		return report.Configf("or", "or filter requires at least one filter")
	case kind == FilterNot && f.Not == nil:
		return report.Configf("not", "not filter requires a filter")
	case kind == FilterCustom && f.DSL == nil:
		return report.Configf("dsl", "dsl filter requires a query")
	}
	return nil
}
