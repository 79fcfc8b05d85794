// Package query compiles authored queries and filter trees into the
// platform's query and filter records.
package query

import (
	"fmt"

	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/report"
)

// Platform query languages.
const (
	LangKuery  = "kuery"
	LangLucene = "lucene"
)

// Compile returns the platform form of a KQL or Lucene query. A nil query
// compiles to the empty KQL query.
func Compile(q *config.Query) (kbn.Query, error) {
	if q == nil {
		return kbn.Query{Query: "", Language: LangKuery}, nil
	}
	switch q.Language {
	case config.KQL:
		return kbn.Query{Query: q.Text, Language: LangKuery}, nil
	case config.Lucene:
		return kbn.Query{Query: q.Text, Language: LangLucene}, nil
	}
	return kbn.Query{}, report.Configf("", "expected a kql or lucene query, got %s", q.Language)
}

// CompileESQL returns the platform form of an ES|QL query.
func CompileESQL(q *config.Query) (kbn.ESQLQuery, error) {
	if q == nil || q.Language != config.ESQL {
		return kbn.ESQLQuery{}, report.Configf("", "expected an ES|QL query")
	}
	return kbn.ESQLQuery{ESQL: q.Text}, nil
}

// Ptr compiles an optional query into an optional record.
func Ptr(q *config.Query) (*kbn.Query, error) {
	if q == nil {
		return nil, nil
	}
	out, err := Compile(q)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Filters compiles a filter list. Errors are rooted at the filter's index.
func Filters(fs []config.Filter) ([]kbn.Filter, error) {
	out := make([]kbn.Filter, 0, len(fs))
	for i, f := range fs {
		kf, err := Filter(f)
		if err != nil {
			return nil, report.AtPath(fmt.Sprintf("[%d]", i), err)
		}
		out = append(out, kf)
	}
	return out, nil
}

// Filter compiles one filter tree.
func Filter(f config.Filter) (kbn.Filter, error) {
	kf, err := compile(f)
	if err != nil {
		return kbn.Filter{}, err
	}
	kf.State = &kbn.FilterState{Store: "appState"}
	return kf, nil
}

func compile(f config.Filter) (kbn.Filter, error) {
	kind, err := f.Kind()
	if err != nil {
		return kbn.Filter{}, err
	}
	meta := kbn.FilterMeta{
		Alias:    f.Alias,
		Disabled: f.Disabled != nil && *f.Disabled,
		Type:     string(kind),
	}

	switch kind {
	case config.FilterExists:
		meta.Key = f.Exists
		return kbn.Filter{Meta: meta, Query: map[string]any{
			"exists": map[string]any{"field": f.Exists},
		}}, nil

	case config.FilterPhrase:
		meta.Key = f.Field
		meta.Params = map[string]any{"query": f.Equals}
		return kbn.Filter{Meta: meta, Query: map[string]any{
			"match_phrase": map[string]any{f.Field: f.Equals},
		}}, nil

	case config.FilterPhrases:
		meta.Key = f.Field
		meta.Params = f.In
		should := make([]any, len(f.In))
		for i, v := range f.In {
			should[i] = map[string]any{"match_phrase": map[string]any{f.Field: v}}
		}
		return kbn.Filter{Meta: meta, Query: map[string]any{
			"bool": map[string]any{"minimum_should_match": 1, "should": should},
		}}, nil

	case config.FilterRange:
		meta.Key = f.Field
		bounds := map[string]any{}
		for op, v := range map[string]any{"gte": f.GTE, "gt": f.GT, "lte": f.LTE, "lt": f.LT} {
			if v != nil {
				bounds[op] = v
			}
		}
		meta.Params = bounds
		return kbn.Filter{Meta: meta, Query: map[string]any{
			"range": map[string]any{f.Field: bounds},
		}}, nil

	case config.FilterCustom:
		meta.Key = "query"
		return kbn.Filter{Meta: meta, Query: f.DSL}, nil

	case config.FilterAnd, config.FilterOr:
		subs, rel, path := f.And, "AND", "and"
		if kind == config.FilterOr {
			subs, rel, path = f.Or, "OR", "or"
		}
		params := make([]kbn.Filter, len(subs))
		for i, s := range subs {
			sf, err := compile(s)
			if err != nil {
				return kbn.Filter{}, report.AtPath(fmt.Sprintf("%s[%d]", path, i), err)
			}
			params[i] = sf
		}
		meta.Type = "combined"
		meta.Relation = rel
		meta.Params = params
		return kbn.Filter{Meta: meta}, nil

	case config.FilterNot:
		inner, err := compile(*f.Not)
		if err != nil {
			return kbn.Filter{}, report.AtPath("not", err)
		}
		inner.Meta.Negate = !inner.Meta.Negate
		if f.Alias != "" {
			inner.Meta.Alias = f.Alias
		}
		if f.Disabled != nil {
			inner.Meta.Disabled = *f.Disabled
		}
		return inner, nil
	}
	return kbn.Filter{}, report.Unsupportedf("", "filter kind %q", kind)
}
