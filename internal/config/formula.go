package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/agg"
	"github.com/foundry-zero/kbdash/internal/report"
)

// Formula operators.
const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

// FormulaExpr is one node of a formula: a number, an operator over two or
// more operands, or an aggregation call. Exactly one of Number, Op and Agg
// is set.
type FormulaExpr struct {
	Number *float64
	Op     string
	Args   []FormulaExpr
	Agg    *FormulaAgg
}

// FormulaAgg is an aggregation call inside a formula.
type FormulaAgg struct {
	Name       string
	Field      string
	Filter     *Query
	Percentile *float64
	Rank       *float64
}

func isOperator(name string) bool {
	switch name {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

func (e *FormulaExpr) UnmarshalYAML(node *yaml.Node) error {
	node = resolve(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!int" && node.Tag != "!!float" {
			return report.Formulaf("", "expected a number, an operator or an aggregation, got %s", kindName(node))
		}
		v, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return report.Formulaf("", "invalid number %q", node.Value)
		}
		*e = FormulaExpr{Number: &v}
		return nil
	case yaml.MappingNode:
	default:
		return report.Formulaf("", "expected a number, an operator or an aggregation, got %s", kindName(node))
	}

	pairs, err := mappingPairs(node)
	if err != nil {
		return err
	}
	if len(pairs) != 1 {
		return report.Formulaf("", "formula node must have exactly one operator or aggregation key, got %d", len(pairs))
	}
	name, value := pairs[0].key, resolve(pairs[0].value)

	if isOperator(name) {
		if value.Kind != yaml.SequenceNode {
			return report.Formulaf(name, "%s takes a list of operands", name)
		}
		if len(value.Content) < 2 {
			return report.Formulaf(name, "%s requires at least two operands, got %d", name, len(value.Content))
		}
		args := make([]FormulaExpr, len(value.Content))
		for i, item := range value.Content {
			if err := args[i].UnmarshalYAML(item); err != nil {
				return report.AtPath(fmt.Sprintf("%s[%d]", name, i), err)
			}
		}
		*e = FormulaExpr{Op: name, Args: args}
		return nil
	}

	info, ok := agg.Lookup(name)
	if !ok {
		return report.Formulaf(name, "unknown operator or aggregation %q", name)
	}
	leaf, err := decodeFormulaAgg(info, value)
	if err != nil {
		return report.AtPath(name, err)
	}
	*e = FormulaExpr{Agg: leaf}
	return nil
}

func decodeFormulaAgg(info agg.Info, node *yaml.Node) (*FormulaAgg, error) {
	leaf := &FormulaAgg{Name: info.Name}
	switch {
	case isNull(node):
	case node.Kind == yaml.ScalarNode:
		if node.Tag != "!!str" {
			return nil, report.Formulaf("", "field must be a string, got %s", kindName(node))
		}
		leaf.Field = node.Value
	case node.Kind == yaml.MappingNode:
		pairs, err := mappingPairs(node)
		if err != nil {
			return nil, err
		}
		var kql, lucene *string
		for _, p := range pairs {
			v := resolve(p.value)
			switch p.key {
			case "field":
				if v.Kind != yaml.ScalarNode || v.Tag != "!!str" {
					return nil, report.Formulaf("field", "field must be a string, got %s", kindName(v))
				}
				leaf.Field = v.Value
			case "kql", "lucene":
				if v.Kind != yaml.ScalarNode || isNull(v) {
					return nil, report.Formulaf(p.key, "%s filter must be a string", p.key)
				}
				s := v.Value
				if p.key == "kql" {
					kql = &s
				} else {
					lucene = &s
				}
			case "percentile", "rank":
				n, err := strconv.ParseFloat(v.Value, 64)
				if v.Kind != yaml.ScalarNode || err != nil {
					return nil, report.Formulaf(p.key, "%s must be a number", p.key)
				}
				if p.key == "percentile" {
					leaf.Percentile = &n
				} else {
					leaf.Rank = &n
				}
			default:
				return nil, report.Formulaf(p.key, "unknown aggregation argument %q", p.key)
			}
		}
		switch {
		case kql != nil && lucene != nil:
			return nil, report.Formulaf("", "aggregation filter must be either kql or lucene, not both")
		case kql != nil:
			leaf.Filter = NewKQL(*kql)
		case lucene != nil:
			leaf.Filter = NewLucene(*lucene)
		}
	default:
		return nil, report.Formulaf("", "aggregation takes a field name or an argument mapping, got %s", kindName(node))
	}

	if leaf.Field == "" && !info.FieldOptional {
		return nil, report.Formulaf("", "%s requires a field", info.Name)
	}
	if info.Name == "percentile" && leaf.Percentile == nil {
		return nil, report.Formulaf("", "percentile requires a percentile argument")
	}
	if info.Name == "percentile_rank" && leaf.Rank == nil {
		return nil, report.Formulaf("", "percentile_rank requires a rank argument")
	}
	return leaf, nil
}

func (e FormulaExpr) MarshalYAML() (any, error) {
	switch {
	case e.Number != nil:
		return *e.Number, nil
	case e.Op != "":
		return map[string][]FormulaExpr{e.Op: e.Args}, nil
	case e.Agg != nil:
		a := e.Agg
		if a.Filter == nil && a.Percentile == nil && a.Rank == nil {
			if a.Field == "" {
				return map[string]any{a.Name: nil}, nil
			}
			return map[string]string{a.Name: a.Field}, nil
		}
		args := map[string]any{}
		if a.Field != "" {
			args["field"] = a.Field
		}
		if a.Filter != nil {
			args[a.Filter.Language] = a.Filter.Text
		}
		if a.Percentile != nil {
			args["percentile"] = *a.Percentile
		}
		if a.Rank != nil {
			args["rank"] = *a.Rank
		}
		return map[string]any{a.Name: args}, nil
	}
	return nil, report.Formulaf("", "empty formula node")
}
