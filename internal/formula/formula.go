// Package formula lowers authored formula trees into formula, math and
// helper aggregation columns.
//
// The formula string is rendered once; every operator node records its
// location in that string while it is being emitted. Locations count UTF-16
// code units, as the platform's formula editor does.
package formula

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/foundry-zero/kbdash/internal/agg"
	"github.com/foundry-zero/kbdash/internal/config"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/query"
	"github.com/foundry-zero/kbdash/internal/report"
)

// Entry is one compiled column with its id.
type Entry struct {
	ID     string
	Column kbn.Column
}

// Result is a compiled formula. Columns holds the formula column first,
// then one helper per aggregation call, then the math column if any.
type Result struct {
	Formula string
	Columns []Entry
}

var symbols = map[string]string{
	config.OpAdd:      "+",
	config.OpSubtract: "-",
	config.OpMultiply: "*",
	config.OpDivide:   "/",
}

func precedence(op string) int {
	if op == config.OpMultiply || op == config.OpDivide {
		return 2
	}
	return 1
}

// Render returns the canonical formula string of expr.
func Render(expr config.FormulaExpr) (string, error) {
	em := &emitter{id: "render"}
	if _, err := em.emit(expr, false); err != nil {
		return "", err
	}
	return em.b.String(), nil
}

// Compile lowers expr into columns. id is the formula column id; helper and
// math columns derive their ids from it. label overrides the default label,
// the formula string.
func Compile(id, label string, expr config.FormulaExpr, format *kbn.Format) (Result, error) {
	em := &emitter{id: id}
	ast, err := em.emit(expr, false)
	if err != nil {
		return Result{}, err
	}
	text := em.b.String()

	custom := label != ""
	if !custom {
		label = text
	}
	part := "Part of " + label

	formulaCol := kbn.Column{
		Label:         label,
		DataType:      "number",
		OperationType: "formula",
		Scale:         "ratio",
		CustomLabel:   custom,
		Params: &kbn.ColumnParams{
			Formula:         text,
			IsFormulaBroken: boolPtr(false),
			Format:          format,
		},
	}

	res := Result{Formula: text, Columns: []Entry{{ID: id}}}
	helperIDs := make([]string, len(em.helpers))
	for i, h := range em.helpers {
		h.col.Label = part
		h.col.CustomLabel = true
		res.Columns = append(res.Columns, Entry{ID: h.id, Column: h.col})
		helperIDs[i] = h.id
	}

	if ref, ok := ast.(string); ok && expr.Agg != nil {
		formulaCol.References = []string{ref}
	} else {
		mathID := fmt.Sprintf("%sX%d", id, len(em.helpers))
		res.Columns = append(res.Columns, Entry{ID: mathID, Column: kbn.Column{
			Label:         part,
			DataType:      "number",
			OperationType: "math",
			Scale:         "ratio",
			CustomLabel:   true,
			Params:        &kbn.ColumnParams{TinymathAst: ast},
			References:    helperIDs,
		}})
		formulaCol.References = []string{mathID}
	}
	res.Columns[0].Column = formulaCol
	return res, nil
}

type helper struct {
	id  string
	col kbn.Column
}

type emitter struct {
	id      string
	b       strings.Builder
	pos     int
	helpers []helper
}

func (em *emitter) write(s string) {
	em.b.WriteString(s)
	em.pos += utf16Len(s)
}

// emit renders e and returns its TinyMath node: a number, a helper column
// id or a function node.
func (em *emitter) emit(e config.FormulaExpr, wrap bool) (any, error) {
	if wrap {
		em.write("(")
		defer em.write(")")
	}

	switch {
	case e.Number != nil:
		em.write(agg.Number(*e.Number))
		return *e.Number, nil

	case e.Agg != nil:
		return em.call(*e.Agg)

	case e.Op != "":
		sym, ok := symbols[e.Op]
		if !ok {
			return nil, report.Formulaf("", "unknown operator %q", e.Op)
		}
		if len(e.Args) < 2 {
			return nil, report.Formulaf(e.Op, "%s requires at least two operands, got %d", e.Op, len(e.Args))
		}
		start, startByte := em.pos, em.b.Len()
		left, err := em.operand(e.Op, 0, e.Args[0])
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(e.Args); i++ {
			em.write(" " + sym + " ")
			right, err := em.operand(e.Op, i, e.Args[i])
			if err != nil {
				return nil, err
			}
			left = &kbn.TinymathFunction{
				Type:     "function",
				Name:     e.Op,
				Args:     []any{left, right},
				Location: kbn.TinymathLocation{Min: start, Max: em.pos},
				Text:     em.b.String()[startByte:],
			}
		}
		return left, nil
	}
	return nil, report.Formulaf("", "empty formula node")
}

func (em *emitter) operand(op string, i int, arg config.FormulaExpr) (any, error) {
	wrap := false
	if arg.Op != "" {
		pp, cp := precedence(op), precedence(arg.Op)
		wrap = cp < pp || (i > 0 && cp == pp && (op == config.OpSubtract || op == config.OpDivide))
	}
	node, err := em.emit(arg, wrap)
	if err != nil {
		return nil, report.AtPath(fmt.Sprintf("%s[%d]", op, i), err)
	}
	return node, nil
}

func (em *emitter) call(a config.FormulaAgg) (any, error) {
	info, ok := agg.Lookup(a.Name)
	if !ok {
		return nil, report.Formulaf(a.Name, "unknown aggregation %q", a.Name)
	}
	if a.Field == "" && !info.FieldOptional {
		return nil, report.Formulaf(a.Name, "%s requires a field", a.Name)
	}

	var args []string
	if a.Field != "" {
		args = append(args, a.Field)
	}
	switch info.Name {
	case "percentile":
		if a.Percentile == nil {
			return nil, report.Formulaf(a.Name, "percentile requires a percentile argument")
		}
		args = append(args, "percentile="+agg.Number(*a.Percentile))
	case "percentile_rank":
		if a.Rank == nil {
			return nil, report.Formulaf(a.Name, "percentile_rank requires a rank argument")
		}
		args = append(args, "value="+agg.Number(*a.Rank))
	}
	filter, err := query.Ptr(a.Filter)
	if err != nil {
		return nil, report.Formulaf(a.Name, "aggregation filter must be kql or lucene")
	}
	if filter != nil {
		key := "kql"
		if filter.Language == query.LangLucene {
			key = "lucene"
		}
		args = append(args, fmt.Sprintf("%s='%s'", key, quote(filter.Query)))
	}
	em.write(info.Name + "(" + strings.Join(args, ", ") + ")")

	col := agg.Column(info, agg.Params{
		Field:      a.Field,
		Percentile: a.Percentile,
		Rank:       a.Rank,
		Filter:     filter,
	})
	if info.EmptyAsNull {
		col.Params.EmptyAsNull = boolPtr(false)
	}
	id := fmt.Sprintf("%sX%d", em.id, len(em.helpers))
	em.helpers = append(em.helpers, helper{id: id, col: col})
	return id, nil
}

func quote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func boolPtr(v bool) *bool { return &v }
