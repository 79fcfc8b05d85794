package config

import (
	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/report"
)

// Query languages.
const (
	KQL    = "kql"
	Lucene = "lucene"
	ESQL   = "esql"
)

// Query is a KQL, Lucene or ES|QL query. A bare string decodes as ES|QL;
// a mapping must carry exactly one of kql, lucene or esql.
type Query struct {
	Language string
	Text     string
}

func NewKQL(text string) *Query    { return &Query{Language: KQL, Text: text} }
func NewLucene(text string) *Query { return &Query{Language: Lucene, Text: text} }
func NewESQL(text string) *Query   { return &Query{Language: ESQL, Text: text} }

func (q *Query) UnmarshalYAML(node *yaml.Node) error {
	node = resolve(node)
	if node.Kind == yaml.ScalarNode && !isNull(node) {
		*q = Query{Language: ESQL, Text: node.Value}
		return nil
	}
	var raw struct {
		KQL    *string `yaml:"kql"`
		Lucene *string `yaml:"lucene"`
		ESQL   *string `yaml:"esql"`
	}
	if err := decodeMapping(node, &raw); err != nil {
		return err
	}
	n := 0
	for lang, text := range map[string]*string{KQL: raw.KQL, Lucene: raw.Lucene, ESQL: raw.ESQL} {
		if text != nil {
			n++
			*q = Query{Language: lang, Text: *text}
		}
	}
	if n != 1 {
		return report.Configf("", "query must set exactly one of kql, lucene or esql")
	}
	return nil
}

func (q Query) MarshalYAML() (any, error) {
	return map[string]string{q.Language: q.Text}, nil
}
