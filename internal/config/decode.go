package config

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/foundry-zero/kbdash/internal/report"
)

var unmarshalerType = reflect.TypeFor[yaml.Unmarshaler]()

// decodeMapping decodes a mapping node into one or more struct targets.
// Each key must match a yaml-tagged field of some target; unknown keys are
// rejected. Errors are rooted at the offending key.
func decodeMapping(node *yaml.Node, targets ...any) error {
	node = resolve(node)
	if node.Kind != yaml.MappingNode {
		return report.Configf("", "expected a mapping, got %s", kindName(node))
	}

	fields := make(map[string]reflect.Value)
	for _, t := range targets {
		v := reflect.ValueOf(t)
		if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
			return errors.AssertionFailedf("decode target %T is not a struct pointer", t)
		}
		collectFields(v.Elem(), fields)
	}

	pairs, err := mappingPairs(node)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		field, ok := fields[p.key]
		if !ok {
			return report.Configf(p.key, "unknown field %q", p.key)
		}
		if err := decodeValue(p.value, field); err != nil {
			return report.AtPath(p.key, err)
		}
	}
	return nil
}

// collectFields indexes the settable fields of v by yaml key. Inline struct
// fields are flattened; fields tagged "-" are skipped.
func collectFields(v reflect.Value, into map[string]reflect.Value) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("yaml"), ",")
		if name == "-" {
			continue
		}
		if slices.Contains(strings.Split(opts, ","), "inline") {
			if sf.Type.Kind() == reflect.Struct {
				collectFields(v.Field(i), into)
			}
			continue
		}
		if name == "" {
			name = strings.ToLower(sf.Name)
		}
		into[name] = v.Field(i)
	}
}

type pair struct {
	key   string
	value *yaml.Node
}

// mappingPairs flattens a mapping, expanding merge keys. Explicit keys
// override merged ones.
func mappingPairs(node *yaml.Node) ([]pair, error) {
	var merged, explicit []pair
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, report.Configf("", "line %d: mapping keys must be scalars", k.Line)
		}
		if k.Tag == "!!merge" || k.Value == "<<" {
			srcs := []*yaml.Node{v}
			if rv := resolve(v); rv.Kind == yaml.SequenceNode {
				srcs = rv.Content
			}
			for _, src := range srcs {
				src = resolve(src)
				if src.Kind != yaml.MappingNode {
					return nil, report.Configf("<<", "merge value must be a mapping")
				}
				ps, err := mappingPairs(src)
				if err != nil {
					return nil, err
				}
				merged = append(merged, ps...)
			}
			continue
		}
		explicit = append(explicit, pair{key: k.Value, value: v})
	}

	seen := make(map[string]bool, len(explicit))
	out := make([]pair, 0, len(merged)+len(explicit))
	for _, p := range explicit {
		if seen[p.key] {
			return nil, report.Configf(p.key, "duplicate key %q", p.key)
		}
		seen[p.key] = true
	}
	for _, p := range merged {
		if !seen[p.key] {
			seen[p.key] = true
			out = append(out, p)
		}
	}
	return append(out, explicit...), nil
}

// decodeValue decodes node into the addressable value v. Unmarshalers are
// called directly, sequences are decoded item by item so that errors carry
// their index, and plain structs are decoded strictly.
func decodeValue(node *yaml.Node, v reflect.Value) error {
	node = resolve(node)

	if v.CanAddr() && v.Addr().Type().Implements(unmarshalerType) {
		return v.Addr().Interface().(yaml.Unmarshaler).UnmarshalYAML(node)
	}

	switch v.Kind() {
	case reflect.Pointer:
		if isNull(node) {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		elem := reflect.New(v.Type().Elem())
		if err := decodeValue(node, elem.Elem()); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	case reflect.Slice:
		if isNull(node) {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		if node.Kind != yaml.SequenceNode {
			return report.Configf("", "expected a list, got %s", kindName(node))
		}
		out := reflect.MakeSlice(v.Type(), len(node.Content), len(node.Content))
		for i, item := range node.Content {
			if err := decodeValue(item, out.Index(i)); err != nil {
				return report.AtPath(fmt.Sprintf("[%d]", i), err)
			}
		}
		v.Set(out)
		return nil
	case reflect.Struct:
		return decodeMapping(node, v.Addr().Interface())
	}
	return decodeScalar(node, v.Addr().Interface())
}

// decodeScalar hands leaf values and free-form maps to yaml.v3 and converts
// its type errors into configuration errors.
func decodeScalar(node *yaml.Node, out any) error {
	if err := node.Decode(out); err != nil {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			return report.Configf("", "%s", strings.Join(te.Errors, "; "))
		}
		return report.Configf("", "%v", err)
	}
	return nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node != nil && node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return resolve(node.Content[0])
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		if isNull(node) {
			return "null"
		}
		return fmt.Sprintf("%q", node.Value)
	default:
		return "an unexpected node"
	}
}

// keys returns the set of keys present in a mapping node, merge keys
// included.
func keys(node *yaml.Node) (map[string]bool, error) {
	node = resolve(node)
	if node.Kind != yaml.MappingNode {
		return nil, report.Configf("", "expected a mapping, got %s", kindName(node))
	}
	pairs, err := mappingPairs(node)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		set[p.key] = true
	}
	return set, nil
}

// scalarAt returns the string value at key in a mapping node, or "".
func scalarAt(node *yaml.Node, key string) (string, error) {
	node = resolve(node)
	if node.Kind != yaml.MappingNode {
		return "", report.Configf("", "expected a mapping, got %s", kindName(node))
	}
	pairs, err := mappingPairs(node)
	if err != nil {
		return "", err
	}
	for _, p := range pairs {
		if p.key != key {
			continue
		}
		v := resolve(p.value)
		if v.Kind != yaml.ScalarNode || isNull(v) {
			return "", report.Configf(key, "expected a string, got %s", kindName(v))
		}
		return v.Value, nil
	}
	return "", nil
}

// allowOnly rejects keys outside common and allowed for a variant.
func allowOnly(present map[string]bool, variant string, common, allowed []string) error {
	bad := make([]string, 0)
	for k := range present {
		if !slices.Contains(common, k) && !slices.Contains(allowed, k) {
			bad = append(bad, k)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	slices.Sort(bad)
	return report.Configf(bad[0], "field %q is not valid for %s", bad[0], variant)
}

// oneOf validates an enum value. The empty string is accepted as unset.
func oneOf(path, value string, allowed ...string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return report.Configf(path, "invalid value %q, expected one of %s", value, strings.Join(allowed, ", "))
}

type enum struct {
	path    string
	value   string
	allowed []string
}

func checkEnums(checks ...enum) error {
	for _, c := range checks {
		if err := oneOf(c.path, c.value, c.allowed...); err != nil {
			return err
		}
	}
	return nil
}

// mergeNodes encodes each part and concatenates the resulting mappings. It
// backs MarshalYAML for unions whose variants share key names.
func mergeNodes(parts ...any) (*yaml.Node, error) {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, part := range parts {
		if part == nil || (reflect.ValueOf(part).Kind() == reflect.Pointer && reflect.ValueOf(part).IsNil()) {
			continue
		}
		var n yaml.Node
		if err := n.Encode(part); err != nil {
			return nil, err
		}
		if n.Kind != yaml.MappingNode {
			return nil, errors.AssertionFailedf("%T does not encode to a mapping", part)
		}
		out.Content = append(out.Content, n.Content...)
	}
	return out, nil
}

func reflectValue(ptr any) reflect.Value {
	return reflect.ValueOf(ptr).Elem()
}
