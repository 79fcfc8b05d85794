package kbn

import (
	"bytes"
	"encoding/json"
)

// JSONString holds a sub-document that the platform stores as a JSON string
// inside the enclosing JSON document. Marshalling encodes Value and then
// encodes the result as a string, so nested stringified documents are
// escaped exactly once per level.
type JSONString[T any] struct {
	Value T
}

// Stringify wraps v for embedding as a JSON string.
func Stringify[T any](v T) JSONString[T] {
	return JSONString[T]{Value: v}
}

func (s JSONString[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.Value); err != nil {
		return nil, err
	}
	return json.Marshal(string(bytes.TrimRight(buf.Bytes(), "\n")))
}

func (s *JSONString[T]) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return json.Unmarshal([]byte(str), &s.Value)
}
