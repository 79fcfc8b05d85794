// Package schema validates compiled dashboards against the embedded JSON
// Schema of the saved-object envelope and reflects a JSON Schema of the
// authored YAML.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed all:schemas
var schemaFS embed.FS

const (
	rootSchema     = "kbn-dashboard.schema.json"
	authoredSchema = "kbdash-authored.schema.json"
)

// SchemaError represents a single schema validation error.
type SchemaError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e SchemaError) String() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// SchemaValidator validates compiled dashboard documents.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator creates a new validator with the embedded schemas loaded.
func NewSchemaValidator() (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()

	err := fs.WalkDir(schemaFS, "schemas", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		data, err := schemaFS.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read embedded schema %s", path)
		}
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
		if err != nil {
			return errors.Wrapf(err, "parse embedded schema %s", path)
		}
		id := strings.TrimPrefix(path, "schemas/")
		if err := c.AddResource(id, doc); err != nil {
			return errors.Wrapf(err, "add schema resource %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "load embedded schemas")
	}

	schema, err := c.Compile(rootSchema)
	if err != nil {
		return nil, errors.Wrap(err, "compile root schema")
	}
	return &SchemaValidator{schema: schema}, nil
}

// NewAuthoredValidator creates a validator for authored dashboard files from
// the reflected Authored schema.
func NewAuthoredValidator() (*SchemaValidator, error) {
	data, err := GenerateJSONSchema()
	if err != nil {
		return nil, errors.Wrap(err, "generate authored schema")
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return nil, errors.Wrap(err, "parse authored schema")
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(authoredSchema, doc); err != nil {
		return nil, errors.Wrapf(err, "add schema resource %s", authoredSchema)
	}
	schema, err := c.Compile(authoredSchema)
	if err != nil {
		return nil, errors.Wrap(err, "compile authored schema")
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate validates a compiled value by encoding it first.
func (v *SchemaValidator) Validate(compiled any) []SchemaError {
	data, err := json.Marshal(compiled)
	if err != nil {
		return []SchemaError{{Message: fmt.Sprintf("encode document: %v", err)}}
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return []SchemaError{{Message: fmt.Sprintf("decode document: %v", err)}}
	}
	return v.ValidateDocument(doc)
}

// ValidateDocument validates an already-parsed JSON document against the schema.
func (v *SchemaValidator) ValidateDocument(doc any) []SchemaError {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []SchemaError{{Message: err.Error()}}
	}
	return collectErrors(ve)
}

// collectErrors recursively collects all leaf validation errors from a ValidationError.
func collectErrors(ve *jsonschema.ValidationError) []SchemaError {
	if len(ve.Causes) > 0 {
		var out []SchemaError
		for _, cause := range ve.Causes {
			out = append(out, collectErrors(cause)...)
		}
		return out
	}

	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	msg := ve.Error()
	if msg == "" {
		return nil
	}
	return []SchemaError{{Path: path, Message: msg}}
}
