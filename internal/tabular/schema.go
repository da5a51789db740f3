package tabular

import (
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchema describes the two supported payload layouts. The matrix
// shape carries ordered value arrays, the rows shape carries column-keyed
// mappings; both require meta.
const payloadSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "oneOf": [
    {
      "type": "object",
      "required": ["columns", "data", "meta"],
      "properties": {
        "columns": {"type": "array", "items": {"type": "string"}},
        "data": {
          "type": "array",
          "items": {"type": "array", "items": {"type": "string"}}
        },
        "meta": {"$ref": "#/$defs/meta"}
      },
      "additionalProperties": false
    },
    {
      "type": "object",
      "required": ["rows", "meta"],
      "properties": {
        "rows": {
          "type": "array",
          "items": {"type": "object", "additionalProperties": {"type": "string"}}
        },
        "meta": {"$ref": "#/$defs/meta"}
      },
      "additionalProperties": false
    }
  ],
  "$defs": {
    "meta": {
      "type": "object",
      "required": ["filename", "mime", "imported_at"],
      "properties": {
        "filename": {"type": ["string", "null"]},
        "mime": {"type": ["string", "null"]},
        "imported_at": {"type": "string"},
        "nonce": {"type": "integer"},
        "import_id": {"type": "string"},
        "removed": {"type": "boolean"}
      },
      "additionalProperties": false
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// ValidatePayload checks a payload object against the embedded schema before
// it is written to the host field.
func ValidatePayload(payload map[string]any) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("payload.json", strings.NewReader(payloadSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("payload.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("tabular: payload schema: %w", schemaErr)
	}
	if err := compiledSchema.Validate(any(payload)); err != nil {
		return fmt.Errorf("tabular: payload invalid: %w", err)
	}
	return nil
}
