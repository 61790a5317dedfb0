package feedback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchema accepts either the corrections format or the legacy
// original/edited prediction format, never both.
const payloadSchema = `{
  "type": "object",
  "oneOf": [
    {
      "required": ["request_id", "corrections"],
      "properties": {
        "request_id": {"type": "string", "minLength": 1},
        "corrections": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["name"],
            "properties": {
              "name": {"type": "string", "minLength": 1},
              "value": {"type": ["string", "number", "boolean", "null"]}
            }
          }
        }
      }
    },
    {
      "not": {"required": ["corrections"]},
      "anyOf": [
        {"required": ["job_id"]},
        {"required": ["edited_prediction"]}
      ],
      "properties": {
        "job_id": {"type": "string"},
        "invoice_id": {"type": "string"},
        "original_prediction": {"type": "object"},
        "edited_prediction": {"type": "object"},
        "editor_id": {"type": "string"},
        "notes": {"type": "string"}
      }
    }
  ]
}`

const manualSchema = `{
  "type": "object",
  "required": ["field"],
  "properties": {
    "invoice_id": {"type": "string"},
    "request_id": {"type": "string"},
    "field": {"type": "string", "minLength": 1},
    "detected_text": {"type": "string"},
    "correct_text": {"type": "string"},
    "error_type": {"type": "string"}
  }
}`

func compileSchema(name, src string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validate(schema *jsonschema.Schema, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}
