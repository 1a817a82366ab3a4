package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const snapshotSchemaURL = "https://swimlane.local/schema/snapshot.v1.json"

// snapshotSchema checks structure only: field names and JSON types.
// Semantic rules (versions, blank or duplicate ids) stay in Snapshot.Validate.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["columns"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string"},
    "exported_at": {"type": "string"},
    "columns": {"type": "array", "items": {"$ref": "#/$defs/column"}},
    "tasks": {"type": ["array", "null"], "items": {"$ref": "#/$defs/task"}}
  },
  "$defs": {
    "column": {
      "type": "object",
      "required": ["id"],
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string"},
        "title": {"type": "string"},
        "status": {"type": "string"},
        "wip_limit": {"type": "integer"},
        "task_ids": {"type": ["array", "null"], "items": {"type": "string"}}
      }
    },
    "task": {
      "type": "object",
      "required": ["id"],
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string"},
        "title": {"type": "string"},
        "description": {"type": "string"},
        "status": {"type": "string"},
        "priority": {"type": "string"},
        "assignee": {"type": "string"},
        "tags": {"type": ["array", "null"], "items": {"type": "string"}},
        "created_at": {"type": "string"},
        "due_at": {"type": ["string", "null"]}
      }
    }
  }
}`

// SchemaError reports the first structural problem found in a snapshot document.
type SchemaError struct {
	Path    string
	Message string
}

// Error renders the failing JSON pointer and reason.
func (e *SchemaError) Error() string {
	path := strings.TrimSpace(e.Path)
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("snapshot schema: %s: %s", path, e.Message)
}

var compiledSnapshotSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(snapshotSchemaURL, strings.NewReader(snapshotSchema)); err != nil {
		return nil, fmt.Errorf("add snapshot schema: %w", err)
	}
	return compiler.Compile(snapshotSchemaURL)
})

// validateSnapshotDocument checks raw JSON against the snapshot schema.
func validateSnapshotDocument(raw []byte) error {
	schema, err := compiledSnapshotSchema()
	if err != nil {
		return fmt.Errorf("compile snapshot schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return schemaErrorFrom(err)
	}
	return nil
}

func schemaErrorFrom(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &SchemaError{Message: err.Error()}
	}
	if leaf := firstLeafCause(ve); leaf != nil {
		return &SchemaError{Path: leaf.InstanceLocation, Message: leaf.Message}
	}
	return &SchemaError{Path: ve.InstanceLocation, Message: ve.Message}
}

func firstLeafCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	if ve == nil {
		return nil
	}
	if len(ve.Causes) == 0 {
		return ve
	}
	for _, cause := range ve.Causes {
		if leaf := firstLeafCause(cause); leaf != nil {
			return leaf
		}
	}
	return nil
}
