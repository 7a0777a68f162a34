package catalogpack

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://wordspark-catalog-pack.json"

// packSchema describes the on-disk JSON format of a catalog pack.
var packSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"format_version": map[string]any{
			"type":    "string",
			"pattern": `^v[0-9]+(\.[0-9]+){0,2}$`,
		},
		"exported_at": map[string]any{"type": "string"},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":            map[string]any{"type": "string", "minLength": 1},
					"name":          map[string]any{"type": "string", "minLength": 1},
					"image_ref":     map[string]any{"type": "string"},
					"pronunciation": map[string]any{"type": "string"},
					"tags": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"difficulty": map[string]any{
						"type": "string",
						"enum": []any{"", "easy", "medium", "hard"},
					},
					"category": map[string]any{"type": "string"},
					"notes":    map[string]any{"type": "string"},
				},
				"required": []any{"id", "name"},
			},
		},
		"collections": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":          map[string]any{"type": "string"},
					"name":        map[string]any{"type": "string", "minLength": 1},
					"description": map[string]any{"type": "string"},
					"category":    map[string]any{"type": "string"},
					"item_ids": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"practice_mode": map[string]any{
						"type": "string",
						"enum": []any{"", "sequential", "random", "adaptive"},
					},
					"active": map[string]any{"type": "boolean"},
				},
				"required": []any{"name", "item_ids"},
			},
		},
	},
	"required": []any{"format_version", "items"},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// compiledSchema compiles packSchema on first use.
func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants plain decoded JSON, not Go ints.
		raw, err := json.Marshal(packSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
