package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// annotationSetSchema is the wire contract of annotationData: one array of shapes per image.
const annotationSetSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "maxItems": 3,
  "items": {
    "type": "array",
    "items": {
      "type": "object",
      "required": ["type", "x", "y"],
      "properties": {
        "type":        {"enum": ["rectangle", "square", "circle"]},
        "x":           {"type": "number", "minimum": 0},
        "y":           {"type": "number", "minimum": 0},
        "width":       {"type": "number"},
        "height":      {"type": "number"},
        "radius":      {"type": "number"},
        "stroke":      {"type": "string", "pattern": "^#?[0-9A-Fa-f]{6}$"},
        "strokeWidth": {"type": "number", "minimum": 0}
      },
      "if":   {"properties": {"type": {"const": "circle"}}},
      "then": {
        "required": ["radius"],
        "properties": {"radius": {"exclusiveMinimum": 0}}
      },
      "else": {
        "required": ["width", "height"],
        "properties": {
          "width":  {"exclusiveMinimum": 0},
          "height": {"exclusiveMinimum": 0}
        }
      }
    }
  }
}`

var annotationSchema = jsonschema.MustCompileString("annotation-set.json", annotationSetSchema)

// AnnotationSet validates raw annotationData against the wire schema and decodes it.
// An absent or null payload is an empty set.
func AnnotationSet(raw json.RawMessage) (entity.AnnotationSet, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return entity.AnnotationSet{}, nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.Validation("annotationData is not valid JSON")
	}

	if err := annotationSchema.Validate(doc); err != nil {
		return nil, errs.Validation("annotationData: %s", schemaMessage(err))
	}

	var set entity.AnnotationSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("validate - AnnotationSet - json.Unmarshal: %w", err)
	}

	return set, nil
}

// schemaMessage reports the deepest failing location, which is the most specific one.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	if leaf.InstanceLocation == "" {
		return leaf.Message
	}
	return fmt.Sprintf("%s: %s", leaf.InstanceLocation, leaf.Message)
}
