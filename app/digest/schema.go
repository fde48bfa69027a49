package digest

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// canonicalSchema describes a document already in canonical form, which is
// what a curated export looks like.
const canonicalSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["categories"],
  "properties": {
    "type": {"type": "string"},
    "title": {"type": "string"},
    "date": {"type": ["number", "null"]},
    "briefing_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "categories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "content"],
        "properties": {
          "title": {"type": "string"},
          "topic": {"type": "string"},
          "content": {"type": "array"}
        }
      }
    }
  }
}`

var canonicalSchemaLoader = gojsonschema.NewStringLoader(canonicalSchema)

// SchemaError lists every violation found in a document.
type SchemaError struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("document does not match canonical schema:")
	for _, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", fe.Field, fe.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// ValidateCanonical checks that data is a canonical feed document.
func ValidateCanonical(data []byte) error {
	result, err := gojsonschema.Validate(canonicalSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to validate document: %w", err)
	}

	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return schemaErr
}
