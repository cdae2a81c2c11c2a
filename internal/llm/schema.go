package llm

import (
	"fmt"
	"reflect"

	"github.com/eino-contrib/jsonschema"
)

// schemaReflector inlines nested types and only marks fields tagged
// jsonschema:"required" as required.
var schemaReflector = &jsonschema.Reflector{
	Anonymous:                  true,
	DoNotReference:             true,
	AllowAdditionalProperties:  true,
	RequiredFromJSONSchemaTags: true,
}

// SchemaFor builds the JSON Schema sent as the Gemini response schema for
// target, which must be a struct or a pointer to one.
func SchemaFor(target any) (*jsonschema.Schema, error) {
	t := reflect.TypeOf(target)
	if t == nil {
		return nil, fmt.Errorf("response schema: nil target")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("response schema: %s is not a struct", t)
	}

	s := schemaReflector.ReflectFromType(t)
	// Gemini rejects the $schema keyword
	s.Version = ""
	return s, nil
}
