// Package schemaval provides the default JSON Schema validator, built on
// draft 2020-12 compilation.
package schemaval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator validates documents against JSON Schemas. The zero value is
// ready to use and safe for concurrent use; schemas are compiled per
// call so callers may pass a different schema every time.
type Validator struct{}

// New returns a JSON Schema validator.
func New() *Validator {
	return &Validator{}
}

// Validate compiles schema and checks doc against it. Both values are
// round-tripped through JSON first so plain Go structs and typed slices
// are accepted. A nil return means doc conforms; otherwise the error
// lists every violated constraint.
func (v *Validator) Validate(schema, doc any) error {
	schemaDoc, err := normalizeSchema(schema)
	if err != nil {
		return fmt.Errorf("schemaval: normalize schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", schemaDoc); err != nil {
		return fmt.Errorf("schemaval: add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("schemaval: compile schema: %w", err)
	}

	instance, err := normalizeInstance(doc)
	if err != nil {
		return fmt.Errorf("schemaval: normalize instance: %w", err)
	}

	if err := compiled.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s", strings.Join(leafMessages(verr), ", "))
		}
		return err
	}

	return nil
}

// normalizeSchema round-trips through the schema-aware JSON decoder so
// numbers keep full precision during compilation.
func normalizeSchema(schema any) (any, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

// normalizeInstance round-trips through encoding/json so any Go value
// becomes the plain JSON shape the validator expects.
func normalizeInstance(doc any) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// leafMessages flattens a validation error tree into the most specific
// failure messages.
func leafMessages(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		return []string{verr.Error()}
	}
	msgs := []string{}
	for _, cause := range verr.Causes {
		msgs = append(msgs, leafMessages(cause)...)
	}
	return msgs
}
