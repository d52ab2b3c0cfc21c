package verdict

import (
	"fmt"

	"github.com/xraph/verdict/definition"
)

// ValidateDefinitions checks every identity and resource definition
// against its meta-schema, checks type name uniqueness, and checks that
// every declared parent and child type has a resource definition of its
// own. It is exhaustive rather than fail-fast: every problem found is
// reported. All definition errors are critical.
//
// A definition that fails its meta-schema is excluded from the
// uniqueness check, and a schema-invalid resource definition does not
// contribute its type to the set that parent/child references are
// resolved against.
func ValidateDefinitions(identityDefs []definition.Identity, resourceDefs []definition.Resource, validator SchemaValidator) []DefinitionError {
	errs := []DefinitionError{}

	idSchema := definition.IdentitySchema()
	idTypes := map[string]bool{}
	for _, idDef := range identityDefs {
		doc, derr := definitionDocument(idDef)
		if derr != nil {
			errs = append(errs, DefinitionError{
				Message:        fmt.Sprintf("Identity definition schema was not valid. Schema Error: %s", derr),
				Critical:       true,
				DefinitionType: "identity",
				Definition:     idDef,
			})
			continue
		}
		if verr := validator.Validate(idSchema, doc); verr != nil {
			errs = append(errs, DefinitionError{
				Message:        fmt.Sprintf("Identity definition schema was not valid. Schema Error: %s", verr),
				Critical:       true,
				DefinitionType: "identity",
				Definition:     doc,
			})
			continue
		}
		if idTypes[idDef.IdentityType] {
			errs = append(errs, DefinitionError{
				Message:        fmt.Sprintf("Identity types must be unique. '%s' is present more than once.", idDef.IdentityType),
				Critical:       true,
				DefinitionType: "identity",
				Definition:     doc,
			})
		}
		idTypes[idDef.IdentityType] = true
	}

	rSchema := definition.ResourceSchema()
	rTypes := map[string]bool{}
	rDocs := make([]any, len(resourceDefs))
	for i, rDef := range resourceDefs {
		doc, derr := definitionDocument(rDef)
		if derr != nil {
			errs = append(errs, DefinitionError{
				Message:        fmt.Sprintf("Resource definition was not valid. Schema Error: %s", derr),
				Critical:       true,
				DefinitionType: "resource",
				Definition:     rDef,
			})
			rDocs[i] = rDef
			continue
		}
		rDocs[i] = doc
		if verr := validator.Validate(rSchema, doc); verr != nil {
			errs = append(errs, DefinitionError{
				Message:        fmt.Sprintf("Resource definition was not valid. Schema Error: %s", verr),
				Critical:       true,
				DefinitionType: "resource",
				Definition:     doc,
			})
			continue
		}
		if rTypes[rDef.ResourceType] {
			errs = append(errs, DefinitionError{
				Message:        fmt.Sprintf("Resource types must be unique. '%s' is present more than once.", rDef.ResourceType),
				Critical:       true,
				DefinitionType: "resource",
				Definition:     doc,
			})
		}
		rTypes[rDef.ResourceType] = true
	}

	// Hierarchy references are resolved against schema-valid resource
	// types only, but every definition's references are checked.
	for i, rDef := range resourceDefs {
		for _, pType := range rDef.ParentTypes {
			if !rTypes[pType] {
				errs = append(errs, DefinitionError{
					Message:        fmt.Sprintf("Parent type '%s' does not have a corresponding resource definition.", pType),
					Critical:       true,
					DefinitionType: "resource",
					Definition:     rDocs[i],
				})
			}
		}
		for _, cType := range rDef.ChildTypes {
			if !rTypes[cType] {
				errs = append(errs, DefinitionError{
					Message:        fmt.Sprintf("Child type '%s' does not have a corresponding resource definition.", cType),
					Critical:       true,
					DefinitionType: "resource",
					Definition:     rDocs[i],
				})
			}
		}
	}

	return errs
}

// ValidateGrants checks every grant against the generated grant schema.
// Invalid grants are all reported; every grant error is critical.
func ValidateGrants(grants []Grant, grantSchema map[string]any, validator SchemaValidator) []GrantError {
	errs := []GrantError{}
	for _, grant := range grants {
		doc, derr := grantDocument(grant)
		if derr != nil {
			errs = append(errs, GrantError{
				Message:  fmt.Sprintf("The grant is not valid. Schema Error: %s", derr),
				Critical: true,
				Grant:    grant,
			})
			continue
		}
		if verr := validator.Validate(grantSchema, doc); verr != nil {
			errs = append(errs, GrantError{
				Message:  fmt.Sprintf("The grant is not valid. Schema Error: %s", verr),
				Critical: true,
				Grant:    doc,
			})
		}
	}
	return errs
}

// ValidateRequest checks the request against the generated request
// schema. A request error is always critical.
func ValidateRequest(req *Request, requestSchema map[string]any, validator SchemaValidator) []RequestError {
	doc, derr := requestDocument(req)
	if derr != nil {
		return []RequestError{{
			Message:  fmt.Sprintf("The request is not valid for the request schema: %s", derr),
			Critical: true,
		}}
	}
	if verr := validator.Validate(requestSchema, doc); verr != nil {
		return []RequestError{{
			Message:  fmt.Sprintf("The request is not valid for the request schema: %s", verr),
			Critical: true,
		}}
	}
	return []RequestError{}
}

// definitionDocument normalizes a definition to its wire form with nil
// slices lowered to empty arrays.
func definitionDocument(def any) (map[string]any, error) {
	doc, err := toDocument(def)
	if err != nil {
		return nil, err
	}
	m := doc.(map[string]any)
	for _, key := range []string{"actions", "parent_types", "child_types"} {
		if v, ok := m[key]; ok && v == nil {
			m[key] = []any{}
		}
	}
	return m, nil
}
