// Package definition holds the identity and resource type definitions
// that shape every grant and request, plus the meta-schemas those
// definitions are validated against.
package definition

// Identity defines a type of identity, such as a user, role, or service
// account. Callers attach instances of each identity type to a request.
type Identity struct {
	// IdentityType uniquely names this identity type.
	IdentityType string `json:"identity_type"`

	// Schema is the JSON Schema that instances of this identity type
	// must conform to.
	Schema any `json:"schema"`
}

// Resource defines a type of resource, the actions it supports, and its
// position in the resource hierarchy.
type Resource struct {
	// ResourceType uniquely names this resource type.
	ResourceType string `json:"resource_type"`

	// Actions lists the operations a request may name against this
	// resource type.
	Actions []string `json:"actions"`

	// Schema is the JSON Schema that instances of this resource type
	// must conform to.
	Schema any `json:"schema"`

	// ParentTypes names the resource types that are parents of this
	// type. Each must have its own resource definition.
	ParentTypes []string `json:"parent_types"`

	// ChildTypes names the resource types that are children of this
	// type. Each must have its own resource definition.
	ChildTypes []string `json:"child_types"`
}

// IdentitySchema returns the meta-schema an identity definition must
// satisfy. The returned value is freshly built on each call so callers
// may mutate it.
func IdentitySchema() map[string]any {
	return map[string]any{
		"title":                "Identity Definition",
		"description":          "An identity definition. Defines a type of identity to authorize against.",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"identity_type", "schema"},
		"properties": map[string]any{
			"identity_type": typeNameSchema(),
			"schema":        embeddedSchema(),
		},
	}
}

// ResourceSchema returns the meta-schema a resource definition must
// satisfy.
func ResourceSchema() map[string]any {
	return map[string]any{
		"title":                "Resource Definition",
		"description":          "A resource definition. Defines a type of resource to authorize against.",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"resource_type", "actions", "schema", "parent_types", "child_types"},
		"properties": map[string]any{
			"resource_type": typeNameSchema(),
			"actions": map[string]any{
				"type":        "array",
				"uniqueItems": true,
				"items": map[string]any{
					"title":       "Resource Action",
					"description": "Unique name for a resource action. The 'ResourceType:ResourceAction' pattern is common.",
					"type":        "string",
					"pattern":     "^[A-Za-z0-9_.:-]*$",
					"minLength":   1,
					"maxLength":   512,
				},
			},
			"schema": embeddedSchema(),
			"parent_types": map[string]any{
				"type":        "array",
				"uniqueItems": true,
				"items":       map[string]any{"type": "string"},
				"description": "Types that are a parent of this resource. Instances passed on a request are checked against their schemas and the hierarchy.",
			},
			"child_types": map[string]any{
				"type":        "array",
				"uniqueItems": true,
				"items":       map[string]any{"type": "string"},
				"description": "Types that are a child of this resource. Instances passed on a request are checked against their schemas and the hierarchy.",
			},
		},
	}
}

func typeNameSchema() map[string]any {
	return map[string]any{
		"title":       "Definition Type Name",
		"description": "A unique name for this type.",
		"type":        "string",
		"pattern":     "^[A-Za-z0-9_]*$",
		"minLength":   1,
		"maxLength":   256,
	}
}

// embeddedSchema constrains a property to something that can itself be a
// JSON Schema: an object or a boolean.
func embeddedSchema() map[string]any {
	return map[string]any{
		"type": []any{"object", "boolean"},
	}
}
