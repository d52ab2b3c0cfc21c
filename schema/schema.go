// Package schema generates the JSON Schemas that govern grants,
// requests, and workflow responses for a given set of identity and
// resource definitions.
package schema

import (
	"fmt"
	"sort"

	"github.com/xraph/verdict/definition"
)

// Schemas holds every generated schema for one definition set.
type Schemas struct {
	// Grant validates a single grant.
	Grant map[string]any `json:"grant"`

	// Errors validates the error aggregate on workflow responses.
	Errors map[string]any `json:"errors"`

	// Request validates a workflow request. It is an anyOf over one
	// variant per resource type.
	Request map[string]any `json:"request"`

	// Audit validates an audit workflow response.
	Audit map[string]any `json:"audit"`

	// Authorize validates an authorize workflow response.
	Authorize map[string]any `json:"authorize"`
}

// Generate builds the schemas for the given definitions. The definitions
// are assumed to be valid; call it after definition validation succeeds.
// Generation is deterministic: the grant action enum is sorted and the
// request variants follow the resource definition order.
func Generate(identityDefs []definition.Identity, resourceDefs []definition.Resource) Schemas {
	grant := grantSchema(resourceDefs)
	errs := errorsSchema()
	return Schemas{
		Grant:     grant,
		Errors:    errs,
		Request:   requestSchema(identityDefs, resourceDefs),
		Audit:     auditSchema(grant, errs),
		Authorize: authorizeSchema(grant, errs),
	}
}

func grantSchema(resourceDefs []definition.Resource) map[string]any {
	seen := map[string]bool{}
	actions := []any{}
	for _, rDef := range resourceDefs {
		for _, action := range rDef.Actions {
			if !seen[action] {
				seen[action] = true
				actions = append(actions, action)
			}
		}
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].(string) < actions[j].(string) })

	return map[string]any{
		"title":                "Grant",
		"description":          "A grant is an object representing an enacted authorization rule.",
		"type":                 "object",
		"additionalProperties": false,
		"required": []any{
			"effect", "actions", "query", "query_validation",
			"equality", "data", "context_schema", "context_validation",
		},
		"properties": map[string]any{
			"effect": map[string]any{
				"type":        "string",
				"enum":        []any{"allow", "deny"},
				"description": "Any applicable deny grant will always cause the request to be not authorized. If there are no applicable deny grants, and there is an applicable allow grant, the request is authorized. If there are no applicable allow or deny grants, requests are implicitly denied and not authorized.",
			},
			"actions": map[string]any{
				"type":        "array",
				"uniqueItems": true,
				"items": map[string]any{
					"type": "string",
					"enum": actions,
				},
				"description": "List of actions this grant applies to, or empty to match any resource action.",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "Query to run on the authorization data. {\"grant\": <grant>, \"request\": <request>}",
			},
			"query_validation": map[string]any{
				"type":        "string",
				"title":       "Grant-Level Query Validation Setting",
				"description": "Grant-level query validation setting. Set how query errors are treated. 'validate' - Query errors cause the grant to be inapplicable to the request. 'error' - Includes the 'validate' setting checks, and also adds errors to the result. 'critical' - Includes the 'error' setting checks, and will flag the error as critical, thus exiting the workflow early.",
				"enum":        []any{"validate", "error", "critical"},
			},
			"equality": map[string]any{
				"description": "Expected value for the query to return. If the query result matches this value the grant is considered applicable to the request.",
			},
			"data": map[string]any{
				"type":        "object",
				"description": "Data that is made available at query time for the grant evaluation. Easy place to store data so it doesn't have to be embedded in the query.",
			},
			"context_schema": map[string]any{
				"type": []any{"object", "boolean"},
			},
			"context_validation": map[string]any{
				"type":        "string",
				"title":       "Grant-Level Context Validation",
				"description": "Grant-level context validation setting. Set how the request context is validated against the grant context schema. 'none' - there is no validation. 'validate' - Context is validated and if the context is invalid, the grant is not applicable to the request. 'error' - Includes the 'validate' setting checks, and also adds errors to the result. 'critical' - Includes the 'error' setting checks, and will flag the error as critical, thus exiting the workflow early.",
				"enum":        []any{"none", "validate", "error", "critical"},
			},
		},
	}
}

func errorsSchema() map[string]any {
	return map[string]any{
		"title":                "Workflow Errors",
		"description":          "Errors returned from authorization workflows.",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"context", "definition", "grant", "jmespath", "request"},
		"properties": map[string]any{
			"context":    map[string]any{"type": "array"},
			"definition": map[string]any{"type": "array"},
			"grant":      map[string]any{"type": "array"},
			"jmespath":   map[string]any{"type": "array"},
			"request":    map[string]any{"type": "array"},
		},
	}
}

func requestSchema(identityDefs []definition.Identity, resourceDefs []definition.Resource) map[string]any {
	identityRequired := []any{}
	identityProps := map[string]any{}
	for _, idDef := range identityDefs {
		identityRequired = append(identityRequired, idDef.IdentityType)
		identityProps[idDef.IdentityType] = map[string]any{
			"type":  "array",
			"items": idDef.Schema,
		}
	}

	defs := map[string]any{
		"identities": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             identityRequired,
			"properties":           identityProps,
		},
		"query_validation": map[string]any{
			"type": "string",
			"enum": []any{"grant", "validate", "error", "critical"},
		},
		"context": map[string]any{
			"type": "object",
			"patternProperties": map[string]any{
				"^[a-zA-Z0-9_]{1,256}$": map[string]any{},
			},
		},
		"context_validation": map[string]any{
			"type": "string",
			"enum": []any{"grant", "none", "validate", "error", "critical"},
		},
	}

	variants := []any{}
	for _, rDef := range resourceDefs {
		defs[rDef.ResourceType] = rDef.Schema
		variants = append(variants, resourceVariant(rDef))
	}

	return map[string]any{
		"title":       "Workflow Request",
		"description": "Request for an authorization workflow.",
		"anyOf":       variants,
		"$defs":       defs,
	}
}

func resourceVariant(rDef definition.Resource) map[string]any {
	actionEnum := []any{}
	for _, action := range rDef.Actions {
		actionEnum = append(actionEnum, action)
	}

	return map[string]any{
		"title":                fmt.Sprintf("'%s' Resource Type Workflow Request", rDef.ResourceType),
		"description":          fmt.Sprintf("'%s' resource type request for an authorization workflow.", rDef.ResourceType),
		"type":                 "object",
		"additionalProperties": false,
		"required": []any{
			"identities", "resource_type", "action", "resource", "parents",
			"children", "query_validation", "context", "context_validation",
		},
		"properties": map[string]any{
			"identities": map[string]any{"$ref": "#/$defs/identities"},
			"action": map[string]any{
				"type": "string",
				"enum": actionEnum,
			},
			"resource_type":      map[string]any{"const": rDef.ResourceType},
			"resource":           map[string]any{"$ref": "#/$defs/" + rDef.ResourceType},
			"parents":            relativeSchema(rDef.ParentTypes),
			"children":           relativeSchema(rDef.ChildTypes),
			"query_validation":   map[string]any{"$ref": "#/$defs/query_validation"},
			"context":            map[string]any{"$ref": "#/$defs/context"},
			"context_validation": map[string]any{"$ref": "#/$defs/context_validation"},
		},
	}
}

// relativeSchema builds the parents/children object schema: the declared
// types are exactly the required keys, each holding an array of
// instances of that type.
func relativeSchema(types []string) map[string]any {
	required := []any{}
	props := map[string]any{}
	for _, typ := range types {
		required = append(required, typ)
		props[typ] = map[string]any{
			"type":  "array",
			"items": map[string]any{"$ref": "#/$defs/" + typ},
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             required,
		"properties":           props,
	}
}

func auditSchema(grant, errs map[string]any) map[string]any {
	return map[string]any{
		"title":                "Audit Response",
		"description":          "Response for the audit workflow.",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"grants", "errors"},
		"properties": map[string]any{
			"completed": map[string]any{
				"type":        "boolean",
				"description": "The workflow completed.",
			},
			"grants": map[string]any{
				"type":        "array",
				"items":       deepCopy(grant),
				"description": "List of grants that are applicable to the request.",
			},
			"errors": deepCopy(errs),
		},
	}
}

func authorizeSchema(grant, errs map[string]any) map[string]any {
	return map[string]any{
		"title":                "Authorize Response",
		"description":          "Response for the authorize workflow.",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"authorized", "completed", "grant", "message", "errors"},
		"properties": map[string]any{
			"authorized": map[string]any{
				"type":        "boolean",
				"description": "true if the request is authorized. false if it is not authorized.",
			},
			"completed": map[string]any{
				"type":        "boolean",
				"description": "The workflow completed.",
			},
			"grant": map[string]any{
				"description": "Grant that was responsible for the authorization decision, if applicable.",
				"anyOf":       []any{deepCopy(grant), map[string]any{"type": "null"}},
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Details about why the request was authorized or not.",
			},
			"errors": deepCopy(errs),
		},
	}
}

// deepCopy clones a JSON-shaped value so embedding a schema in another
// never aliases the original.
func deepCopy(v map[string]any) map[string]any {
	return copyValue(v).(map[string]any)
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
