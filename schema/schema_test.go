package schema

import (
	"reflect"
	"testing"

	"github.com/xraph/verdict/definition"
)

func testDefs() ([]definition.Identity, []definition.Resource) {
	identityDefs := []definition.Identity{{
		IdentityType: "user",
		Schema:       map[string]any{"type": "object"},
	}}
	resourceDefs := []definition.Resource{
		{
			ResourceType: "folder",
			Actions:      []string{"read", "delete"},
			Schema:       map[string]any{"type": "object"},
		},
		{
			ResourceType: "document",
			Actions:      []string{"edit", "read"},
			Schema:       map[string]any{"type": "object"},
			ParentTypes:  []string{"folder"},
		},
	}
	return identityDefs, resourceDefs
}

func TestGrantActionEnum(t *testing.T) {
	identityDefs, resourceDefs := testDefs()
	schemas := Generate(identityDefs, resourceDefs)

	props := schemas.Grant["properties"].(map[string]any)
	items := props["actions"].(map[string]any)["items"].(map[string]any)
	enum := items["enum"].([]any)

	// Deduplicated across resource types and sorted.
	want := []any{"delete", "edit", "read"}
	if !reflect.DeepEqual(enum, want) {
		t.Fatalf("unexpected action enum: %v", enum)
	}
}

func TestRequestVariants(t *testing.T) {
	identityDefs, resourceDefs := testDefs()
	schemas := Generate(identityDefs, resourceDefs)

	variants := schemas.Request["anyOf"].([]any)
	if len(variants) != len(resourceDefs) {
		t.Fatalf("expected %d variants, got %d", len(resourceDefs), len(variants))
	}

	// Variants follow definition order.
	first := variants[0].(map[string]any)["properties"].(map[string]any)
	if rt := first["resource_type"].(map[string]any)["const"]; rt != "folder" {
		t.Fatalf("unexpected first variant resource type: %v", rt)
	}

	second := variants[1].(map[string]any)["properties"].(map[string]any)
	actionEnum := second["action"].(map[string]any)["enum"].([]any)
	if !reflect.DeepEqual(actionEnum, []any{"edit", "read"}) {
		t.Fatalf("unexpected action enum: %v", actionEnum)
	}
}

func TestRequestDefs(t *testing.T) {
	identityDefs, resourceDefs := testDefs()
	schemas := Generate(identityDefs, resourceDefs)

	defs := schemas.Request["$defs"].(map[string]any)
	for _, key := range []string{"identities", "query_validation", "context", "context_validation", "folder", "document"} {
		if _, ok := defs[key]; !ok {
			t.Fatalf("missing $defs entry %q", key)
		}
	}

	identities := defs["identities"].(map[string]any)
	required := identities["required"].([]any)
	if !reflect.DeepEqual(required, []any{"user"}) {
		t.Fatalf("unexpected identities required: %v", required)
	}
}

func TestRequestParentsRequired(t *testing.T) {
	identityDefs, resourceDefs := testDefs()
	schemas := Generate(identityDefs, resourceDefs)

	variants := schemas.Request["anyOf"].([]any)
	docVariant := variants[1].(map[string]any)["properties"].(map[string]any)

	parents := docVariant["parents"].(map[string]any)
	if !reflect.DeepEqual(parents["required"], []any{"folder"}) {
		t.Fatalf("unexpected parents required: %v", parents["required"])
	}

	// No declared children means an empty object is the only valid value.
	children := docVariant["children"].(map[string]any)
	if len(children["required"].([]any)) != 0 {
		t.Fatalf("unexpected children required: %v", children["required"])
	}
	if children["additionalProperties"] != false {
		t.Fatal("expected closed children object")
	}
}

func TestResponseSchemasDoNotAlias(t *testing.T) {
	identityDefs, resourceDefs := testDefs()
	schemas := Generate(identityDefs, resourceDefs)

	items := schemas.Audit["properties"].(map[string]any)["grants"].(map[string]any)["items"].(map[string]any)
	items["title"] = "mutated"

	if schemas.Grant["title"] != "Grant" {
		t.Fatal("embedded grant schema aliases the standalone grant schema")
	}
}
