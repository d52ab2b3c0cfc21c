package verdict

import (
	"strings"
	"testing"

	"github.com/xraph/verdict/definition"
	"github.com/xraph/verdict/schema"
	"github.com/xraph/verdict/schemaval"
)

func TestValidateDefinitionsValid(t *testing.T) {
	errs := ValidateDefinitions(testIdentityDefs(), testResourceDefs(), schemaval.New())
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}

func TestValidateDefinitionsDuplicateIdentity(t *testing.T) {
	identityDefs := append(testIdentityDefs(), testIdentityDefs()...)

	errs := ValidateDefinitions(identityDefs, testResourceDefs(), schemaval.New())
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %+v", errs)
	}
	want := "Identity types must be unique. 'user' is present more than once."
	if errs[0].Message != want {
		t.Fatalf("unexpected message: %s", errs[0].Message)
	}
	if !errs[0].Critical {
		t.Fatal("expected critical error")
	}
	if errs[0].DefinitionType != "identity" {
		t.Fatalf("unexpected definition type: %s", errs[0].DefinitionType)
	}
}

func TestValidateDefinitionsDuplicateResource(t *testing.T) {
	resourceDefs := append(testResourceDefs(), testResourceDefs()...)

	errs := ValidateDefinitions(testIdentityDefs(), resourceDefs, schemaval.New())
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %+v", errs)
	}
	want := "Resource types must be unique. 'document' is present more than once."
	if errs[0].Message != want {
		t.Fatalf("unexpected message: %s", errs[0].Message)
	}
}

func TestValidateDefinitionsBadTypeName(t *testing.T) {
	identityDefs := []definition.Identity{{
		IdentityType: "not a valid name!",
		Schema:       map[string]any{"type": "object"},
	}}

	errs := ValidateDefinitions(identityDefs, testResourceDefs(), schemaval.New())
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %+v", errs)
	}
	if !strings.HasPrefix(errs[0].Message, "Identity definition schema was not valid. Schema Error:") {
		t.Fatalf("unexpected message: %s", errs[0].Message)
	}
}

func TestValidateDefinitionsUnknownParent(t *testing.T) {
	resourceDefs := testResourceDefs()
	resourceDefs[0].ParentTypes = []string{"folder"}

	errs := ValidateDefinitions(testIdentityDefs(), resourceDefs, schemaval.New())
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %+v", errs)
	}
	want := "Parent type 'folder' does not have a corresponding resource definition."
	if errs[0].Message != want {
		t.Fatalf("unexpected message: %s", errs[0].Message)
	}
}

func TestValidateDefinitionsUnknownChild(t *testing.T) {
	resourceDefs := testResourceDefs()
	resourceDefs[0].ChildTypes = []string{"attachment"}

	errs := ValidateDefinitions(testIdentityDefs(), resourceDefs, schemaval.New())
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %+v", errs)
	}
	want := "Child type 'attachment' does not have a corresponding resource definition."
	if errs[0].Message != want {
		t.Fatalf("unexpected message: %s", errs[0].Message)
	}
}

func TestValidateDefinitionsExhaustive(t *testing.T) {
	identityDefs := append(testIdentityDefs(), testIdentityDefs()...)
	resourceDefs := testResourceDefs()
	resourceDefs[0].ParentTypes = []string{"folder"}

	errs := ValidateDefinitions(identityDefs, resourceDefs, schemaval.New())
	if len(errs) != 2 {
		t.Fatalf("expected every problem reported, got %+v", errs)
	}
}

func TestValidateGrants(t *testing.T) {
	schemas := schema.Generate(testIdentityDefs(), testResourceDefs())

	if errs := ValidateGrants([]Grant{allowGrant(), denyGrant()}, schemas.Grant, schemaval.New()); len(errs) != 0 {
		t.Fatalf("expected valid grants, got %+v", errs)
	}

	bad := allowGrant()
	bad.Effect = "maybe"
	errs := ValidateGrants([]Grant{bad, allowGrant()}, schemas.Grant, schemaval.New())
	if len(errs) != 1 {
		t.Fatalf("expected one grant error, got %d", len(errs))
	}
	if !strings.HasPrefix(errs[0].Message, "The grant is not valid. Schema Error:") {
		t.Fatalf("unexpected message: %s", errs[0].Message)
	}
	if !errs[0].Critical {
		t.Fatal("expected critical error")
	}
}

func TestValidateGrantsUndeclaredAction(t *testing.T) {
	schemas := schema.Generate(testIdentityDefs(), testResourceDefs())

	grant := allowGrant()
	grant.Actions = []string{"fly"}
	if errs := ValidateGrants([]Grant{grant}, schemas.Grant, schemaval.New()); len(errs) != 1 {
		t.Fatalf("expected one grant error, got %+v", errs)
	}
}

func TestValidateRequest(t *testing.T) {
	schemas := schema.Generate(testIdentityDefs(), testResourceDefs())

	if errs := ValidateRequest(testRequest(), schemas.Request, schemaval.New()); len(errs) != 0 {
		t.Fatalf("expected valid request, got %+v", errs)
	}

	req := testRequest()
	req.ResourceType = "unknown"
	errs := ValidateRequest(req, schemas.Request, schemaval.New())
	if len(errs) != 1 {
		t.Fatalf("expected one request error, got %d", len(errs))
	}
	if !strings.HasPrefix(errs[0].Message, "The request is not valid for the request schema:") {
		t.Fatalf("unexpected message: %s", errs[0].Message)
	}
	if !errs[0].Critical {
		t.Fatal("expected critical error")
	}
}

func TestValidateRequestParentKeys(t *testing.T) {
	folderDef := definition.Resource{
		ResourceType: "folder",
		Actions:      []string{"read"},
		Schema: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"id"},
			"properties": map[string]any{
				"id": map[string]any{"type": "string"},
			},
		},
	}
	resourceDefs := testResourceDefs()
	resourceDefs[0].ParentTypes = []string{"folder"}
	resourceDefs = append(resourceDefs, folderDef)

	schemas := schema.Generate(testIdentityDefs(), resourceDefs)
	validator := schemaval.New()

	// Correctly keyed parents with a conforming instance validate.
	req := testRequest()
	req.Parents = map[string][]any{"folder": {map[string]any{"id": "folder_1"}}}
	if errs := ValidateRequest(req, schemas.Request, validator); len(errs) != 0 {
		t.Fatalf("expected valid request, got %+v", errs)
	}

	// A parent key that is not a declared parent type fails.
	req.Parents = map[string][]any{"workspace": {map[string]any{"id": "ws_1"}}}
	if errs := ValidateRequest(req, schemas.Request, validator); len(errs) != 1 {
		t.Fatalf("expected miskeyed parents to fail, got %+v", errs)
	}

	// The declared parent key is required even when no instances exist.
	req.Parents = nil
	if errs := ValidateRequest(req, schemas.Request, validator); len(errs) != 1 {
		t.Fatalf("expected missing parent key to fail, got %+v", errs)
	}

	// Parent instances are validated against the parent type's schema.
	req.Parents = map[string][]any{"folder": {map[string]any{"id": 7}}}
	if errs := ValidateRequest(req, schemas.Request, validator); len(errs) != 1 {
		t.Fatalf("expected non-conforming parent instance to fail, got %+v", errs)
	}

	// Undeclared child keys are rejected the same way.
	req.Parents = map[string][]any{"folder": {map[string]any{"id": "folder_1"}}}
	req.Children = map[string][]any{"folder": {map[string]any{"id": "folder_2"}}}
	if errs := ValidateRequest(req, schemas.Request, validator); len(errs) != 1 {
		t.Fatalf("expected undeclared child key to fail, got %+v", errs)
	}
}

func TestValidateRequestMissingIdentityType(t *testing.T) {
	schemas := schema.Generate(testIdentityDefs(), testResourceDefs())

	req := testRequest()
	req.Identities = map[string][]any{}
	if errs := ValidateRequest(req, schemas.Request, schemaval.New()); len(errs) != 1 {
		t.Fatalf("expected one request error, got %+v", errs)
	}
}
