package verdict

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xraph/verdict/schemaval"
	"github.com/xraph/verdict/search"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(testIdentityDefs(), testResourceDefs())
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestNewEngineInvalidDefinitions(t *testing.T) {
	resourceDefs := append(testResourceDefs(), testResourceDefs()...)

	_, err := NewEngine(testIdentityDefs(), resourceDefs)
	if err == nil {
		t.Fatal("expected error for duplicate resource types")
	}
	if !errors.Is(err, ErrInvalidDefinitions) {
		t.Fatalf("expected ErrInvalidDefinitions, got %v", err)
	}

	var invErr *InvalidDefinitionsError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected *InvalidDefinitionsError, got %T", err)
	}
	if len(invErr.Errors) != 1 {
		t.Fatalf("expected one definition error, got %d", len(invErr.Errors))
	}
	if !strings.Contains(invErr.Errors[0].Message, "present more than once") {
		t.Fatalf("unexpected message: %s", invErr.Errors[0].Message)
	}
}

func TestAuthorizeAllow(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Authorize(context.Background(), testRequest(), []Grant{allowGrant()})
	if !resp.Authorized {
		t.Fatalf("expected authorized, got message %q", resp.Message)
	}
	if !resp.Completed {
		t.Fatal("expected completed workflow")
	}
	if resp.Message != msgAllowApplicable {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if resp.Grant == nil || resp.Grant.Effect != EffectAllow {
		t.Fatalf("expected responsible allow grant, got %+v", resp.Grant)
	}
}

func TestAuthorizeDenyOverridesAllow(t *testing.T) {
	eng := newTestEngine(t)

	// The deny grant wins even though it is listed after the allow grant.
	resp := eng.Authorize(context.Background(), testRequest(), []Grant{allowGrant(), denyGrant()})
	if resp.Authorized {
		t.Fatal("expected denied")
	}
	if !resp.Completed {
		t.Fatal("expected completed workflow")
	}
	if resp.Message != msgDenyApplicable {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if resp.Grant == nil || resp.Grant.Effect != EffectDeny {
		t.Fatalf("expected responsible deny grant, got %+v", resp.Grant)
	}
}

func TestAuthorizeImplicitDeny(t *testing.T) {
	eng := newTestEngine(t)

	resp := eng.Authorize(context.Background(), testRequest(), []Grant{})
	if resp.Authorized {
		t.Fatal("expected implicit deny")
	}
	if !resp.Completed {
		t.Fatal("expected completed workflow")
	}
	if resp.Message != msgImplicitDeny {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if resp.Grant != nil {
		t.Fatalf("expected no responsible grant, got %+v", resp.Grant)
	}
}

func TestAuthorizeInapplicableGrant(t *testing.T) {
	eng := newTestEngine(t)

	grant := allowGrant()
	grant.Data = map[string]any{"owner": "someone_else"}

	resp := eng.Authorize(context.Background(), testRequest(), []Grant{grant})
	if resp.Authorized {
		t.Fatal("expected implicit deny when no grant applies")
	}
	if resp.Message != msgImplicitDeny {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
}

func TestAuthorizeCriticalError(t *testing.T) {
	eng := newTestEngine(t)

	grant := allowGrant()
	grant.Query = "request.[invalid"
	grant.QueryValidation = QueryValidationCritical

	resp := eng.Authorize(context.Background(), testRequest(), []Grant{grant})
	if resp.Authorized {
		t.Fatal("expected not authorized")
	}
	if resp.Completed {
		t.Fatal("expected incomplete workflow on critical error")
	}
	if resp.Message != msgCriticalError {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if resp.Grant == nil {
		t.Fatal("expected the failing grant on the response")
	}
	if len(resp.Errors.Query) != 1 || !resp.Errors.Query[0].Critical {
		t.Fatalf("expected one critical query error, got %+v", resp.Errors.Query)
	}
}

func TestAuthorizeCriticalDenyHaltsBeforeAllow(t *testing.T) {
	inner := search.New()
	calls := 0
	counting := SearchFunc(func(query string, data any) (any, error) {
		calls++
		return inner.Search(query, data)
	})

	eng, err := NewEngine(testIdentityDefs(), testResourceDefs(), WithSearcher(counting))
	if err != nil {
		t.Fatal(err)
	}

	broken := denyGrant()
	broken.Query = "request.[invalid"
	broken.QueryValidation = QueryValidationCritical

	// The deny grant halts the scan even though it is listed after the
	// allow grant, so the allow query is never evaluated.
	resp := eng.Authorize(context.Background(), testRequest(), []Grant{allowGrant(), broken})
	if resp.Authorized {
		t.Fatal("expected not authorized")
	}
	if resp.Completed {
		t.Fatal("expected incomplete workflow on critical error")
	}
	if resp.Message != msgCriticalError {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if resp.Grant == nil || resp.Grant.Effect != EffectDeny {
		t.Fatalf("expected the failing deny grant on the response, got %+v", resp.Grant)
	}
	if calls != 1 {
		t.Fatalf("expected a single query evaluation, got %d", calls)
	}
}

func TestAuthorizeInvalidGrant(t *testing.T) {
	eng := newTestEngine(t)

	grant := allowGrant()
	grant.Effect = "maybe"

	resp := eng.Authorize(context.Background(), testRequest(), []Grant{grant})
	if resp.Authorized || resp.Completed {
		t.Fatal("expected incomplete, unauthorized response")
	}
	if resp.Message != msgInvalidGrants {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if len(resp.Errors.Grant) != 1 {
		t.Fatalf("expected one grant error, got %d", len(resp.Errors.Grant))
	}
}

func TestAuthorizeInvalidRequest(t *testing.T) {
	eng := newTestEngine(t)

	req := testRequest()
	req.Action = "fly"

	resp := eng.Authorize(context.Background(), req, []Grant{allowGrant()})
	if resp.Authorized || resp.Completed {
		t.Fatal("expected incomplete, unauthorized response")
	}
	if resp.Message != msgInvalidRequest {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if len(resp.Errors.Request) != 1 {
		t.Fatalf("expected one request error, got %d", len(resp.Errors.Request))
	}
}

func TestAuditCollectsApplicable(t *testing.T) {
	eng := newTestEngine(t)

	mismatched := allowGrant()
	mismatched.Data = map[string]any{"owner": "someone_else"}

	resp := eng.Audit(context.Background(), testRequest(), []Grant{allowGrant(), mismatched, denyGrant()})
	if !resp.Completed {
		t.Fatal("expected completed workflow")
	}
	if len(resp.Grants) != 2 {
		t.Fatalf("expected two applicable grants, got %d", len(resp.Grants))
	}
	if resp.Grants[0].Effect != EffectAllow || resp.Grants[1].Effect != EffectDeny {
		t.Fatal("expected applicable grants in evaluation order")
	}
}

func TestAuditErrorLevelRecords(t *testing.T) {
	eng := newTestEngine(t)

	grant := allowGrant()
	grant.Query = "request.[invalid"

	resp := eng.Audit(context.Background(), testRequest(), []Grant{grant})
	if !resp.Completed {
		t.Fatal("expected completed workflow for non-critical error")
	}
	if len(resp.Grants) != 0 {
		t.Fatalf("expected no applicable grants, got %d", len(resp.Grants))
	}
	if len(resp.Errors.Query) != 1 || resp.Errors.Query[0].Critical {
		t.Fatalf("expected one non-critical query error, got %+v", resp.Errors.Query)
	}
}

func TestAuditCriticalHaltsScan(t *testing.T) {
	eng := newTestEngine(t)

	broken := allowGrant()
	broken.Query = "request.[invalid"
	broken.QueryValidation = QueryValidationCritical

	resp := eng.Audit(context.Background(), testRequest(), []Grant{allowGrant(), broken, denyGrant()})
	if resp.Completed {
		t.Fatal("expected incomplete workflow on critical error")
	}
	if len(resp.Grants) != 1 {
		t.Fatalf("expected scan to halt after one applicable grant, got %d", len(resp.Grants))
	}
	if len(resp.Errors.Query) != 1 {
		t.Fatalf("expected one query error, got %d", len(resp.Errors.Query))
	}
}

func TestEngineValidateGrant(t *testing.T) {
	eng := newTestEngine(t)

	if errs := eng.ValidateGrant(allowGrant()); len(errs) != 0 {
		t.Fatalf("expected valid grant, got %+v", errs)
	}

	grant := allowGrant()
	grant.Actions = []string{"fly"}
	if errs := eng.ValidateGrant(grant); len(errs) != 1 {
		t.Fatalf("expected one grant error, got %d", len(errs))
	}
}

func TestAuthorizeWorkflow(t *testing.T) {
	resp := AuthorizeWorkflow(testIdentityDefs(), testResourceDefs(), []Grant{allowGrant()}, testRequest(), search.New(), schemaval.New())
	if !resp.Authorized {
		t.Fatalf("expected authorized, got message %q", resp.Message)
	}
}

func TestAuthorizeWorkflowInvalidDefinitions(t *testing.T) {
	resourceDefs := append(testResourceDefs(), testResourceDefs()...)

	resp := AuthorizeWorkflow(testIdentityDefs(), resourceDefs, []Grant{allowGrant()}, testRequest(), search.New(), schemaval.New())
	if resp.Authorized || resp.Completed {
		t.Fatal("expected incomplete, unauthorized response")
	}
	if resp.Message != msgInvalidDefinitions {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if len(resp.Errors.Definition) != 1 {
		t.Fatalf("expected one definition error, got %d", len(resp.Errors.Definition))
	}
}

func TestAuditWorkflow(t *testing.T) {
	resp := AuditWorkflow(testIdentityDefs(), testResourceDefs(), []Grant{allowGrant(), denyGrant()}, testRequest(), search.New(), schemaval.New())
	if !resp.Completed {
		t.Fatal("expected completed workflow")
	}
	if len(resp.Grants) != 2 {
		t.Fatalf("expected two applicable grants, got %d", len(resp.Grants))
	}
}

func TestAuditWorkflowInvalidGrants(t *testing.T) {
	grant := allowGrant()
	grant.Effect = "maybe"

	resp := AuditWorkflow(testIdentityDefs(), testResourceDefs(), []Grant{grant}, testRequest(), search.New(), schemaval.New())
	if resp.Completed {
		t.Fatal("expected incomplete workflow")
	}
	if len(resp.Errors.Grant) != 1 {
		t.Fatalf("expected one grant error, got %d", len(resp.Errors.Grant))
	}
}

type capturePlugin struct {
	before int
	after  int
}

func (p *capturePlugin) Name() string { return "capture" }

func (p *capturePlugin) OnBeforeAuthorize(ctx context.Context, req any) error {
	p.before++
	return nil
}

func (p *capturePlugin) OnAfterAuthorize(ctx context.Context, req, resp any) error {
	p.after++
	if _, ok := resp.(*AuthorizeResponse); !ok {
		return errors.New("unexpected response type")
	}
	return nil
}

func TestEnginePluginHooks(t *testing.T) {
	p := &capturePlugin{}
	eng, err := NewEngine(testIdentityDefs(), testResourceDefs(), WithPlugin(p))
	if err != nil {
		t.Fatal(err)
	}

	eng.Authorize(context.Background(), testRequest(), []Grant{allowGrant()})
	if p.before != 1 || p.after != 1 {
		t.Fatalf("expected hooks to fire once, got before=%d after=%d", p.before, p.after)
	}
}
