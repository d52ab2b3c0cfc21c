package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/id"
)

func newGrant(effect verdict.Effect, actions ...string) verdict.Grant {
	return verdict.Grant{
		Effect:            effect,
		Actions:           actions,
		Query:             "request.resource.id",
		QueryValidation:   verdict.QueryValidationError,
		Equality:          "doc_1",
		Data:              map[string]any{},
		ContextSchema:     map[string]any{},
		ContextValidation: verdict.ContextValidationNone,
	}
}

func TestAddGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec, err := s.Add(ctx, newGrant(verdict.EffectAllow, "read"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if rec.ID.IsNil() {
		t.Fatal("expected a generated ID")
	}
	if rec.ID.Prefix() != id.PrefixGrant {
		t.Errorf("expected grant prefix, got %q", rec.ID.Prefix())
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Grant.Effect != verdict.EffectAllow {
		t.Errorf("expected allow, got %q", got.Grant.Effect)
	}

	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !errors.Is(err, grantstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, rec.ID); !errors.Is(err, grantstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), id.NewGrantID())
	if !errors.Is(err, grantstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	s := New()

	mustAdd := func(g verdict.Grant) {
		t.Helper()
		if _, err := s.Add(ctx, g); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	mustAdd(newGrant(verdict.EffectAllow, "read"))
	mustAdd(newGrant(verdict.EffectAllow, "write"))
	mustAdd(newGrant(verdict.EffectDeny, "read"))
	mustAdd(newGrant(verdict.EffectAllow)) // matches any action

	all, err := s.List(ctx, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}

	deny, err := s.List(ctx, &grantstore.ListFilter{Effect: verdict.EffectDeny})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(deny) != 1 {
		t.Errorf("expected 1 deny record, got %d", len(deny))
	}

	// "read" matches the two explicit read grants plus the wildcard.
	read, err := s.List(ctx, &grantstore.ListFilter{Action: "read"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(read) != 3 {
		t.Errorf("expected 3 read records, got %d", len(read))
	}

	count, err := s.Count(ctx, &grantstore.ListFilter{Effect: verdict.EffectAllow, Limit: 1})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3 ignoring limit, got %d", count)
	}
}

func TestListPaging(t *testing.T) {
	ctx := context.Background()
	s := New()

	var ids []string
	for i := 0; i < 5; i++ {
		rec, err := s.Add(ctx, newGrant(verdict.EffectAllow, "read"))
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		ids = append(ids, rec.ID.String())
	}

	page, err := s.List(ctx, &grantstore.ListFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 records, got %d", len(page))
	}
	if page[0].ID.String() != ids[2] || page[1].ID.String() != ids[3] {
		t.Error("paging did not preserve insertion order")
	}

	empty, err := s.List(ctx, &grantstore.ListFilter{Offset: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty page, got %d records", len(empty))
	}
}

func TestLoadGrants(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 3; i++ {
		if _, err := s.Add(ctx, newGrant(verdict.EffectAllow, "read")); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	grants, err := grantstore.LoadGrants(ctx, s, nil)
	if err != nil {
		t.Fatalf("LoadGrants failed: %v", err)
	}
	if len(grants) != 3 {
		t.Errorf("expected 3 grants, got %d", len(grants))
	}
}
