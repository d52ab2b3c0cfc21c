// Package grantstore defines persistence for enacted grants.
// Backends: Postgres, SQLite, MongoDB, and Memory.
//
// The evaluation core is storage-free; a grant store is the durable
// source the caller loads grants from before invoking a workflow.
package grantstore

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/id"
)

// ErrNotFound is returned when a grant ID has no stored record.
var ErrNotFound = errors.New("grantstore: grant not found")

// Record is a stored grant. The grant itself carries no identity; the
// store wraps it with one so it can be retrieved and revoked.
type Record struct {
	ID        id.GrantID    `json:"id"`
	Grant     verdict.Grant `json:"grant"`
	CreatedAt time.Time     `json:"created_at"`
}

// ListFilter narrows and pages List and Count.
type ListFilter struct {
	// Effect restricts results to allow or deny grants when set.
	Effect verdict.Effect

	// Action restricts results to grants applicable to the action:
	// grants that list it or that list no actions at all.
	Action string

	Limit  int
	Offset int
}

// Store is the grant persistence interface. Records are ordered by
// creation time ascending, so evaluation order is stable across
// backends.
type Store interface {
	// Add stores a grant and returns its record.
	Add(ctx context.Context, grant verdict.Grant) (*Record, error)

	// Get returns the record for grantID, or ErrNotFound.
	Get(ctx context.Context, grantID id.GrantID) (*Record, error)

	// Delete removes the record for grantID, or returns ErrNotFound.
	Delete(ctx context.Context, grantID id.GrantID) error

	// List returns records matching the filter in creation order.
	List(ctx context.Context, filter *ListFilter) ([]*Record, error)

	// Count returns the number of records matching the filter,
	// ignoring Limit and Offset.
	Count(ctx context.Context, filter *ListFilter) (int64, error)

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}

// LoadGrants pages through the store and returns every grant matching
// the filter's Effect and Action, in creation order, ready to hand to a
// workflow. A nil filter loads everything.
func LoadGrants(ctx context.Context, s Store, filter *ListFilter) ([]verdict.Grant, error) {
	const pageSize = 500

	page := ListFilter{Limit: pageSize}
	if filter != nil {
		page.Effect = filter.Effect
		page.Action = filter.Action
	}

	var grants []verdict.Grant
	for {
		records, err := s.List(ctx, &page)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			grants = append(grants, rec.Grant)
		}
		if len(records) < pageSize {
			return grants, nil
		}
		page.Offset += pageSize
	}
}

// MatchesAction reports whether a grant applies to the action: it lists
// the action explicitly or lists no actions at all. Backends without
// JSON predicates use it for post-filtering.
func MatchesAction(grant verdict.Grant, action string) bool {
	if len(grant.Actions) == 0 {
		return true
	}
	for _, a := range grant.Actions {
		if a == action {
			return true
		}
	}
	return false
}
