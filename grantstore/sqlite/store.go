// Package sqlite provides a SQLite-backed grant store built on grove.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/id"
)

// Compile-time interface check.
var _ grantstore.Store = (*Store)(nil)

// Store is a SQLite implementation of the grant store.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite grant store.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("verdict/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("verdict/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Add stores a grant under a freshly generated ID.
func (s *Store) Add(ctx context.Context, grant verdict.Grant) (*grantstore.Record, error) {
	rec := &grantstore.Record{
		ID:        id.NewGrantID(),
		Grant:     grant,
		CreatedAt: time.Now().UTC(),
	}
	m, err := recordToModel(rec)
	if err != nil {
		return nil, fmt.Errorf("verdict: add grant: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return nil, fmt.Errorf("verdict: add grant: %w", err)
	}
	return rec, nil
}

// Get returns the record for grantID.
func (s *Store) Get(ctx context.Context, grantID id.GrantID) (*grantstore.Record, error) {
	m := new(grantModel)
	err := s.sdb.NewSelect(m).Where("id = ?", grantID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("grant %s: %w", grantID, grantstore.ErrNotFound)
		}
		return nil, fmt.Errorf("verdict: get grant: %w", err)
	}
	rec, err := recordFromModel(m)
	if err != nil {
		return nil, fmt.Errorf("verdict: get grant: %w", err)
	}
	return rec, nil
}

// Delete removes the record for grantID.
func (s *Store) Delete(ctx context.Context, grantID id.GrantID) error {
	res, err := s.sdb.NewDelete((*grantModel)(nil)).
		Where("id = ?", grantID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: delete grant: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("grant %s: %w", grantID, grantstore.ErrNotFound)
	}
	return nil
}

// List returns records matching the filter in creation order. Effect
// filtering happens in SQL; action filtering is applied over the grant
// JSON after scanning, with paging applied last so offsets stay stable.
func (s *Store) List(ctx context.Context, filter *grantstore.ListFilter) ([]*grantstore.Record, error) {
	records, err := s.scan(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("verdict: list grants: %w", err)
	}

	offset, limit := 0, len(records)
	if filter != nil {
		if filter.Offset > 0 {
			offset = filter.Offset
		}
		if filter.Limit > 0 {
			limit = filter.Limit
		}
	}
	if offset >= len(records) {
		return []*grantstore.Record{}, nil
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end], nil
}

// Count returns the number of records matching the filter.
func (s *Store) Count(ctx context.Context, filter *grantstore.ListFilter) (int64, error) {
	if filter == nil || filter.Action == "" {
		q := s.sdb.NewSelect((*grantModel)(nil))
		if filter != nil && filter.Effect != "" {
			q = q.Where("effect = ?", string(filter.Effect))
		}
		count, err := q.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("verdict: count grants: %w", err)
		}
		return count, nil
	}

	records, err := s.scan(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("verdict: count grants: %w", err)
	}
	return int64(len(records)), nil
}

// scan fetches every record matching Effect and Action, unpaged.
func (s *Store) scan(ctx context.Context, filter *grantstore.ListFilter) ([]*grantstore.Record, error) {
	var models []grantModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at ASC, id ASC")
	if filter != nil && filter.Effect != "" {
		q = q.Where("effect = ?", string(filter.Effect))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	records := make([]*grantstore.Record, 0, len(models))
	for i := range models {
		rec, err := recordFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		if filter != nil && filter.Action != "" && !grantstore.MatchesAction(rec.Grant, filter.Action) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
