// Package mongo provides a MongoDB-backed grant store using grove's
// mongo driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/id"
)

// colGrants is the grants collection name.
const colGrants = "verdict_grants"

// Compile-time interface check.
var _ grantstore.Store = (*Store)(nil)

// Store is a MongoDB implementation of the grant store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB grant store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for the grants collection.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := []mongod.IndexModel{
		{Keys: bson.D{{Key: "effect", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "actions", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}
	if _, err := s.mdb.Collection(colGrants).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("verdict/mongo: migrate %s indexes: %w", colGrants, err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
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
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return nil, fmt.Errorf("verdict: add grant: %w", err)
	}
	return rec, nil
}

// Get returns the record for grantID.
func (s *Store) Get(ctx context.Context, grantID id.GrantID) (*grantstore.Record, error) {
	var m grantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": grantID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("grant %s: %w", grantID, grantstore.ErrNotFound)
		}
		return nil, fmt.Errorf("verdict: get grant: %w", err)
	}
	return recordFromModel(&m)
}

// Delete removes the record for grantID.
func (s *Store) Delete(ctx context.Context, grantID id.GrantID) error {
	if _, err := s.Get(ctx, grantID); err != nil {
		return err
	}
	_, err := s.mdb.NewDelete((*grantModel)(nil)).
		Filter(bson.M{"_id": grantID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: delete grant: %w", err)
	}
	return nil
}

// List returns records matching the filter in creation order.
func (s *Store) List(ctx context.Context, filter *grantstore.ListFilter) ([]*grantstore.Record, error) {
	var models []grantModel
	q := s.mdb.NewFind(&models).
		Filter(listFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list grants: %w", err)
	}

	result := make([]*grantstore.Record, len(models))
	for i := range models {
		rec, err := recordFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("verdict: list grants: %w", err)
		}
		result[i] = rec
	}
	return result, nil
}

// Count returns the number of records matching the filter.
func (s *Store) Count(ctx context.Context, filter *grantstore.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*grantModel)(nil)).
		Filter(listFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count grants: %w", err)
	}
	return count, nil
}

// listFilter builds the BSON filter for Effect and Action. Action
// matching includes grants with an empty action list, which apply to
// every action.
func listFilter(filter *grantstore.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.Effect != "" {
		f["effect"] = string(filter.Effect)
	}
	if filter.Action != "" {
		f["$or"] = []bson.M{
			{"actions": filter.Action},
			{"actions": bson.M{"$size": 0}},
		}
	}
	return f
}
