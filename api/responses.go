package api

import (
	"time"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/schema"
)

// GrantResponse is a stored grant with its identity.
type GrantResponse struct {
	ID        string        `json:"id" description:"Grant ID"`
	Grant     verdict.Grant `json:"grant" description:"The stored grant"`
	CreatedAt time.Time     `json:"created_at" description:"Creation time"`
}

func toGrantResponse(rec *grantstore.Record) *GrantResponse {
	return &GrantResponse{
		ID:        rec.ID.String(),
		Grant:     rec.Grant,
		CreatedAt: rec.CreatedAt,
	}
}

// ListGrantsResponse is a page of stored grants.
type ListGrantsResponse struct {
	Grants []GrantResponse `json:"grants" description:"Stored grants in creation order"`
	Total  int64           `json:"total" description:"Total matching grants ignoring paging"`
}

// DeleteGrantResponse acknowledges a deletion.
type DeleteGrantResponse struct {
	Deleted bool `json:"deleted" description:"Whether the grant was deleted"`
}

// SchemasResponse carries the schemas generated from the engine's
// definitions.
type SchemasResponse struct {
	Schemas schema.Schemas `json:"schemas" description:"Generated grant, errors, request, audit, and authorize schemas"`
}
