package mongo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/id"
)

// grantModel stores the grant body as JSON text rather than structured
// BSON so the grant's equality value survives storage byte-for-byte.
// Effect and actions are duplicated as native fields for filtering.
type grantModel struct {
	grove.BaseModel `grove:"table:verdict_grants"`
	ID              string    `grove:"id,pk"       bson:"_id"`
	Effect          string    `grove:"effect"      bson:"effect"`
	Actions         []string  `grove:"actions"     bson:"actions"`
	Grant           string    `grove:"grant_body"  bson:"grant_body"`
	CreatedAt       time.Time `grove:"created_at"  bson:"created_at"`
}

func recordToModel(rec *grantstore.Record) (*grantModel, error) {
	body, err := json.Marshal(rec.Grant)
	if err != nil {
		return nil, fmt.Errorf("marshal grant: %w", err)
	}
	actions := rec.Grant.Actions
	if actions == nil {
		actions = []string{}
	}
	return &grantModel{
		ID:        rec.ID.String(),
		Effect:    string(rec.Grant.Effect),
		Actions:   actions,
		Grant:     string(body),
		CreatedAt: rec.CreatedAt,
	}, nil
}

func recordFromModel(m *grantModel) (*grantstore.Record, error) {
	gid, _ := id.ParseGrantID(m.ID) //nolint:errcheck // stored IDs are always valid
	var grant verdict.Grant
	if err := json.Unmarshal([]byte(m.Grant), &grant); err != nil {
		return nil, fmt.Errorf("unmarshal grant: %w", err)
	}
	return &grantstore.Record{
		ID:        gid,
		Grant:     grant,
		CreatedAt: m.CreatedAt,
	}, nil
}
