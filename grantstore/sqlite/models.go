package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/id"
)

type grantModel struct {
	grove.BaseModel `grove:"table:verdict_grants"`
	ID              string    `grove:"id,pk"`
	Effect          string    `grove:"effect,notnull"`
	Actions         string    `grove:"actions,notnull"`    // JSON text
	Grant           string    `grove:"grant_body,notnull"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func recordToModel(rec *grantstore.Record) (*grantModel, error) {
	body, err := json.Marshal(rec.Grant)
	if err != nil {
		return nil, fmt.Errorf("marshal grant: %w", err)
	}
	actions, err := json.Marshal(rec.Grant.Actions)
	if err != nil {
		return nil, fmt.Errorf("marshal grant actions: %w", err)
	}
	return &grantModel{
		ID:        rec.ID.String(),
		Effect:    string(rec.Grant.Effect),
		Actions:   string(actions),
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
