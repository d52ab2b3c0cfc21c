package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/grantstore"
	"github.com/xraph/verdict/id"
)

type grantModel struct {
	grove.BaseModel `grove:"table:verdict_grants"`
	ID              string        `grove:"id,pk"`
	Effect          string        `grove:"effect,notnull"`
	Actions         []string      `grove:"actions,type:jsonb"`
	Grant           verdict.Grant `grove:"grant_body,type:jsonb"`
	CreatedAt       time.Time     `grove:"created_at,notnull"`
}

func recordToModel(rec *grantstore.Record) *grantModel {
	return &grantModel{
		ID:        rec.ID.String(),
		Effect:    string(rec.Grant.Effect),
		Actions:   rec.Grant.Actions,
		Grant:     rec.Grant,
		CreatedAt: rec.CreatedAt,
	}
}

func recordFromModel(m *grantModel) *grantstore.Record {
	gid, _ := id.ParseGrantID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &grantstore.Record{
		ID:        gid,
		Grant:     m.Grant,
		CreatedAt: m.CreatedAt,
	}
}
