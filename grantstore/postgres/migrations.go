package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the grant store (Postgres).
var Migrations = migrate.NewGroup("verdict")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_grants",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS verdict_grants (
    id              TEXT PRIMARY KEY,
    effect          TEXT NOT NULL,
    actions         JSONB NOT NULL DEFAULT '[]',
    grant_body      JSONB NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_verdict_grants_effect ON verdict_grants (effect, created_at);
CREATE INDEX IF NOT EXISTS idx_verdict_grants_created ON verdict_grants (created_at);
CREATE INDEX IF NOT EXISTS idx_verdict_grants_actions ON verdict_grants USING GIN (actions);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS verdict_grants`)
				return err
			},
		},
	)
}
