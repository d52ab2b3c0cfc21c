package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the grant store (SQLite).
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
    actions         TEXT NOT NULL DEFAULT '[]',
    grant_body      TEXT NOT NULL,
    created_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_verdict_grants_effect ON verdict_grants (effect, created_at);
CREATE INDEX IF NOT EXISTS idx_verdict_grants_created ON verdict_grants (created_at);
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
