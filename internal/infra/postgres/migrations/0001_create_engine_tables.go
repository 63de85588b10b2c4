package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_engine_tables.sql
var createEngineTablesSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createEngineTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS events;
DROP TABLE IF EXISTS participations;
DROP TABLE IF EXISTS leaderboards;
DROP TABLE IF EXISTS attempts;
DROP TABLE IF EXISTS quizzes;
DROP TABLE IF EXISTS quiz_counter`)
			return err
		},
	)
}
