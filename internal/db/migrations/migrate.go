package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

const versionTable = "goose_db_version"

func configure() error {
	goose.SetBaseFS(FS)
	goose.SetTableName(versionTable)
	return goose.SetDialect("postgres")
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	if err := configure(); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB) error {
	if err := configure(); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return goose.DownContext(ctx, db, ".")
}

// Status prints applied and pending migrations through goose's logger.
func Status(ctx context.Context, db *sql.DB) error {
	if err := configure(); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return goose.StatusContext(ctx, db, ".")
}
