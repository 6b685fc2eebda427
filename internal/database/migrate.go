// Package database owns the postgres schema used by the repositories.
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"leadcrm/pkg/utils"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL applied by Migrate.
func Schema() string { return schema }

// Migrate applies the schema in one transaction. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	err := utils.WithTx(ctx, db, nil, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, schema)
		return err
	})
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
