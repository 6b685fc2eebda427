package main

import (
	"context"
	"database/sql"
	"fmt"

	"leadcrm/internal/activity"
	"leadcrm/internal/config"
	"leadcrm/internal/contacts"
	"leadcrm/internal/database"
	"leadcrm/internal/projects"
	"leadcrm/internal/users"
	"leadcrm/pkg/utils"
)

// stores bundles one repository per collection. db is nil for the memory driver.
type stores struct {
	db       *sql.DB
	contacts contacts.Repository
	projects projects.Repository
	activity activity.Repository
	users    users.Repository
}

func (s stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func memoryStores() stores {
	return stores{
		contacts: contacts.NewMemoryRepo(),
		projects: projects.NewMemoryRepo(),
		activity: activity.NewMemoryRepo(),
		users:    users.NewMemoryRepo(),
	}
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.Store.Driver == config.StoreMemory {
		return memoryStores(), nil
	}

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		return stores{}, fmt.Errorf("postgres: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	return stores{
		db:       db,
		contacts: contacts.NewPostgresRepo(db),
		projects: projects.NewPostgresRepo(db),
		activity: activity.NewPostgresRepo(db),
		users:    users.NewPostgresRepo(db),
	}, nil
}
