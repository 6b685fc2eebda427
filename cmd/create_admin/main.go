package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"leadcrm/internal/config"
	"leadcrm/internal/database"
	"leadcrm/internal/users"
	"leadcrm/pkg/logger"
	"leadcrm/pkg/utils"
)

// create_admin seeds a staff account. Flags fall back to ADMIN_EMAIL,
// ADMIN_NAME and ADMIN_PASSWORD so it can run from a deploy hook.
func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "login email")
	name := flag.String("name", envOr("ADMIN_NAME", "Administrator"), "display name")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "initial password (min 8 chars)")
	role := flag.String("role", string(users.RoleAdmin), "admin or staff")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env)

	if cfg.Store.Driver != config.StorePostgres {
		log.Error("create_admin needs the postgres store", "driver", cfg.Store.Driver)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	u, err := users.NewService(users.NewPostgresRepo(db)).Create(ctx, users.CreateInput{
		Email:    *email,
		Name:     *name,
		Password: *password,
		Role:     users.Role(*role),
	})
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		fmt.Printf("User %s already exists\n", *email)
		return
	case err != nil:
		log.Error("create user failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s user %s (%s)\n", u.Role, u.Email, u.ID)
	fmt.Println("Please change the password after first login!")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
