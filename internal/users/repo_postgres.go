package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo stores users in the staff_users table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const uniqueViolation = "23505"

func (r *PostgresRepo) Create(ctx context.Context, u User) error {
	const q = `
INSERT INTO staff_users (id, email, name, role, password_hash, active, created_at, updated_at)
VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Name, string(u.Role), u.PasswordHash, u.Active, u.CreatedAt, u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

const selectUser = `
SELECT id, email, name, role, password_hash, active, created_at, updated_at
FROM staff_users
`

// GetByID treats an id that is not a uuid as unknown; the column would reject it.
func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, ErrNotFound
	}
	return r.one(ctx, selectUser+`WHERE id = $1`, id)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.one(ctx, selectUser+`WHERE email = lower($1)`, email)
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+`ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) one(ctx context.Context, q string, arg any) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (User, error) {
	var u User
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
