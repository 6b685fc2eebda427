package activity

import (
	"context"
	"database/sql"
	"encoding/json"
)

// PostgresRepo stores activities in the activities table (see internal/database).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, a Activity) error {
	const q = `
INSERT INTO activities (id, contact_id, project_id, action, details, metadata, created_at)
VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, '')::uuid, $4, $5, $6, $7)
`
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		a.ID,
		a.ContactID,
		a.ProjectID,
		string(a.Action),
		a.Details,
		meta,
		a.Timestamp,
	)
	return err
}

const selectActivities = `
SELECT id, COALESCE(contact_id::text, ''), COALESCE(project_id::text, ''), action, details, metadata, created_at
FROM activities
`

func (r *PostgresRepo) ListByContact(ctx context.Context, contactID string) ([]Activity, error) {
	return r.query(ctx, selectActivities+`WHERE contact_id = $1 ORDER BY created_at DESC`, contactID)
}

func (r *PostgresRepo) ListByProject(ctx context.Context, projectID string) ([]Activity, error) {
	return r.query(ctx, selectActivities+`WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]Activity, error) {
	return r.query(ctx, selectActivities+`ORDER BY created_at DESC`)
}

func (r *PostgresRepo) query(ctx context.Context, q string, args ...any) ([]Activity, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Activity, 0)
	for rows.Next() {
		var (
			a    Activity
			meta []byte
		)
		if err := rows.Scan(&a.ID, &a.ContactID, &a.ProjectID, &a.Action, &a.Details, &meta, &a.Timestamp); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &a.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
