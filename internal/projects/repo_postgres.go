package projects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadcrm/internal/crm"
	"leadcrm/pkg/utils"
)

// PostgresRepo stores projects in the project_consultations table (see internal/database).
// Goals, features and notes are JSONB arrays.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const selectProjects = `
SELECT id, name, description, project_type, urgency, priority, has_content,
       industry, target_audience, existing_website, goals, features, desired_timeline, desired_budget,
       design_preferences, contact_name, contact_email, contact_phone, company, preferred_contact,
       additional_info, status, estimated_budget, estimated_timeline, complexity_score,
       source, user_agent, ip_address, referrer, COALESCE(assigned_to, ''), notes,
       created_at, updated_at, reviewed_at, quoted_at, accepted_at, completed_at
FROM project_consultations
`

var indexColumns = map[Index]string{
	IndexStatus:     "status",
	IndexType:       "project_type",
	IndexPriority:   "priority",
	IndexAssignedTo: "assigned_to",
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Project, error) {
	if !isUUID(id) {
		return Project{}, ErrNotFound
	}
	p, err := scanProject(r.db.QueryRowContext(ctx, selectProjects+`WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepo) Insert(ctx context.Context, p Project) error {
	const q = `
INSERT INTO project_consultations (
	id, name, description, project_type, urgency, priority, has_content,
	industry, target_audience, existing_website, goals, features, desired_timeline, desired_budget,
	design_preferences, contact_name, contact_email, contact_phone, company, preferred_contact,
	additional_info, status, estimated_budget, estimated_timeline, complexity_score,
	source, user_agent, ip_address, referrer, assigned_to, notes, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7,
	$8, $9, $10, $11, $12, $13, $14,
	$15, $16, $17, $18, $19, $20,
	$21, $22, $23, $24, $25,
	$26, $27, $28, $29, NULLIF($30, ''), $31, $32, $33
)
`
	goals, err := jsonArray(p.Goals)
	if err != nil {
		return err
	}
	features, err := jsonArray(p.Features)
	if err != nil {
		return err
	}
	notes, err := jsonArray(p.Notes)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Description, string(p.Type), string(p.Urgency), string(p.Priority), string(p.HasContent),
		p.Industry, p.TargetAudience, p.ExistingWebsite, goals, features, p.Timeline, p.Budget,
		p.DesignPreferences, p.Contact.Name, p.Contact.Email, p.Contact.Phone, p.Company, p.PreferredContact,
		p.AdditionalInfo, string(p.Status), p.EstimatedBudget, p.EstimatedTimeline, p.ComplexityScore,
		p.Source, p.UserAgent, p.IPAddress, p.Referrer, p.AssignedTo, notes, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Patch(ctx context.Context, id string, p Patch) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	q, args, err := buildPatch(id, p)
	if err != nil {
		return err
	}
	if q == "" {
		return nil
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_consultations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) ListByIndex(ctx context.Context, idx Index, value string) ([]Project, error) {
	col, ok := indexColumns[idx]
	if !ok {
		return r.query(ctx, selectProjects+`ORDER BY created_at DESC`)
	}
	return r.query(ctx, selectProjects+fmt.Sprintf(`WHERE %s = $1 ORDER BY created_at DESC`, col), value)
}

func (r *PostgresRepo) Search(ctx context.Context, term string) ([]Project, error) {
	const where = `WHERE to_tsvector('simple', description) @@ plainto_tsquery('simple', $1) ORDER BY created_at DESC`
	return r.query(ctx, selectProjects+where, term)
}

func (r *PostgresRepo) query(ctx context.Context, q string, args ...any) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func buildPatch(id string, p Patch) (string, []any, error) {
	b := utils.NewUpdate("project_consultations")
	if p.Status != nil {
		b.Set("status", string(*p.Status))
	}
	if p.AssignedTo != nil {
		b.Set("assigned_to", *p.AssignedTo)
	}
	if p.Notes != nil {
		notes, err := jsonArray(*p.Notes)
		if err != nil {
			return "", nil, err
		}
		b.Set("notes", notes)
	}
	for _, col := range []struct {
		col string
		v   any
		set bool
	}{
		{"reviewed_at", p.ReviewedAt, p.ReviewedAt != nil},
		{"quoted_at", p.QuotedAt, p.QuotedAt != nil},
		{"accepted_at", p.AcceptedAt, p.AcceptedAt != nil},
		{"completed_at", p.CompletedAt, p.CompletedAt != nil},
		{"estimated_budget", p.EstimatedBudget, p.EstimatedBudget != nil},
		{"estimated_timeline", p.EstimatedTimeline, p.EstimatedTimeline != nil},
		{"complexity_score", p.ComplexityScore, p.ComplexityScore != nil},
	} {
		if col.set {
			b.Set(col.col, col.v)
		}
	}
	if !p.UpdatedAt.IsZero() {
		b.Set("updated_at", p.UpdatedAt)
	}
	if b.Empty() {
		return "", nil, nil
	}
	q, args := b.Where("id", id)
	return q, args, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (Project, error) {
	var (
		p                      Project
		goals, features, notes []byte
		budget, weeks          sql.NullInt64
		complexity             sql.NullFloat64
		reviewed, quoted       sql.NullTime
		accepted, completed    sql.NullTime
	)
	err := s.Scan(
		&p.ID, &p.Name, &p.Description, &p.Type, &p.Urgency, &p.Priority, &p.HasContent,
		&p.Industry, &p.TargetAudience, &p.ExistingWebsite, &goals, &features, &p.Timeline, &p.Budget,
		&p.DesignPreferences, &p.Contact.Name, &p.Contact.Email, &p.Contact.Phone, &p.Company, &p.PreferredContact,
		&p.AdditionalInfo, &p.Status, &budget, &weeks, &complexity,
		&p.Source, &p.UserAgent, &p.IPAddress, &p.Referrer, &p.AssignedTo, &notes,
		&p.CreatedAt, &p.UpdatedAt, &reviewed, &quoted, &accepted, &completed,
	)
	if err != nil {
		return Project{}, err
	}
	if budget.Valid {
		v := int(budget.Int64)
		p.EstimatedBudget = &v
	}
	if weeks.Valid {
		v := int(weeks.Int64)
		p.EstimatedTimeline = &v
	}
	if complexity.Valid {
		p.ComplexityScore = &complexity.Float64
	}
	p.ReviewedAt = nullTime(reviewed)
	p.QuotedAt = nullTime(quoted)
	p.AcceptedAt = nullTime(accepted)
	p.CompletedAt = nullTime(completed)

	p.Goals, p.Features, p.Notes = []string{}, []string{}, []crm.Note{}
	for _, col := range []struct {
		raw  []byte
		dest any
	}{{goals, &p.Goals}, {features, &p.Features}, {notes, &p.Notes}} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return Project{}, err
		}
	}
	return p, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

// isUUID guards queries against the uuid id column, which rejects malformed
// input with an error instead of matching no row.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// jsonArray encodes nil slices as [] so the NOT NULL columns stay arrays.
func jsonArray[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.Marshal(v)
}
