package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"leadcrm/internal/crm"
	"leadcrm/pkg/utils"
)

// PostgresRepo stores contacts in the contacts table (see internal/database).
// Notes live in a JSONB column and are replaced wholesale on patch.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const selectContacts = `
SELECT id, name, email, phone, company, subject, message, contact_type, priority, status,
       source, user_agent, ip_address, referrer, gdpr_consent, marketing_consent,
       COALESCE(assigned_to, ''), notes, created_at, updated_at, resolved_at, last_contacted_at
FROM contacts
`

var indexColumns = map[Index]string{
	IndexStatus:     "status",
	IndexType:       "contact_type",
	IndexPriority:   "priority",
	IndexAssignedTo: "assigned_to",
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Contact, error) {
	if !isUUID(id) {
		return Contact{}, ErrNotFound
	}
	c, err := scanContact(r.db.QueryRowContext(ctx, selectContacts+`WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) Insert(ctx context.Context, c Contact) error {
	const q = `
INSERT INTO contacts (
	id, name, email, phone, company, subject, message, contact_type, priority, status,
	source, user_agent, ip_address, referrer, gdpr_consent, marketing_consent,
	assigned_to, notes, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
	$11, $12, $13, $14, $15, $16,
	NULLIF($17, ''), $18, $19, $20
)
`
	notes, err := json.Marshal(nonNilNotes(c.Notes))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Subject, c.Message, string(c.Type), string(c.Priority), string(c.Status),
		c.Source, c.UserAgent, c.IPAddress, c.Referrer, c.GDPRConsent, c.MarketingConsent,
		c.AssignedTo, notes, c.CreatedAt, c.UpdatedAt,
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) ListByIndex(ctx context.Context, idx Index, value string) ([]Contact, error) {
	col, ok := indexColumns[idx]
	if !ok {
		return r.query(ctx, selectContacts+`ORDER BY created_at DESC`)
	}
	return r.query(ctx, selectContacts+fmt.Sprintf(`WHERE %s = $1 ORDER BY created_at DESC`, col), value)
}

func (r *PostgresRepo) Search(ctx context.Context, term string) ([]Contact, error) {
	const where = `WHERE to_tsvector('simple', message) @@ plainto_tsquery('simple', $1) ORDER BY created_at DESC`
	return r.query(ctx, selectContacts+where, term)
}

func (r *PostgresRepo) query(ctx context.Context, q string, args ...any) ([]Contact, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// buildPatch returns an empty query when p changes nothing.
func buildPatch(id string, p Patch) (string, []any, error) {
	b := utils.NewUpdate("contacts")
	if p.Status != nil {
		b.Set("status", string(*p.Status))
	}
	if p.AssignedTo != nil {
		b.Set("assigned_to", *p.AssignedTo)
	}
	if p.Notes != nil {
		notes, err := json.Marshal(nonNilNotes(*p.Notes))
		if err != nil {
			return "", nil, err
		}
		b.Set("notes", notes)
	}
	if p.ResolvedAt != nil {
		b.Set("resolved_at", *p.ResolvedAt)
	}
	if p.LastContactedAt != nil {
		b.Set("last_contacted_at", *p.LastContactedAt)
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

func scanContact(s scanner) (Contact, error) {
	var (
		c                 Contact
		notes             []byte
		gdpr, marketing   sql.NullBool
		resolved, touched sql.NullTime
	)
	err := s.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Subject, &c.Message, &c.Type, &c.Priority, &c.Status,
		&c.Source, &c.UserAgent, &c.IPAddress, &c.Referrer, &gdpr, &marketing,
		&c.AssignedTo, &notes, &c.CreatedAt, &c.UpdatedAt, &resolved, &touched,
	)
	if err != nil {
		return Contact{}, err
	}
	if gdpr.Valid {
		c.GDPRConsent = &gdpr.Bool
	}
	if marketing.Valid {
		c.MarketingConsent = &marketing.Bool
	}
	if resolved.Valid {
		c.ResolvedAt = &resolved.Time
	}
	if touched.Valid {
		c.LastContactedAt = &touched.Time
	}
	c.Notes = []crm.Note{}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &c.Notes); err != nil {
			return Contact{}, err
		}
	}
	return c, nil
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

func nonNilNotes(n []crm.Note) []crm.Note {
	if n == nil {
		return []crm.Note{}
	}
	return n
}
