package contacts

import (
	"context"
	"sort"
	"sync"

	"leadcrm/internal/crm"
)

// MemoryRepo is an in-memory contact store for tests and local runs.
// FailWrites, when set, is returned by Insert, Patch and Delete.
type MemoryRepo struct {
	mu         sync.Mutex
	rows       map[string]stored
	seq        int
	FailWrites error
}

type stored struct {
	c   Contact
	seq int
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{rows: map[string]stored{}} }

func (r *MemoryRepo) Get(ctx context.Context, id string) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return Contact{}, ErrNotFound
	}
	return clone(s.c), nil
}

func (r *MemoryRepo) Insert(ctx context.Context, c Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	r.seq++
	r.rows[c.ID] = stored{c: clone(c), seq: r.seq}
	return nil
}

func (r *MemoryRepo) Patch(ctx context.Context, id string, p Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	s, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	c := s.c
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.AssignedTo != nil {
		c.AssignedTo = *p.AssignedTo
	}
	if p.Notes != nil {
		c.Notes = append([]crm.Note(nil), (*p.Notes)...)
	}
	if p.ResolvedAt != nil {
		t := *p.ResolvedAt
		c.ResolvedAt = &t
	}
	if p.LastContactedAt != nil {
		t := *p.LastContactedAt
		c.LastContactedAt = &t
	}
	if !p.UpdatedAt.IsZero() {
		c.UpdatedAt = p.UpdatedAt
	}
	s.c = c
	r.rows[id] = s
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepo) ListByIndex(ctx context.Context, idx Index, value string) ([]Contact, error) {
	var match func(Contact) bool
	switch idx {
	case IndexStatus:
		match = func(c Contact) bool { return string(c.Status) == value }
	case IndexType:
		match = func(c Contact) bool { return string(c.Type) == value }
	case IndexPriority:
		match = func(c Contact) bool { return string(c.Priority) == value }
	case IndexAssignedTo:
		match = func(c Contact) bool { return c.AssignedTo == value }
	default:
		match = func(Contact) bool { return true }
	}
	return r.scan(match), nil
}

// Search matches whole tokens like the postgres full-text query does, so
// "pay" does not find "payment".
func (r *MemoryRepo) Search(ctx context.Context, term string) ([]Contact, error) {
	return r.scan(func(c Contact) bool { return crm.MatchesTerm(c.Message, term) }), nil
}

func (r *MemoryRepo) scan(match func(Contact) bool) []Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	hits := make([]stored, 0)
	for _, s := range r.rows {
		if match(s.c) {
			hits = append(hits, s)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if !hits[i].c.CreatedAt.Equal(hits[j].c.CreatedAt) {
			return hits[i].c.CreatedAt.After(hits[j].c.CreatedAt)
		}
		return hits[i].seq > hits[j].seq
	})
	out := make([]Contact, len(hits))
	for i, s := range hits {
		out[i] = clone(s.c)
	}
	return out
}

func clone(c Contact) Contact {
	c.Notes = append([]crm.Note(nil), c.Notes...)
	if c.Notes == nil {
		c.Notes = []crm.Note{}
	}
	return c
}
