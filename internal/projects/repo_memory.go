package projects

import (
	"context"
	"sort"
	"sync"

	"leadcrm/internal/crm"
)

// MemoryRepo is an in-memory project store for tests and local runs.
// FailWrites, when set, is returned by Insert, Patch and Delete.
type MemoryRepo struct {
	mu         sync.Mutex
	rows       map[string]stored
	seq        int
	FailWrites error
}

type stored struct {
	p   Project
	seq int
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{rows: map[string]stored{}} }

func (r *MemoryRepo) Get(ctx context.Context, id string) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return clone(s.p), nil
}

func (r *MemoryRepo) Insert(ctx context.Context, p Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	r.seq++
	r.rows[p.ID] = stored{p: clone(p), seq: r.seq}
	return nil
}

func (r *MemoryRepo) Patch(ctx context.Context, id string, patch Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrites != nil {
		return r.FailWrites
	}
	s, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	p := s.p
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.AssignedTo != nil {
		p.AssignedTo = *patch.AssignedTo
	}
	if patch.Notes != nil {
		p.Notes = append([]crm.Note(nil), (*patch.Notes)...)
	}
	p.ReviewedAt = pick(patch.ReviewedAt, p.ReviewedAt)
	p.QuotedAt = pick(patch.QuotedAt, p.QuotedAt)
	p.AcceptedAt = pick(patch.AcceptedAt, p.AcceptedAt)
	p.CompletedAt = pick(patch.CompletedAt, p.CompletedAt)
	p.EstimatedBudget = pick(patch.EstimatedBudget, p.EstimatedBudget)
	p.EstimatedTimeline = pick(patch.EstimatedTimeline, p.EstimatedTimeline)
	p.ComplexityScore = pick(patch.ComplexityScore, p.ComplexityScore)
	if !patch.UpdatedAt.IsZero() {
		p.UpdatedAt = patch.UpdatedAt
	}
	s.p = p
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

func (r *MemoryRepo) ListByIndex(ctx context.Context, idx Index, value string) ([]Project, error) {
	var match func(Project) bool
	switch idx {
	case IndexStatus:
		match = func(p Project) bool { return string(p.Status) == value }
	case IndexType:
		match = func(p Project) bool { return string(p.Type) == value }
	case IndexPriority:
		match = func(p Project) bool { return string(p.Priority) == value }
	case IndexAssignedTo:
		match = func(p Project) bool { return p.AssignedTo == value }
	default:
		match = func(Project) bool { return true }
	}
	return r.scan(match), nil
}

// Search matches whole tokens like the postgres full-text query does, so
// "pay" does not find "payment".
func (r *MemoryRepo) Search(ctx context.Context, term string) ([]Project, error) {
	return r.scan(func(p Project) bool { return crm.MatchesTerm(p.Description, term) }), nil
}

func (r *MemoryRepo) scan(match func(Project) bool) []Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	hits := make([]stored, 0)
	for _, s := range r.rows {
		if match(s.p) {
			hits = append(hits, s)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if !hits[i].p.CreatedAt.Equal(hits[j].p.CreatedAt) {
			return hits[i].p.CreatedAt.After(hits[j].p.CreatedAt)
		}
		return hits[i].seq > hits[j].seq
	})
	out := make([]Project, len(hits))
	for i, s := range hits {
		out[i] = clone(s.p)
	}
	return out
}

// pick returns a copy of next when set, otherwise cur.
func pick[T any](next, cur *T) *T {
	if next == nil {
		return cur
	}
	v := *next
	return &v
}

func clone(p Project) Project {
	p.Notes = append([]crm.Note{}, p.Notes...)
	p.Goals = append([]string{}, p.Goals...)
	p.Features = append([]string{}, p.Features...)
	return p
}
