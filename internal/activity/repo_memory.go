package activity

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory append-only repository for tests and local runs.
//
// Setting FailAppends makes every Append fail with that error, which lets
// tests observe that callers survive a broken activity log.
type MemoryRepo struct {
	mu          sync.Mutex
	activities  []Activity
	FailAppends error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, a Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAppends != nil {
		return r.FailAppends
	}
	r.activities = append(r.activities, a)
	return nil
}

func (r *MemoryRepo) ListByContact(ctx context.Context, contactID string) ([]Activity, error) {
	return r.filter(func(a Activity) bool { return a.ContactID == contactID }), nil
}

func (r *MemoryRepo) ListByProject(ctx context.Context, projectID string) ([]Activity, error) {
	return r.filter(func(a Activity) bool { return a.ProjectID == projectID }), nil
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Activity, error) {
	return r.filter(func(Activity) bool { return true }), nil
}

// Activities returns a copy in insertion order.
func (r *MemoryRepo) Activities() []Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Activity, len(r.activities))
	copy(out, r.activities)
	return out
}

func (r *MemoryRepo) filter(keep func(Activity) bool) []Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Activity, 0)
	for _, a := range r.activities {
		if keep(a) {
			out = append(out, a)
		}
	}
	// newest first; equal timestamps keep the latest append first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
