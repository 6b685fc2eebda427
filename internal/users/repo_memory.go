package users

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory user store for tests and local runs.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{users: map[string]User{}} }

func (r *MemoryRepo) Create(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
