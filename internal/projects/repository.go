package projects

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("project not found")

// Repository is the document-store contract for project consultations.
type Repository interface {
	Get(ctx context.Context, id string) (Project, error)
	Insert(ctx context.Context, p Project) error
	Patch(ctx context.Context, id string, p Patch) error
	Delete(ctx context.Context, id string) error

	ListByIndex(ctx context.Context, idx Index, value string) ([]Project, error)
	// Search matches term against the description, newest first.
	Search(ctx context.Context, term string) ([]Project, error)
}
