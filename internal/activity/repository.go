package activity

import "context"

// Repository is the persistence contract for activities.
// It is append-only: there are no Update or Delete methods.
type Repository interface {
	Append(ctx context.Context, a Activity) error

	// The List methods return every matching activity, newest first.
	ListByContact(ctx context.Context, contactID string) ([]Activity, error)
	ListByProject(ctx context.Context, projectID string) ([]Activity, error)
	ListAll(ctx context.Context) ([]Activity, error)
}
