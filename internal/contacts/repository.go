package contacts

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("contact not found")

// Repository is the document-store contract for contacts.
type Repository interface {
	Get(ctx context.Context, id string) (Contact, error)
	Insert(ctx context.Context, c Contact) error
	Patch(ctx context.Context, id string, p Patch) error
	Delete(ctx context.Context, id string) error

	// ListByIndex scans one index for value, newest first. IndexCreated ignores value.
	ListByIndex(ctx context.Context, idx Index, value string) ([]Contact, error)
	// Search matches term against the message body, newest first.
	Search(ctx context.Context, term string) ([]Contact, error)
}
