package contacts

import (
	"context"
	"strings"

	"leadcrm/internal/crm"
)

func (f Filter) validate() error {
	switch {
	case f.Status != "" && !f.Status.Valid():
		return crm.Invalid("status", "invalid status")
	case f.Type != "" && !f.Type.Valid():
		return crm.Invalid("type", "invalid contact type")
	case f.Priority != "" && !f.Priority.Valid():
		return crm.Invalid("priority", "invalid priority")
	case f.Limit < 0:
		return crm.Invalid("limit", "must not be negative")
	}
	return nil
}

// index picks the lookup for f: Status, then Type, Priority, AssignedTo,
// falling back to creation time.
func (f Filter) index() (Index, string) {
	switch {
	case f.Status != "":
		return IndexStatus, string(f.Status)
	case f.Type != "":
		return IndexType, string(f.Type)
	case f.Priority != "":
		return IndexPriority, string(f.Priority)
	case f.AssignedTo != "":
		return IndexAssignedTo, f.AssignedTo
	default:
		return IndexCreated, ""
	}
}

// predicates turns every set field into a post-filter. Re-checking the
// indexed field is a no-op for rows read through that index.
func (f Filter) predicates() []func(Contact) bool {
	var preds []func(Contact) bool
	if f.Status != "" {
		preds = append(preds, func(c Contact) bool { return c.Status == f.Status })
	}
	if f.Type != "" {
		preds = append(preds, func(c Contact) bool { return c.Type == f.Type })
	}
	if f.Priority != "" {
		preds = append(preds, func(c Contact) bool { return c.Priority == f.Priority })
	}
	if f.AssignedTo != "" {
		preds = append(preds, func(c Contact) bool { return c.AssignedTo == f.AssignedTo })
	}
	return preds
}

// List scans one index, applies the remaining filters, then the limit.
func (s *Service) List(ctx context.Context, f Filter) ([]Contact, error) {
	out, _, err := s.Page(ctx, "", f)
	return out, err
}

// Search runs a full-text match on the message and applies every filter afterwards.
// A blank term behaves like List.
func (s *Service) Search(ctx context.Context, term string, f Filter) ([]Contact, error) {
	out, _, err := s.Page(ctx, term, f)
	return out, err
}

// Page is Search that also reports how many rows matched before the limit.
func (s *Service) Page(ctx context.Context, term string, f Filter) ([]Contact, int, error) {
	rows, err := s.matches(ctx, strings.TrimSpace(term), f)
	if err != nil {
		return nil, 0, err
	}
	return crm.Cap(rows, f.Limit), len(rows), nil
}

func (s *Service) matches(ctx context.Context, term string, f Filter) ([]Contact, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if term == "" {
		idx, value := f.index()
		rows, err := s.repo.ListByIndex(ctx, idx, value)
		if err != nil {
			return nil, crm.Persistence("list contacts", err)
		}
		return crm.Keep(rows, f.predicates()...), nil
	}
	rows, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, crm.Persistence("search contacts", err)
	}
	return crm.Keep(rows, f.predicates()...), nil
}

// All returns every contact, newest first.
func (s *Service) All(ctx context.Context) ([]Contact, error) {
	return s.List(ctx, Filter{})
}
