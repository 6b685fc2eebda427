package projects

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
		return crm.Invalid("type", "invalid project type")
	case f.Priority != "" && !f.Priority.Valid():
		return crm.Invalid("priority", "invalid priority")
	case f.Limit < 0:
		return crm.Invalid("limit", "must not be negative")
	}
	return nil
}

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

func (f Filter) predicates() []func(Project) bool {
	var preds []func(Project) bool
	if f.Status != "" {
		preds = append(preds, func(p Project) bool { return p.Status == f.Status })
	}
	if f.Type != "" {
		preds = append(preds, func(p Project) bool { return p.Type == f.Type })
	}
	if f.Priority != "" {
		preds = append(preds, func(p Project) bool { return p.Priority == f.Priority })
	}
	if f.AssignedTo != "" {
		preds = append(preds, func(p Project) bool { return p.AssignedTo == f.AssignedTo })
	}
	return preds
}

// List scans one index, applies the remaining filters, then the limit.
func (s *Service) List(ctx context.Context, f Filter) ([]Project, error) {
	out, _, err := s.Page(ctx, "", f)
	return out, err
}

// Search runs a full-text match on the description and applies every filter afterwards.
// A blank term behaves like List.
func (s *Service) Search(ctx context.Context, term string, f Filter) ([]Project, error) {
	out, _, err := s.Page(ctx, term, f)
	return out, err
}

// Page is Search that also reports how many rows matched before the limit.
func (s *Service) Page(ctx context.Context, term string, f Filter) ([]Project, int, error) {
	rows, err := s.matches(ctx, strings.TrimSpace(term), f)
	if err != nil {
		return nil, 0, err
	}
	return crm.Cap(rows, f.Limit), len(rows), nil
}

func (s *Service) matches(ctx context.Context, term string, f Filter) ([]Project, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if term == "" {
		idx, value := f.index()
		rows, err := s.repo.ListByIndex(ctx, idx, value)
		if err != nil {
			return nil, crm.Persistence("list projects", err)
		}
		return crm.Keep(rows, f.predicates()...), nil
	}
	rows, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, crm.Persistence("search projects", err)
	}
	return crm.Keep(rows, f.predicates()...), nil
}

// All returns every project, newest first.
func (s *Service) All(ctx context.Context) ([]Project, error) {
	return s.List(ctx, Filter{})
}
