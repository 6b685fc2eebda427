package activity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"leadcrm/internal/metrics"
	"leadcrm/pkg/logger"
)

// Service appends to and reads from the activity log.
//
// Append is strict and returns every failure. Record is the best-effort
// variant used by lifecycle mutations: a failed write is logged and counted,
// never returned, so the primary mutation still succeeds.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

var (
	ErrInvalidActivity = errors.New("activity: invalid activity")
	ErrNoRepository    = errors.New("activity: repository not configured")
)

func (s *Service) Append(ctx context.Context, a Activity) error {
	if s == nil || s.repo == nil {
		return ErrNoRepository
	}
	if (a.ContactID == "") == (a.ProjectID == "") {
		return ErrInvalidActivity
	}
	if a.Action == "" {
		return ErrInvalidActivity
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = s.clock().UTC()
	}
	return s.repo.Append(ctx, a)
}

// Record appends a and swallows any failure.
func (s *Service) Record(ctx context.Context, a Activity) {
	if err := s.Append(ctx, a); err != nil {
		metrics.RecordActivityLogFailure()
		logger.From(ctx).Warn("activity log write failed",
			"action", string(a.Action),
			"contact_id", a.ContactID,
			"project_id", a.ProjectID,
			"err", err,
		)
	}
}

// ListForContact returns the contact's activities, newest first.
// limit <= 0 means no cap; the cap is applied after the full read.
func (s *Service) ListForContact(ctx context.Context, contactID string, limit int) ([]Activity, error) {
	out, err := s.repo.ListByContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	return capped(out, limit), nil
}

// ListForProject returns the project's activities, newest first.
func (s *Service) ListForProject(ctx context.Context, projectID string, limit int) ([]Activity, error) {
	out, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return capped(out, limit), nil
}

// ListRecent returns the latest activities across both record kinds.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Activity, error) {
	out, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return capped(out, limit), nil
}

func capped(in []Activity, limit int) []Activity {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
