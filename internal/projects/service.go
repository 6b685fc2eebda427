package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadcrm/internal/activity"
	"leadcrm/internal/crm"
	"leadcrm/internal/estimate"
	"leadcrm/internal/metrics"
)

type ActivityLog interface {
	Record(ctx context.Context, a activity.Activity)
	ListForProject(ctx context.Context, projectID string, limit int) ([]activity.Activity, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service runs the project-consultation lifecycle.
//
// Estimates are computed once, before the first write. Editing the intake
// later does not recompute them; only UpdateEstimates changes them.
type Service struct {
	repo     Repository
	activity ActivityLog
	users    UserDirectory
	clock    func() time.Time
}

func NewService(repo Repository, log ActivityLog, users UserDirectory) *Service {
	return &Service{repo: repo, activity: log, users: users, clock: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

type CreateInput struct {
	Name              string
	Description       string
	Type              estimate.ProjectType
	Urgency           estimate.Urgency
	HasContent        estimate.ContentReadiness
	Industry          string
	TargetAudience    string
	ExistingWebsite   string
	Goals             []string
	Features          []string
	Timeline          string
	Budget            string
	DesignPreferences string
	Contact           ContactInfo
	Company           string
	PreferredContact  string
	AdditionalInfo    string
	Source            string
	UserAgent         string
	IPAddress         string
	Referrer          string
}

// Nearly everything is optional; only values that are present get checked.
func (in CreateInput) validate() error {
	switch {
	case in.Contact.Email != "" && !crm.ValidEmail(in.Contact.Email):
		return crm.Invalid("contact.email", "invalid email format")
	case in.Type != "" && !in.Type.Valid():
		return crm.Invalid("type", "invalid project type")
	case in.Urgency != "" && !in.Urgency.Valid():
		return crm.Invalid("urgency", "invalid urgency")
	case in.HasContent != "" && !in.HasContent.Valid():
		return crm.Invalid("hasContent", "invalid content readiness")
	}
	return nil
}

// Create computes the estimates, stores the intake and returns it.
// It returns the whole project rather than an id so the caller can echo
// the computed estimates back to the submitter.
func (s *Service) Create(ctx context.Context, in CreateInput) (Project, error) {
	in.Contact.Email = strings.TrimSpace(in.Contact.Email)
	if err := in.validate(); err != nil {
		return Project{}, err
	}

	est := estimate.Compute(estimate.Input{
		Type:       in.Type,
		Features:   in.Features,
		Urgency:    in.Urgency,
		HasContent: in.HasContent,
	})

	priority := crm.PriorityMedium
	if in.Urgency != "" {
		priority = crm.Priority(in.Urgency)
	}
	source := in.Source
	if source == "" {
		source = DefaultSource
	}

	now := s.clock().UTC()
	p := Project{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(in.Name),
		Description:       strings.TrimSpace(in.Description),
		Type:              in.Type,
		Urgency:           in.Urgency,
		Priority:          priority,
		HasContent:        in.HasContent,
		Industry:          in.Industry,
		TargetAudience:    in.TargetAudience,
		ExistingWebsite:   in.ExistingWebsite,
		Goals:             append([]string{}, in.Goals...),
		Features:          append([]string{}, in.Features...),
		Timeline:          in.Timeline,
		Budget:            in.Budget,
		DesignPreferences: in.DesignPreferences,
		Contact:           in.Contact,
		Company:           in.Company,
		PreferredContact:  in.PreferredContact,
		AdditionalInfo:    in.AdditionalInfo,
		Status:            StatusNew,
		EstimatedBudget:   &est.Budget,
		EstimatedTimeline: &est.Timeline,
		ComplexityScore:   &est.Complexity,
		Source:            source,
		UserAgent:         in.UserAgent,
		IPAddress:         in.IPAddress,
		Referrer:          in.Referrer,
		Notes:             []crm.Note{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return Project{}, crm.Persistence("insert project", err)
	}

	metrics.RecordSubmission(string(crm.KindProject))
	who := p.Contact.Name
	if who == "" {
		who = p.Name
	}
	s.record(ctx, p.ID, activity.ActionProjectCreated,
		strings.TrimSpace(fmt.Sprintf("Project consultation submitted %s", byLine(who))),
		map[string]any{
			"type":              string(p.Type),
			"estimatedBudget":   est.Budget,
			"estimatedTimeline": est.Timeline,
			"complexityScore":   est.Complexity,
		},
	)
	return p, nil
}

func byLine(who string) string {
	if who == "" {
		return ""
	}
	return "by " + who
}

func (s *Service) Get(ctx context.Context, id string) (Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Project{}, crm.NotFound("project", id)
		}
		return Project{}, crm.Persistence("get project", err)
	}
	return p, nil
}

// UpdateStatus moves a project to status. Any status may follow any other.
// First entry into reviewing, quoted, accepted or completed stamps the matching milestone.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status, note string) (string, error) {
	if !status.Valid() {
		return "", crm.Invalid("status", "invalid status")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	now := s.clock().UTC()
	patch := Patch{Status: &status, UpdatedAt: crm.Touch(p.UpdatedAt, now)}
	switch status {
	case StatusReviewing:
		if p.ReviewedAt == nil {
			patch.ReviewedAt = crm.StampOnce(p.ReviewedAt, now)
		}
	case StatusQuoted:
		if p.QuotedAt == nil {
			patch.QuotedAt = crm.StampOnce(p.QuotedAt, now)
		}
	case StatusAccepted:
		if p.AcceptedAt == nil {
			patch.AcceptedAt = crm.StampOnce(p.AcceptedAt, now)
		}
	case StatusCompleted:
		if p.CompletedAt == nil {
			patch.CompletedAt = crm.StampOnce(p.CompletedAt, now)
		}
	}
	if note = strings.TrimSpace(note); note != "" {
		notes := crm.AppendNote(p.Notes, crm.Note{Content: note, Author: crm.SystemAuthor, Timestamp: now, Type: crm.NoteTypeNote})
		patch.Notes = &notes
	}
	if err := s.patch(ctx, id, patch); err != nil {
		return "", err
	}

	s.record(ctx, id, activity.ActionStatusChanged,
		fmt.Sprintf("Status changed from %s to %s", p.Status, status),
		map[string]any{"field": "status", "previousValue": string(p.Status), "newValue": string(status)},
	)
	return id, nil
}

// Assign hands the project to an active staff member.
func (s *Service) Assign(ctx context.Context, id, userID, assignedBy string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", crm.Invalid("userId", "is required")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", crm.NotFound("user", userID)
	}

	if err := s.patch(ctx, id, Patch{AssignedTo: &userID, UpdatedAt: crm.Touch(p.UpdatedAt, s.clock().UTC())}); err != nil {
		return "", err
	}

	meta := map[string]any{"field": "assignedTo", "previousValue": p.AssignedTo, "newValue": userID, "userId": userID}
	if assignedBy != "" {
		meta["assignedBy"] = assignedBy
	}
	s.record(ctx, id, activity.ActionProjectAssigned, "Project assigned", meta)
	return id, nil
}

type NoteInput struct {
	Content string
	Author  string
	Type    crm.NoteType
}

// AddNote appends a note. Meeting notes are allowed on projects.
func (s *Service) AddNote(ctx context.Context, id string, in NoteInput) (string, error) {
	in.Content = strings.TrimSpace(in.Content)
	in.Author = strings.TrimSpace(in.Author)
	if in.Type == "" {
		in.Type = crm.NoteTypeNote
	}
	switch {
	case in.Content == "":
		return "", crm.Invalid("content", "is required")
	case in.Author == "":
		return "", crm.Invalid("author", "is required")
	case !crm.ValidNoteType(crm.KindProject, in.Type):
		return "", crm.Invalid("type", "invalid note type")
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	now := s.clock().UTC()
	notes := crm.AppendNote(p.Notes, crm.Note{Content: in.Content, Author: in.Author, Timestamp: now, Type: in.Type})
	if err := s.patch(ctx, id, Patch{Notes: &notes, UpdatedAt: crm.Touch(p.UpdatedAt, now)}); err != nil {
		return "", err
	}

	s.record(ctx, id, activity.ActionNoteAdded,
		fmt.Sprintf("%s added by %s", in.Type, in.Author),
		map[string]any{"type": string(in.Type), "author": in.Author},
	)
	return id, nil
}

// Delete removes the project when permanent, otherwise cancels it.
func (s *Service) Delete(ctx context.Context, id string, permanent bool) (string, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if permanent {
		if err := s.repo.Delete(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", crm.NotFound("project", id)
			}
			return "", crm.Persistence("delete project", err)
		}
		s.record(ctx, id, activity.ActionProjectDeleted, "Project permanently deleted",
			map[string]any{"previousValue": string(p.Status)})
		return id, nil
	}

	cancelled := Status(crm.KindProject.SoftDeleteStatus())
	if err := s.patch(ctx, id, Patch{Status: &cancelled, UpdatedAt: crm.Touch(p.UpdatedAt, s.clock().UTC())}); err != nil {
		return "", err
	}
	s.record(ctx, id, activity.ActionProjectCancelled, "Project cancelled",
		map[string]any{"field": "status", "previousValue": string(p.Status), "newValue": string(cancelled)})
	return id, nil
}

// EstimatesInput overrides some or all estimates. Nil fields are left alone.
type EstimatesInput struct {
	Budget          *int
	Timeline        *int
	ComplexityScore *float64
}

// UpdateEstimates applies an admin override of the stored estimates.
func (s *Service) UpdateEstimates(ctx context.Context, id string, in EstimatesInput) (string, error) {
	switch {
	case in.Budget == nil && in.Timeline == nil && in.ComplexityScore == nil:
		return "", crm.Invalid("estimates", "at least one of budget, timeline, complexityScore is required")
	case in.Budget != nil && *in.Budget < 0:
		return "", crm.Invalid("budget", "must not be negative")
	case in.Timeline != nil && *in.Timeline < 0:
		return "", crm.Invalid("timeline", "must not be negative")
	case in.ComplexityScore != nil && *in.ComplexityScore < 0:
		return "", crm.Invalid("complexityScore", "must not be negative")
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	patch := Patch{
		EstimatedBudget:   in.Budget,
		EstimatedTimeline: in.Timeline,
		ComplexityScore:   in.ComplexityScore,
		UpdatedAt:         crm.Touch(p.UpdatedAt, s.clock().UTC()),
	}
	if err := s.patch(ctx, id, patch); err != nil {
		return "", err
	}

	prev, next := map[string]any{}, map[string]any{}
	if in.Budget != nil {
		prev["estimatedBudget"], next["estimatedBudget"] = deref(p.EstimatedBudget), *in.Budget
	}
	if in.Timeline != nil {
		prev["estimatedTimeline"], next["estimatedTimeline"] = deref(p.EstimatedTimeline), *in.Timeline
	}
	if in.ComplexityScore != nil {
		prev["complexityScore"], next["complexityScore"] = deref(p.ComplexityScore), *in.ComplexityScore
	}
	s.record(ctx, id, activity.ActionEstimatesUpdated, "Estimates updated",
		map[string]any{"previousValue": prev, "newValue": next})
	return id, nil
}

// ListActivities returns the project's activity trail, newest first.
func (s *Service) ListActivities(ctx context.Context, id string, limit int) ([]activity.Activity, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	out, err := s.activity.ListForProject(ctx, id, limit)
	if err != nil {
		return nil, crm.Persistence("list project activities", err)
	}
	return out, nil
}

func (s *Service) patch(ctx context.Context, id string, p Patch) error {
	if err := s.repo.Patch(ctx, id, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return crm.NotFound("project", id)
		}
		return crm.Persistence("patch project", err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, id string, action activity.Action, details string, meta map[string]any) {
	metrics.RecordMutation(string(crm.KindProject), string(action))
	s.activity.Record(ctx, activity.Activity{
		ProjectID: id,
		Action:    action,
		Details:   details,
		Metadata:  meta,
	})
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
