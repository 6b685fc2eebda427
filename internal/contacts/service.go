package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadcrm/internal/activity"
	"leadcrm/internal/crm"
	"leadcrm/internal/metrics"
)

// ActivityLog is the slice of the activity service contacts need.
type ActivityLog interface {
	Record(ctx context.Context, a activity.Activity)
	ListForContact(ctx context.Context, contactID string, limit int) ([]activity.Activity, error)
}

// UserDirectory resolves assignment targets.
type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service runs the contact lifecycle.
//
// Every successful mutation writes exactly one activity, after the primary
// write. A failed primary write aborts before any activity is written.
// There is no locking: concurrent patches to one contact race, last write wins.
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
	Name             string
	Email            string
	Phone            string
	Company          string
	Subject          string
	Message          string
	Type             ContactType
	Priority         crm.Priority
	Source           string
	UserAgent        string
	IPAddress        string
	Referrer         string
	GDPRConsent      *bool
	MarketingConsent *bool
}

func (in *CreateInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if in.Priority == "" {
		in.Priority = crm.PriorityMedium
	}
	if in.Source == "" {
		in.Source = DefaultSource
	}
}

func (in CreateInput) validate() error {
	switch {
	case in.Name == "":
		return crm.Invalid("name", "is required")
	case in.Email == "":
		return crm.Invalid("email", "is required")
	case !crm.ValidEmail(in.Email):
		return crm.Invalid("email", "invalid email format")
	case in.Message == "":
		return crm.Invalid("message", "is required")
	case in.Type == "":
		return crm.Invalid("contactType", "is required")
	case !in.Type.Valid():
		return crm.Invalid("contactType", "invalid contact type")
	case !in.Priority.Valid():
		return crm.Invalid("priority", "invalid priority")
	}
	return nil
}

// Create stores a new contact submission and returns its id.
func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return "", err
	}

	now := s.clock().UTC()
	c := Contact{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Email:            in.Email,
		Phone:            strings.TrimSpace(in.Phone),
		Company:          strings.TrimSpace(in.Company),
		Subject:          strings.TrimSpace(in.Subject),
		Message:          in.Message,
		Type:             in.Type,
		Priority:         in.Priority,
		Status:           StatusNew,
		Source:           in.Source,
		UserAgent:        in.UserAgent,
		IPAddress:        in.IPAddress,
		Referrer:         in.Referrer,
		GDPRConsent:      in.GDPRConsent,
		MarketingConsent: in.MarketingConsent,
		Notes:            []crm.Note{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return "", crm.Persistence("insert contact", err)
	}

	metrics.RecordSubmission(string(crm.KindContact))
	s.record(ctx, c.ID, activity.ActionContactCreated,
		fmt.Sprintf("Contact form submitted by %s", c.Name),
		map[string]any{"contactType": string(c.Type), "priority": string(c.Priority), "source": c.Source},
	)
	return c.ID, nil
}

func (s *Service) Get(ctx context.Context, id string) (Contact, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Contact{}, crm.NotFound("contact", id)
		}
		return Contact{}, crm.Persistence("get contact", err)
	}
	return c, nil
}

// UpdateStatus moves a contact to status. Any status may follow any other.
// The first entry into resolved stamps ResolvedAt; later entries keep it.
// A non-empty note is appended as a System note.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status, note string) (string, error) {
	if !status.Valid() {
		return "", crm.Invalid("status", "invalid status")
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	now := s.clock().UTC()
	p := Patch{Status: &status, UpdatedAt: crm.Touch(c.UpdatedAt, now)}
	if status == StatusResolved && c.ResolvedAt == nil {
		p.ResolvedAt = crm.StampOnce(c.ResolvedAt, now)
	}
	if note = strings.TrimSpace(note); note != "" {
		notes := crm.AppendNote(c.Notes, crm.Note{Content: note, Author: crm.SystemAuthor, Timestamp: now, Type: crm.NoteTypeNote})
		p.Notes = &notes
	}
	if err := s.patch(ctx, id, p); err != nil {
		return "", err
	}

	s.record(ctx, id, activity.ActionStatusChanged,
		fmt.Sprintf("Status changed from %s to %s", c.Status, status),
		map[string]any{"field": "status", "previousValue": string(c.Status), "newValue": string(status)},
	)
	return id, nil
}

// Assign hands the contact to an active staff member.
func (s *Service) Assign(ctx context.Context, id, userID, assignedBy string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", crm.Invalid("userId", "is required")
	}
	c, err := s.Get(ctx, id)
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

	p := Patch{AssignedTo: &userID, UpdatedAt: crm.Touch(c.UpdatedAt, s.clock().UTC())}
	if err := s.patch(ctx, id, p); err != nil {
		return "", err
	}

	meta := map[string]any{"field": "assignedTo", "previousValue": c.AssignedTo, "newValue": userID, "userId": userID}
	if assignedBy != "" {
		meta["assignedBy"] = assignedBy
	}
	s.record(ctx, id, activity.ActionContactAssigned, "Contact assigned", meta)
	return id, nil
}

type NoteInput struct {
	Content string
	Author  string
	Type    crm.NoteType
}

// AddNote appends a note. Calls, emails and other non-plain notes also stamp LastContactedAt.
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
	case !crm.ValidNoteType(crm.KindContact, in.Type):
		return "", crm.Invalid("type", "invalid note type")
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	now := s.clock().UTC()
	notes := crm.AppendNote(c.Notes, crm.Note{Content: in.Content, Author: in.Author, Timestamp: now, Type: in.Type})
	p := Patch{Notes: &notes, UpdatedAt: crm.Touch(c.UpdatedAt, now)}
	if in.Type != crm.NoteTypeNote {
		p.LastContactedAt = &now
	}
	if err := s.patch(ctx, id, p); err != nil {
		return "", err
	}

	s.record(ctx, id, activity.ActionNoteAdded,
		fmt.Sprintf("%s added by %s", in.Type, in.Author),
		map[string]any{"type": string(in.Type), "author": in.Author},
	)
	return id, nil
}

// Delete removes the contact when permanent, otherwise marks it spam.
func (s *Service) Delete(ctx context.Context, id string, permanent bool) (string, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if permanent {
		if err := s.repo.Delete(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", crm.NotFound("contact", id)
			}
			return "", crm.Persistence("delete contact", err)
		}
		s.record(ctx, id, activity.ActionContactDeleted, "Contact permanently deleted",
			map[string]any{"previousValue": string(c.Status)})
		return id, nil
	}

	spam := Status(crm.KindContact.SoftDeleteStatus())
	if err := s.patch(ctx, id, Patch{Status: &spam, UpdatedAt: crm.Touch(c.UpdatedAt, s.clock().UTC())}); err != nil {
		return "", err
	}
	s.record(ctx, id, activity.ActionContactMarkedSpam, "Contact marked as spam",
		map[string]any{"field": "status", "previousValue": string(c.Status), "newValue": string(spam)})
	return id, nil
}

// ListActivities returns the contact's activity trail, newest first.
func (s *Service) ListActivities(ctx context.Context, id string, limit int) ([]activity.Activity, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	out, err := s.activity.ListForContact(ctx, id, limit)
	if err != nil {
		return nil, crm.Persistence("list contact activities", err)
	}
	return out, nil
}

func (s *Service) patch(ctx context.Context, id string, p Patch) error {
	if err := s.repo.Patch(ctx, id, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return crm.NotFound("contact", id)
		}
		return crm.Persistence("patch contact", err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, id string, action activity.Action, details string, meta map[string]any) {
	metrics.RecordMutation(string(crm.KindContact), string(action))
	s.activity.Record(ctx, activity.Activity{
		ContactID: id,
		Action:    action,
		Details:   details,
		Metadata:  meta,
	})
}
