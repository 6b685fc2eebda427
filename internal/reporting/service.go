package reporting

import (
	"context"
	"errors"
	"math"

	"golang.org/x/sync/errgroup"

	"leadcrm/internal/activity"
	"leadcrm/internal/contacts"
	"leadcrm/internal/crm"
	"leadcrm/internal/estimate"
	"leadcrm/internal/projects"
)

var ErrNotConfigured = errors.New("reporting: source not configured")

type ContactSource interface {
	All(ctx context.Context) ([]contacts.Contact, error)
}

type ProjectSource interface {
	All(ctx context.Context) ([]projects.Project, error)
}

type ActivitySource interface {
	ListRecent(ctx context.Context, limit int) ([]activity.Activity, error)
}

type Service struct {
	contacts   ContactSource
	projects   ProjectSource
	activities ActivitySource
}

func NewService(c ContactSource, p ProjectSource, a ActivitySource) *Service {
	return &Service{contacts: c, projects: p, activities: a}
}

const DefaultRecentActivity = 20

var (
	contactStatuses = []contacts.Status{
		contacts.StatusNew, contacts.StatusInProgress, contacts.StatusResolved, contacts.StatusClosed, contacts.StatusSpam,
	}
	contactTypes = []contacts.ContactType{
		contacts.TypeGeneral, contacts.TypeBusiness, contacts.TypeSupport, contacts.TypePartnership, contacts.TypeCareers,
	}
	projectStatuses = []projects.Status{
		projects.StatusNew, projects.StatusReviewing, projects.StatusQuoted, projects.StatusAccepted,
		projects.StatusDeclined, projects.StatusInProgress, projects.StatusCompleted, projects.StatusCancelled,
	}
	projectTypes = []estimate.ProjectType{
		estimate.TypeWebsiteRedesign, estimate.TypeNewWebsite, estimate.TypeEcommerce,
		estimate.TypeWebApp, estimate.TypeMobileApp, estimate.TypeBranding,
	}
	priorities = []crm.Priority{crm.PriorityLow, crm.PriorityMedium, crm.PriorityHigh, crm.PriorityUrgent}
)

func (s *Service) ContactStats(ctx context.Context) (ContactStats, error) {
	if s.contacts == nil {
		return ContactStats{}, ErrNotConfigured
	}
	rows, err := s.contacts.All(ctx)
	if err != nil {
		return ContactStats{}, err
	}
	return SummarizeContacts(rows), nil
}

func (s *Service) ProjectStats(ctx context.Context) (ProjectStats, error) {
	if s.projects == nil {
		return ProjectStats{}, ErrNotConfigured
	}
	rows, err := s.projects.All(ctx)
	if err != nil {
		return ProjectStats{}, err
	}
	return SummarizeProjects(rows), nil
}

// Overview loads both stats blocks and the latest activity concurrently.
func (s *Service) Overview(ctx context.Context, recent int) (Overview, error) {
	if s.activities == nil {
		return Overview{}, ErrNotConfigured
	}
	if recent <= 0 {
		recent = DefaultRecentActivity
	}

	var out Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.ContactStats(gctx)
		out.Contacts = st
		return err
	})
	g.Go(func() error {
		st, err := s.ProjectStats(gctx)
		out.Projects = st
		return err
	})
	g.Go(func() error {
		acts, err := s.activities.ListRecent(gctx, recent)
		out.RecentActivity = acts
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	if out.RecentActivity == nil {
		out.RecentActivity = []activity.Activity{}
	}
	return out, nil
}

// SummarizeContacts is the pure aggregation behind ContactStats.
func SummarizeContacts(rows []contacts.Contact) ContactStats {
	out := ContactStats{
		ByStatus:   zeroed(contactStatuses),
		ByType:     zeroed(contactTypes),
		ByPriority: zeroed(priorities),
	}
	var resolved int
	var resolutionHours float64
	for _, c := range rows {
		out.Total++
		out.ByStatus[string(c.Status)]++
		out.ByType[string(c.Type)]++
		out.ByPriority[string(c.Priority)]++
		if c.AssignedTo == "" {
			out.Unassigned++
		}
		if c.ResolvedAt != nil {
			resolved++
			resolutionHours += c.ResolvedAt.Sub(c.CreatedAt).Hours()
		}
	}
	if resolved > 0 {
		out.AverageResolutionHours = round1(resolutionHours / float64(resolved))
	}
	return out
}

// SummarizeProjects is the pure aggregation behind ProjectStats.
func SummarizeProjects(rows []projects.Project) ProjectStats {
	out := ProjectStats{
		ByStatus:   zeroed(projectStatuses),
		ByType:     zeroed(projectTypes),
		ByPriority: zeroed(priorities),
	}
	var (
		budgetSum, timelineSum, complexitySum float64
		budgetN, timelineN, complexityN       int
	)
	for _, p := range rows {
		out.Total++
		out.ByStatus[string(p.Status)]++
		if p.Type != "" {
			out.ByType[string(p.Type)]++
		}
		out.ByPriority[string(p.Priority)]++
		if p.AssignedTo == "" {
			out.Unassigned++
		}
		if p.EstimatedBudget != nil {
			budgetSum += float64(*p.EstimatedBudget)
			budgetN++
			if open(p.Status) {
				out.PipelineValue += *p.EstimatedBudget
			}
		}
		if p.EstimatedTimeline != nil {
			timelineSum += float64(*p.EstimatedTimeline)
			timelineN++
		}
		if p.ComplexityScore != nil {
			complexitySum += *p.ComplexityScore
			complexityN++
		}
	}
	if budgetN > 0 {
		out.AverageBudget = math.Round(budgetSum / float64(budgetN))
	}
	if timelineN > 0 {
		out.AverageTimeline = round1(timelineSum / float64(timelineN))
	}
	if complexityN > 0 {
		out.AverageComplexity = round1(complexitySum / float64(complexityN))
	}
	return out
}

func open(s projects.Status) bool {
	switch s {
	case projects.StatusDeclined, projects.StatusCompleted, projects.StatusCancelled:
		return false
	default:
		return true
	}
}

func zeroed[T ~string](keys []T) map[string]int {
	m := make(map[string]int, len(keys))
	for _, k := range keys {
		m[string(k)] = 0
	}
	return m
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
