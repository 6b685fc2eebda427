package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadcrm/internal/activity"
	"leadcrm/internal/contacts"
	"leadcrm/internal/crm"
	"leadcrm/internal/estimate"
	"leadcrm/internal/projects"
)

type contactRows []contacts.Contact

func (r contactRows) All(context.Context) ([]contacts.Contact, error) { return r, nil }

type projectRows []projects.Project

func (r projectRows) All(context.Context) ([]projects.Project, error) { return r, nil }

type activityRows []activity.Activity

func (r activityRows) ListRecent(_ context.Context, limit int) ([]activity.Activity, error) {
	if limit > 0 && len(r) > limit {
		return r[:limit], nil
	}
	return r, nil
}

type failingProjects struct{}

func (failingProjects) All(context.Context) ([]projects.Project, error) {
	return nil, errors.New("db down")
}

func intp(v int) *int              { return &v }
func floatp(v float64) *float64    { return &v }
func timep(t time.Time) *time.Time { return &t }

func TestStats_EmptyCollectionsAreZero(t *testing.T) {
	svc := NewService(contactRows(nil), projectRows(nil), activityRows(nil))
	ctx := context.Background()

	cs, err := svc.ContactStats(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cs.Total != 0 || cs.Unassigned != 0 || cs.AverageResolutionHours != 0 {
		t.Fatalf("expected zeros, got %+v", cs)
	}
	for k, v := range cs.ByStatus {
		if v != 0 {
			t.Fatalf("expected zero for %s", k)
		}
	}
	if _, ok := cs.ByStatus["resolved"]; !ok {
		t.Fatalf("expected every status key present")
	}

	ps, err := svc.ProjectStats(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ps.Total != 0 || ps.AverageBudget != 0 || ps.AverageTimeline != 0 || ps.AverageComplexity != 0 || ps.PipelineValue != 0 {
		t.Fatalf("expected zeros, got %+v", ps)
	}
}

func TestContactStats_Tallies(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := contactRows{
		{Status: contacts.StatusNew, Type: contacts.TypeBusiness, Priority: crm.PriorityHigh, CreatedAt: created},
		{Status: contacts.StatusResolved, Type: contacts.TypeSupport, Priority: crm.PriorityMedium, AssignedTo: "u1",
			CreatedAt: created, ResolvedAt: timep(created.Add(10 * time.Hour))},
		{Status: contacts.StatusResolved, Type: contacts.TypeSupport, Priority: crm.PriorityMedium,
			CreatedAt: created, ResolvedAt: timep(created.Add(20 * time.Hour))},
	}
	st := SummarizeContacts(rows)
	if st.Total != 3 || st.ByStatus["resolved"] != 2 || st.ByType["support"] != 2 || st.ByPriority["high"] != 1 {
		t.Fatalf("unexpected tallies %+v", st)
	}
	if st.Unassigned != 2 {
		t.Fatalf("expected 2 unassigned, got %d", st.Unassigned)
	}
	if st.AverageResolutionHours != 15 {
		t.Fatalf("expected 15h average, got %v", st.AverageResolutionHours)
	}
}

func TestProjectStats_AveragesOnlyPresentFields(t *testing.T) {
	rows := projectRows{
		{Status: projects.StatusNew, Type: estimate.TypeEcommerce, Priority: crm.PriorityHigh,
			EstimatedBudget: intp(30000), EstimatedTimeline: intp(10), ComplexityScore: floatp(6)},
		{Status: projects.StatusCompleted, Type: estimate.TypeBranding, Priority: crm.PriorityLow,
			EstimatedBudget: intp(6000), ComplexityScore: floatp(2.5)},
		{Status: projects.StatusReviewing, Priority: crm.PriorityMedium},
	}
	st := SummarizeProjects(rows)
	if st.Total != 3 {
		t.Fatalf("expected 3, got %d", st.Total)
	}
	if st.AverageBudget != 18000 {
		t.Fatalf("expected 18000, got %v", st.AverageBudget)
	}
	if st.AverageTimeline != 10 {
		t.Fatalf("expected 10, got %v", st.AverageTimeline)
	}
	if st.AverageComplexity != 4.3 {
		t.Fatalf("expected 4.3, got %v", st.AverageComplexity)
	}
	if st.PipelineValue != 30000 {
		t.Fatalf("expected only open projects in pipeline, got %d", st.PipelineValue)
	}
	if st.ByType["ecommerce"] != 1 || st.ByStatus["reviewing"] != 1 {
		t.Fatalf("unexpected tallies %+v", st)
	}
}

func TestOverview(t *testing.T) {
	acts := activityRows{{ContactID: "c1", Action: activity.ActionContactCreated}, {ProjectID: "p1", Action: activity.ActionProjectCreated}}
	svc := NewService(contactRows{{Status: contacts.StatusNew}}, projectRows(nil), acts)

	ov, err := svc.Overview(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ov.Contacts.Total != 1 || ov.Projects.Total != 0 || len(ov.RecentActivity) != 1 {
		t.Fatalf("unexpected overview %+v", ov)
	}

	broken := NewService(contactRows(nil), failingProjects{}, acts)
	if _, err := broken.Overview(context.Background(), 0); err == nil {
		t.Fatalf("expected error from failing source")
	}
}
