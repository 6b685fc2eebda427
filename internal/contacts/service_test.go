package contacts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadcrm/internal/activity"
	"leadcrm/internal/crm"
)

type fakeUsers map[string]bool

func (f fakeUsers) Exists(_ context.Context, id string) (bool, error) { return f[id], nil }

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

type fixture struct {
	svc     *Service
	repo    *MemoryRepo
	actRepo *activity.MemoryRepo
	clock   *stepClock
}

func newFixture() *fixture {
	repo := NewMemoryRepo()
	actRepo := activity.NewMemoryRepo()
	clock := &stepClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(repo, activity.NewService(actRepo), fakeUsers{"u1": true}).WithClock(clock.Now)
	return &fixture{svc: svc, repo: repo, actRepo: actRepo, clock: clock}
}

func validInput() CreateInput {
	return CreateInput{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Message: "We need a new landing page",
		Type:    TypeBusiness,
	}
}

func (f *fixture) create(t *testing.T, in CreateInput) string {
	t.Helper()
	id, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	return id
}

func TestCreate_DefaultsAndActivity(t *testing.T) {
	f := newFixture()
	id := f.create(t, validInput())

	c, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, c.Status)
	assert.Equal(t, crm.PriorityMedium, c.Priority)
	assert.Equal(t, DefaultSource, c.Source)
	assert.Empty(t, c.Notes)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	acts := f.actRepo.Activities()
	require.Len(t, acts, 1)
	assert.Equal(t, activity.ActionContactCreated, acts[0].Action)
	assert.Equal(t, id, acts[0].ContactID)
	assert.Empty(t, acts[0].ProjectID)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	mutate := []func(*CreateInput){
		func(in *CreateInput) { in.Name = "  " },
		func(in *CreateInput) { in.Email = "" },
		func(in *CreateInput) { in.Email = "not-an-email" },
		func(in *CreateInput) { in.Message = "" },
		func(in *CreateInput) { in.Type = "" },
		func(in *CreateInput) { in.Type = "sales" },
		func(in *CreateInput) { in.Priority = "critical" },
	}
	for i, m := range mutate {
		in := validInput()
		m(&in)
		_, err := f.svc.Create(context.Background(), in)
		var verr *crm.ValidationError
		assert.ErrorAs(t, err, &verr, "case %d", i)
		assert.ErrorIs(t, err, crm.ErrValidation, "case %d", i)
	}
	assert.Empty(t, f.actRepo.Activities(), "validation failures must not log activities")
}

func TestUpdateStatus_ResolvedStampedOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, validInput())

	_, err := f.svc.UpdateStatus(ctx, id, StatusResolved, "")
	require.NoError(t, err)
	first, _ := f.svc.Get(ctx, id)
	require.NotNil(t, first.ResolvedAt)

	_, err = f.svc.UpdateStatus(ctx, id, StatusResolved, "")
	require.NoError(t, err)
	second, _ := f.svc.Get(ctx, id)
	require.NotNil(t, second.ResolvedAt)
	assert.True(t, first.ResolvedAt.Equal(*second.ResolvedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	// leaving and re-entering keeps the original stamp too
	_, err = f.svc.UpdateStatus(ctx, id, StatusInProgress, "")
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, id, StatusResolved, "")
	require.NoError(t, err)
	third, _ := f.svc.Get(ctx, id)
	assert.True(t, first.ResolvedAt.Equal(*third.ResolvedAt))

	acts := f.actRepo.Activities()
	require.Len(t, acts, 5)
	assert.Equal(t, activity.ActionStatusChanged, acts[1].Action)
	assert.Equal(t, "new", acts[1].Metadata["previousValue"])
	assert.Equal(t, "resolved", acts[1].Metadata["newValue"])
}

func TestUpdateStatus_AnyTransitionAllowed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, validInput())

	for _, st := range []Status{StatusClosed, StatusNew, StatusSpam, StatusInProgress} {
		_, err := f.svc.UpdateStatus(ctx, id, st, "")
		require.NoError(t, err, "transition to %s", st)
	}
	_, err := f.svc.UpdateStatus(ctx, id, "archived", "")
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestUpdateStatus_NoteAuthoredBySystem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, validInput())

	_, err := f.svc.UpdateStatus(ctx, id, StatusInProgress, "picked up by sales")
	require.NoError(t, err)
	c, _ := f.svc.Get(ctx, id)
	require.Len(t, c.Notes, 1)
	assert.Equal(t, crm.SystemAuthor, c.Notes[0].Author)
	assert.Equal(t, "picked up by sales", c.Notes[0].Content)
	assert.Len(t, f.actRepo.Activities(), 2, "status change with note is still one activity")
}

func TestUpdatedAtNeverDecreases(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, validInput())
	before, _ := f.svc.Get(ctx, id)

	f.clock.now = before.UpdatedAt.Add(-48 * time.Hour)
	_, err := f.svc.UpdateStatus(ctx, id, StatusClosed, "")
	require.NoError(t, err)
	after, _ := f.svc.Get(ctx, id)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
}

func TestMutationsOnMissingContact(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, "missing", StatusClosed, "")
	assert.ErrorIs(t, err, crm.ErrNotFound)
	_, err = f.svc.Assign(ctx, "missing", "u1", "")
	assert.ErrorIs(t, err, crm.ErrNotFound)
	_, err = f.svc.AddNote(ctx, "missing", NoteInput{Content: "x", Author: "a"})
	assert.ErrorIs(t, err, crm.ErrNotFound)
	_, err = f.svc.Delete(ctx, "missing", false)
	assert.ErrorIs(t, err, crm.ErrNotFound)
	_, err = f.svc.Delete(ctx, "missing", true)
	assert.ErrorIs(t, err, crm.ErrNotFound)
	_, err = f.svc.ListActivities(ctx, "missing", 0)
	assert.ErrorIs(t, err, crm.ErrNotFound)

	assert.Empty(t, f.actRepo.Activities())
}

func TestAssign(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, validInput())

	_, err := f.svc.Assign(ctx, id, "ghost", "admin-1")
	assert.ErrorIs(t, err, crm.ErrNotFound)
	assert.Len(t, f.actRepo.Activities(), 1)

	_, err = f.svc.Assign(ctx, id, "u1", "admin-1")
	require.NoError(t, err)
	c, _ := f.svc.Get(ctx, id)
	assert.Equal(t, "u1", c.AssignedTo)

	acts := f.actRepo.Activities()
	require.Len(t, acts, 2)
	assert.Equal(t, activity.ActionContactAssigned, acts[1].Action)
	assert.Equal(t, "admin-1", acts[1].Metadata["assignedBy"])
}

func TestAddNote_SurvivesActivityLogFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, validInput())

	f.actRepo.FailAppends = errors.New("activity store unavailable")
	got, err := f.svc.AddNote(ctx, id, NoteInput{Content: "left a voicemail", Author: "ana", Type: crm.NoteTypeCall})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	c, _ := f.svc.Get(ctx, id)
	require.Len(t, c.Notes, 1)
	assert.Equal(t, "left a voicemail", c.Notes[0].Content)
	assert.NotNil(t, c.LastContactedAt)
}

func TestAddNote_AppendOnlyAndTypes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, validInput())

	for _, content := range []string{"first", "second", "third"} {
		_, err := f.svc.AddNote(ctx, id, NoteInput{Content: content, Author: "ana"})
		require.NoError(t, err)
	}
	c, _ := f.svc.Get(ctx, id)
	require.Len(t, c.Notes, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{c.Notes[0].Content, c.Notes[1].Content, c.Notes[2].Content})
	assert.Nil(t, c.LastContactedAt, "plain notes do not count as contact")

	_, err := f.svc.AddNote(ctx, id, NoteInput{Content: "x", Author: "ana", Type: crm.NoteTypeMeeting})
	assert.ErrorIs(t, err, crm.ErrValidation)
	_, err = f.svc.AddNote(ctx, id, NoteInput{Content: "  ", Author: "ana"})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestDelete_SoftAndPermanent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	soft := f.create(t, validInput())
	_, err := f.svc.Delete(ctx, soft, false)
	require.NoError(t, err)
	c, err := f.svc.Get(ctx, soft)
	require.NoError(t, err)
	assert.Equal(t, StatusSpam, c.Status)

	hard := f.create(t, validInput())
	_, err = f.svc.Delete(ctx, hard, true)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, hard)
	assert.ErrorIs(t, err, crm.ErrNotFound)

	var actions []activity.Action
	for _, a := range f.actRepo.Activities() {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []activity.Action{
		activity.ActionContactCreated, activity.ActionContactMarkedSpam,
		activity.ActionContactCreated, activity.ActionContactDeleted,
	}, actions)
}

func TestPersistenceFailureWritesNoActivity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, validInput())

	f.repo.FailWrites = errors.New("connection reset")
	_, err := f.svc.UpdateStatus(ctx, id, StatusClosed, "")
	assert.ErrorIs(t, err, crm.ErrPersistence)
	_, err = f.svc.Create(ctx, validInput())
	assert.ErrorIs(t, err, crm.ErrPersistence)

	assert.Len(t, f.actRepo.Activities(), 1)
}

func TestListAndSearch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mk := func(msg string, typ ContactType, p crm.Priority) string {
		in := validInput()
		in.Message, in.Type, in.Priority = msg, typ, p
		return f.create(t, in)
	}
	a := mk("need an online shop", TypeBusiness, crm.PriorityHigh)
	b := mk("support ticket about the shop", TypeSupport, crm.PriorityHigh)
	c := mk("job application", TypeCareers, crm.PriorityLow)
	_, err := f.svc.UpdateStatus(ctx, b, StatusInProgress, "")
	require.NoError(t, err)

	all, err := f.svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{c, b, a}, []string{all[0].ID, all[1].ID, all[2].ID}, "newest first")

	high, err := f.svc.List(ctx, Filter{Priority: crm.PriorityHigh})
	require.NoError(t, err)
	assert.Len(t, high, 2)

	// status picks the index, priority is applied afterwards
	combo, err := f.svc.List(ctx, Filter{Status: StatusNew, Priority: crm.PriorityHigh})
	require.NoError(t, err)
	require.Len(t, combo, 1)
	assert.Equal(t, a, combo[0].ID)

	capped, err := f.svc.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, capped, 2)

	shop, err := f.svc.Search(ctx, "SHOP", Filter{})
	require.NoError(t, err)
	assert.Len(t, shop, 2)

	shopSupport, err := f.svc.Search(ctx, "shop", Filter{Type: TypeSupport})
	require.NoError(t, err)
	require.Len(t, shopSupport, 1)
	assert.Equal(t, b, shopSupport[0].ID)

	_, err = f.svc.List(ctx, Filter{Status: "bogus"})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestPage_CountsBeforeLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, msg := range []string{"shop launch", "shop redesign", "careers question"} {
		in := validInput()
		in.Message = msg
		f.create(t, in)
	}

	out, total, err := f.svc.Page(ctx, "", Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 3, total)

	out, total, err = f.svc.Page(ctx, "  shop ", Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 2, total)

	_, _, err = f.svc.Page(ctx, "shop", Filter{Limit: -1})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestSearch_WholeTokensOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	in := validInput()
	in.Message = "Need payment-processing for the shop"
	id := f.create(t, in)

	partial, err := f.svc.Search(ctx, "pay", Filter{})
	require.NoError(t, err)
	assert.Empty(t, partial)

	whole, err := f.svc.Search(ctx, "Payment shop", Filter{})
	require.NoError(t, err)
	require.Len(t, whole, 1)
	assert.Equal(t, id, whole[0].ID)
}

func TestListActivities(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, validInput())
	_, err := f.svc.AddNote(ctx, id, NoteInput{Content: "hi", Author: "ana"})
	require.NoError(t, err)

	acts, err := f.svc.ListActivities(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, activity.ActionNoteAdded, acts[0].Action)
}
