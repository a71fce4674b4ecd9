package staffing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/project"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/notification"
	"skill-staffing/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	notes    *notification.Recorder
	svc      *Service
	manager  user.User
	employee user.User
	apollo   project.Project
	gemini   project.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: memory.NewStore(), notes: &notification.Recorder{}}
	f.svc = NewService(f.store, f.notes, nil)
	f.svc.now = func() time.Time { return date(2026, 5, 4) }

	f.manager = user.User{ID: uuid.New(), Email: "max@example.com", Role: user.RoleManager}
	f.employee = user.User{ID: uuid.New(), Email: "erin@example.com", Role: user.RoleEmployee}
	require.NoError(t, f.store.Repos().Users().Create(ctx, f.manager))
	require.NoError(t, f.store.Repos().Users().Create(ctx, f.employee))

	f.apollo = project.Project{ID: uuid.New(), Name: "Apollo", Status: "ACTIVE"}
	f.gemini = project.Project{ID: uuid.New(), Name: "Gemini", Status: "ACTIVE"}
	require.NoError(t, f.store.Repos().Projects().Create(ctx, f.apollo))
	require.NoError(t, f.store.Repos().Projects().Create(ctx, f.gemini))
	return f
}

func (f *fixture) addProject(t *testing.T, name string) project.Project {
	t.Helper()
	p := project.Project{ID: uuid.New(), Name: name, Status: "ACTIVE"}
	require.NoError(t, f.store.Repos().Projects().Create(context.Background(), p))
	return p
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestAssign_RejectsAllocationAboveCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Role: "Backend", Allocation: 70, PerformedBy: f.manager.ID})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, AssignInput{ProjectID: f.gemini.ID, UserID: f.employee.ID, Allocation: 40, PerformedBy: f.manager.ID})
	require.ErrorIs(t, err, domain.ErrAllocationExceeded)

	var exceeded *domain.AllocationExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, 70, exceeded.Current)
	assert.Equal(t, 40, exceeded.Requested)
	assert.Equal(t, 110, exceeded.Resulting)

	_, err = f.svc.Assign(ctx, AssignInput{ProjectID: f.gemini.ID, UserID: f.employee.ID, Allocation: 30, PerformedBy: f.manager.ID})
	require.NoError(t, err)

	sum, err := f.svc.Allocation(ctx, f.employee.ID, date(2026, 5, 4))
	require.NoError(t, err)
	assert.Equal(t, 100, sum.Total)
	assert.Equal(t, 0, sum.Available)
	assert.Len(t, sum.Assignments, 2)
}

func TestAssign_ChecksFutureWindowPeak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{
		ProjectID:  f.apollo.ID,
		UserID:     f.employee.ID,
		Allocation: 80,
		StartDate:  ptr(date(2026, 7, 1)),
		EndDate:    ptr(date(2026, 9, 30)),
	})
	require.NoError(t, err)

	// Nothing is active today, but the open-ended window reaches July.
	_, err = f.svc.Assign(ctx, AssignInput{ProjectID: f.gemini.ID, UserID: f.employee.ID, Allocation: 50, StartDate: ptr(date(2026, 5, 1))})
	var exceeded *domain.AllocationExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, date(2026, 7, 1), exceeded.AsOf)

	// A window that ends before July fits.
	_, err = f.svc.Assign(ctx, AssignInput{
		ProjectID:  f.gemini.ID,
		UserID:     f.employee.ID,
		Allocation: 50,
		StartDate:  ptr(date(2026, 5, 1)),
		EndDate:    ptr(date(2026, 6, 30)),
	})
	require.NoError(t, err)
}

func TestAssign_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   AssignInput
		want error
	}{
		{"negative allocation", AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Allocation: -1}, domain.ErrInvalidInput},
		{"allocation above 100", AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Allocation: 101}, domain.ErrInvalidInput},
		{"start after end", AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Allocation: 10, StartDate: ptr(date(2026, 6, 2)), EndDate: ptr(date(2026, 6, 1))}, domain.ErrInvalidInput},
		{"unknown project", AssignInput{ProjectID: uuid.New(), UserID: f.employee.ID, Allocation: 10}, domain.ErrNotFound},
		{"unknown user", AssignInput{ProjectID: f.apollo.ID, UserID: uuid.New(), Allocation: 10}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Assign(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	res, err := f.svc.ListByUser(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Empty(t, f.notes.Items())
}

func TestAssign_DuplicateAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Allocation: 20})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Allocation: 10})
	require.ErrorIs(t, err, domain.ErrDuplicateAssignment)
}

func TestAssign_RecordsHistoryAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Assign(ctx, AssignInput{
		ProjectID:   f.apollo.ID,
		UserID:      f.employee.ID,
		Role:        "  Tech Lead ",
		Allocation:  60,
		StartDate:   ptr(time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)),
		PerformedBy: f.manager.ID,
		Note:        "kickoff",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tech Lead", res.Role)
	assert.Equal(t, date(2026, 5, 10), *res.StartDate)

	hist, err := f.svc.History(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, project.ActionAdded, hist[0].Action)
	assert.Equal(t, 60, *hist[0].NewAllocation)
	assert.Nil(t, hist[0].PreviousAllocation)
	assert.Equal(t, f.manager.ID, hist[0].PerformedBy)

	notes := f.notes.Items()
	require.Len(t, notes, 1)
	assert.Equal(t, f.employee.ID, notes[0].RecipientID)
	assert.Equal(t, notification.ProjectSubject(f.apollo.ID), notes[0].Subject)
	assert.Contains(t, notes[0].Message, "Apollo as Tech Lead at 60%")
}

func TestAssign_ConcurrentRequestsNeverExceedCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 8
	projects := make([]project.Project, n)
	for i := range projects {
		projects[i] = f.addProject(t, uuid.NewString())
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		exceeded int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(p project.Project) {
			defer wg.Done()
			_, err := f.svc.Assign(ctx, AssignInput{ProjectID: p.ID, UserID: f.employee.ID, Allocation: 30})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrAllocationExceeded):
				exceeded++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(projects[i])
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, n-3, exceeded)

	sum, err := f.svc.Allocation(ctx, f.employee.ID, date(2026, 5, 4))
	require.NoError(t, err)
	assert.Equal(t, 90, sum.Total)
}

func TestUpdate_HistoryKinds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Assign(ctx, AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Role: "Dev", Allocation: 40})
	require.NoError(t, err)
	f.notes.Reset()

	_, err = f.svc.Update(ctx, UpdateInput{ResourceID: res.ID, Role: ptr("Lead"), PerformedBy: f.manager.ID})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, UpdateInput{ResourceID: res.ID, Allocation: ptr(50)})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, UpdateInput{ResourceID: res.ID, Role: ptr("Architect"), Allocation: ptr(60)})
	require.NoError(t, err)
	updated, err := f.svc.Update(ctx, UpdateInput{ResourceID: res.ID, Dates: &DateRange{Start: ptr(date(2026, 6, 1)), End: ptr(date(2026, 12, 31))}})
	require.NoError(t, err)

	assert.Equal(t, "Architect", updated.Role)
	assert.Equal(t, 60, updated.Allocation)
	assert.Equal(t, date(2026, 6, 1), *updated.StartDate)

	hist, err := f.svc.History(ctx, res.ID)
	require.NoError(t, err)
	actions := make([]project.HistoryAction, 0, len(hist))
	for _, h := range hist {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []project.HistoryAction{
		project.ActionAdded,
		project.ActionRoleChanged,
		project.ActionAllocationChanged,
		project.ActionRoleAndAllocationChanged,
		project.ActionDatesChanged,
	}, actions)

	assert.Equal(t, "Dev", *hist[1].PreviousRole)
	assert.Equal(t, "Lead", *hist[1].NewRole)
	assert.Equal(t, 40, *hist[2].PreviousAllocation)
	assert.Equal(t, 50, *hist[2].NewAllocation)
	assert.Contains(t, hist[4].Note, "2026-06-01 to 2026-12-31")

	// Dates alone do not notify.
	assert.Len(t, f.notes.Items(), 3)
}

func TestUpdate_NoChangeWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Assign(ctx, AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Role: "Dev", Allocation: 40})
	require.NoError(t, err)

	got, err := f.svc.Update(ctx, UpdateInput{ResourceID: res.ID, Role: ptr("Dev"), Allocation: ptr(40)})
	require.NoError(t, err)
	assert.Equal(t, res.UpdatedAt, got.UpdatedAt)

	hist, err := f.svc.History(ctx, res.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestUpdate_RevalidatesExcludingItself(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Assign(ctx, AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Allocation: 60})
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, AssignInput{ProjectID: f.gemini.ID, UserID: f.employee.ID, Allocation: 30})
	require.NoError(t, err)

	// 60 -> 70 keeps the total at 100.
	_, err = f.svc.Update(ctx, UpdateInput{ResourceID: res.ID, Allocation: ptr(70)})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, UpdateInput{ResourceID: res.ID, Allocation: ptr(71)})
	require.ErrorIs(t, err, domain.ErrAllocationExceeded)

	got, err := f.svc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, got.Allocation)

	_, err = f.svc.Update(ctx, UpdateInput{ResourceID: uuid.New(), Allocation: ptr(10)})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// staffedHalfYears puts the employee on Apollo at 80% for the first half of
// 2026 and on Gemini at 50% for the second half.
func staffedHalfYears(t *testing.T, f *fixture) (apollo, gemini project.Resource) {
	t.Helper()
	ctx := context.Background()
	apollo, err := f.svc.Assign(ctx, AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Allocation: 80,
		StartDate: ptr(date(2026, 1, 1)), EndDate: ptr(date(2026, 6, 30)), PerformedBy: f.manager.ID})
	require.NoError(t, err)
	gemini, err = f.svc.Assign(ctx, AssignInput{ProjectID: f.gemini.ID, UserID: f.employee.ID, Allocation: 50,
		StartDate: ptr(date(2026, 7, 1)), EndDate: ptr(date(2026, 12, 31)), PerformedBy: f.manager.ID})
	require.NoError(t, err)
	return apollo, gemini
}

func TestUpdate_EndDateOnlyKeepsStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, gemini := staffedHalfYears(t, f)

	updated, err := f.svc.Update(ctx, UpdateInput{ResourceID: gemini.ID, Dates: &DateRange{End: ptr(date(2027, 3, 31))}, PerformedBy: f.manager.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.StartDate)
	assert.Equal(t, date(2026, 7, 1), *updated.StartDate)
	assert.Equal(t, date(2027, 3, 31), *updated.EndDate)

	hist, err := f.svc.History(ctx, gemini.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, project.ActionDatesChanged, hist[1].Action)
	assert.Contains(t, hist[1].Note, "2026-07-01 to 2026-12-31 -> 2026-07-01 to 2027-03-31")
}

func TestUpdate_OpenStartIsExplicit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, gemini := staffedHalfYears(t, f)

	// Opening the start makes Gemini overlap Apollo's first half.
	_, err := f.svc.Update(ctx, UpdateInput{ResourceID: gemini.ID, Dates: &DateRange{OpenStart: true}})
	require.ErrorIs(t, err, domain.ErrAllocationExceeded)

	_, err = f.svc.Update(ctx, UpdateInput{ResourceID: gemini.ID, Dates: &DateRange{Start: ptr(date(2026, 8, 1)), OpenStart: true}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Update(ctx, UpdateInput{ResourceID: gemini.ID, Dates: &DateRange{Start: ptr(date(2027, 2, 1))}})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "start after the kept end date")
}

func TestUpdate_DateChangeRevalidatesCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, gemini := staffedHalfYears(t, f)

	_, err := f.svc.Update(ctx, UpdateInput{ResourceID: gemini.ID, Dates: &DateRange{Start: ptr(date(2026, 6, 1))}, PerformedBy: f.manager.ID})
	require.ErrorIs(t, err, domain.ErrAllocationExceeded)
	var exceeded *domain.AllocationExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, 80, exceeded.Current)
	assert.Equal(t, 130, exceeded.Resulting)
	assert.Equal(t, date(2026, 6, 1), exceeded.AsOf)

	got, err := f.svc.Get(ctx, gemini.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 7, 1), *got.StartDate)
	assert.Equal(t, gemini.UpdatedAt, got.UpdatedAt)

	hist, err := f.svc.History(ctx, gemini.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestRemove_HistorySurvives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Assign(ctx, AssignInput{ProjectID: f.apollo.ID, UserID: f.employee.ID, Role: "Dev", Allocation: 40})
	require.NoError(t, err)
	f.notes.Reset()

	require.NoError(t, f.svc.Remove(ctx, res.ID, f.manager.ID, "rolled off"))

	_, err = f.svc.Get(ctx, res.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	hist, err := f.svc.History(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, project.ActionRemoved, hist[1].Action)
	assert.Equal(t, 40, *hist[1].PreviousAllocation)
	assert.Nil(t, hist[1].NewAllocation)
	assert.Equal(t, "rolled off", hist[1].Note)

	byProject, err := f.svc.ProjectHistory(ctx, f.apollo.ID)
	require.NoError(t, err)
	assert.Len(t, byProject, 2)

	notes := f.notes.Items()
	require.Len(t, notes, 1)
	assert.Equal(t, "Removed from project", notes[0].Title)

	// The capacity is free again.
	_, err = f.svc.Assign(ctx, AssignInput{ProjectID: f.gemini.ID, UserID: f.employee.ID, Allocation: 100})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Remove(ctx, res.ID, f.manager.ID, ""), domain.ErrNotFound)
}

func TestListByProject_UnknownProject(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListByProject(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}
