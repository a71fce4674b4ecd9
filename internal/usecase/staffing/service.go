// Package staffing assigns users to projects. Every change is checked by the
// allocation engine and recorded in the append-only resource history.
package staffing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/allocation"
	"skill-staffing/internal/domain/project"
	"skill-staffing/internal/notification"
	"skill-staffing/internal/pkg/logger"
	"skill-staffing/internal/repository"

	"github.com/google/uuid"
)

type AssignInput struct {
	ProjectID   uuid.UUID
	UserID      uuid.UUID
	Role        string
	Allocation  int
	StartDate   *time.Time
	EndDate     *time.Time
	PerformedBy uuid.UUID
	Note        string
}

// DateRange edits the bounds of an assignment independently. A nil bound keeps
// its current value; OpenStart and OpenEnd make that side open-ended.
type DateRange struct {
	Start     *time.Time
	End       *time.Time
	OpenStart bool
	OpenEnd   bool
}

// apply returns the bounds that result from editing start and end.
func (d DateRange) apply(start, end *time.Time) (*time.Time, *time.Time) {
	switch {
	case d.OpenStart:
		start = nil
	case d.Start != nil:
		start = d.Start
	}
	switch {
	case d.OpenEnd:
		end = nil
	case d.End != nil:
		end = d.End
	}
	return start, end
}

type UpdateInput struct {
	ResourceID  uuid.UUID
	Role        *string
	Allocation  *int
	Dates       *DateRange
	PerformedBy uuid.UUID
	Note        string
}

type AllocationSummary struct {
	UserID      uuid.UUID
	AsOf        time.Time
	Total       int
	Available   int
	Assignments []project.Resource
}

type Usecase interface {
	Assign(ctx context.Context, in AssignInput) (project.Resource, error)
	Update(ctx context.Context, in UpdateInput) (project.Resource, error)
	Remove(ctx context.Context, resourceID, performedBy uuid.UUID, note string) error
	Get(ctx context.Context, resourceID uuid.UUID) (project.Resource, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]project.Resource, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]project.Resource, error)
	History(ctx context.Context, resourceID uuid.UUID) ([]project.ResourceHistory, error)
	ProjectHistory(ctx context.Context, projectID uuid.UUID) ([]project.ResourceHistory, error)
	Allocation(ctx context.Context, userID uuid.UUID, asOf time.Time) (AllocationSummary, error)
}

type Service struct {
	store    repository.Store
	notifier notification.Notifier
	log      *logger.Logger
	now      func() time.Time
}

func NewService(store repository.Store, notifier notification.Notifier, log *logger.Logger) *Service {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &Service{
		store:    store,
		notifier: notifier,
		log:      logger.OrNop(log).With("usecase", "staffing"),
		now:      time.Now,
	}
}

func (s *Service) Assign(ctx context.Context, in AssignInput) (project.Resource, error) {
	in.Role = strings.TrimSpace(in.Role)
	in.StartDate, in.EndDate = domain.DatePtr(in.StartDate), domain.DatePtr(in.EndDate)
	if err := validateAllocation(in.Allocation); err != nil {
		return project.Resource{}, err
	}
	if err := validateDates(in.StartDate, in.EndDate); err != nil {
		return project.Resource{}, err
	}

	var (
		out    project.Resource
		outbox []notification.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		outbox = nil

		p, err := r.Projects().GetByID(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		// The user row lock serializes allocation checks for this user.
		if _, err := r.Users().LockByID(ctx, in.UserID); err != nil {
			return err
		}

		existing, err := r.Resources().FindByProjectAndUser(ctx, in.ProjectID, in.UserID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: user %s is already resource %s on project %s", domain.ErrDuplicateAssignment, in.UserID, existing.ID, in.ProjectID)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		engine := allocation.NewEngine(r.Resources())
		if err := engine.ValidateWindow(ctx, in.UserID, in.StartDate, in.EndDate, in.Allocation, nil); err != nil {
			return err
		}

		now := s.now().UTC()
		res := project.Resource{
			ID:         uuid.New(),
			ProjectID:  in.ProjectID,
			UserID:     in.UserID,
			Role:       in.Role,
			Allocation: in.Allocation,
			StartDate:  in.StartDate,
			EndDate:    in.EndDate,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Resources().Create(ctx, res); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: %v", domain.ErrDuplicateAssignment, err)
			}
			return err
		}

		if err := r.ResourceHistory().Append(ctx, project.ResourceHistory{
			ID:            uuid.New(),
			ResourceID:    res.ID,
			ProjectID:     res.ProjectID,
			UserID:        res.UserID,
			Action:        project.ActionAdded,
			NewRole:       &res.Role,
			NewAllocation: &res.Allocation,
			PerformedBy:   in.PerformedBy,
			Note:          in.Note,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		outbox = append(outbox, notification.Notification{
			RecipientID: res.UserID,
			Title:       "Added to project",
			Message: fmt.Sprintf("You were added to %s as %s at %d%% (%s to %s)",
				p.Name, roleOrDefault(res.Role), res.Allocation, domain.FormatDate(res.StartDate), domain.FormatDate(res.EndDate)),
			Link:    resourceLink(res.ID),
			Subject: notification.ProjectSubject(p.ID),
		})
		out = res
		return nil
	})
	if err != nil {
		return project.Resource{}, err
	}

	s.log.Info("resource assigned",
		"resource_id", out.ID,
		"project_id", out.ProjectID,
		"user_id", out.UserID,
		"allocation", out.Allocation,
	)
	s.dispatch(outbox)
	return out, nil
}

// Update writes one history entry per kind of change. A call that changes
// nothing returns the resource untouched and records nothing.
func (s *Service) Update(ctx context.Context, in UpdateInput) (project.Resource, error) {
	if in.Allocation != nil {
		if err := validateAllocation(*in.Allocation); err != nil {
			return project.Resource{}, err
		}
	}
	if in.Role != nil {
		role := strings.TrimSpace(*in.Role)
		in.Role = &role
	}
	if in.Dates != nil {
		d := *in.Dates
		if (d.OpenStart && d.Start != nil) || (d.OpenEnd && d.End != nil) {
			return project.Resource{}, domain.InvalidInputf("a date bound cannot be both set and cleared")
		}
		d.Start, d.End = domain.DatePtr(d.Start), domain.DatePtr(d.End)
		in.Dates = &d
	}

	var (
		out    project.Resource
		outbox []notification.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		outbox = nil

		res, err := lockResource(ctx, r, in.ResourceID)
		if err != nil {
			return err
		}
		prev := res

		start, end := res.StartDate, res.EndDate
		if in.Dates != nil {
			start, end = in.Dates.apply(start, end)
			if err := validateDates(start, end); err != nil {
				return err
			}
		}

		roleChanged := in.Role != nil && *in.Role != res.Role
		allocChanged := in.Allocation != nil && *in.Allocation != res.Allocation
		datesChanged := !sameDate(start, res.StartDate) || !sameDate(end, res.EndDate)
		if !roleChanged && !allocChanged && !datesChanged {
			out = res
			return nil
		}

		if roleChanged {
			res.Role = *in.Role
		}
		if allocChanged {
			res.Allocation = *in.Allocation
		}
		if datesChanged {
			res.StartDate, res.EndDate = start, end
		}

		if allocChanged || datesChanged {
			engine := allocation.NewEngine(r.Resources())
			if err := engine.ValidateWindow(ctx, res.UserID, res.StartDate, res.EndDate, res.Allocation, &res.ID); err != nil {
				return err
			}
		}

		now := s.now().UTC()
		res.UpdatedAt = now
		if err := r.Resources().Update(ctx, res); err != nil {
			return err
		}

		entry := func(action project.HistoryAction) project.ResourceHistory {
			return project.ResourceHistory{
				ID:                 uuid.New(),
				ResourceID:         res.ID,
				ProjectID:          res.ProjectID,
				UserID:             res.UserID,
				Action:             action,
				PreviousRole:       &prev.Role,
				NewRole:            &res.Role,
				PreviousAllocation: &prev.Allocation,
				NewAllocation:      &res.Allocation,
				PerformedBy:        in.PerformedBy,
				Note:               in.Note,
				CreatedAt:          now,
			}
		}

		var entries []project.ResourceHistory
		switch {
		case roleChanged && allocChanged:
			entries = append(entries, entry(project.ActionRoleAndAllocationChanged))
		case roleChanged:
			entries = append(entries, entry(project.ActionRoleChanged))
		case allocChanged:
			entries = append(entries, entry(project.ActionAllocationChanged))
		}
		if datesChanged {
			e := entry(project.ActionDatesChanged)
			e.Note = strings.TrimSpace(fmt.Sprintf("%s to %s -> %s to %s. %s",
				domain.FormatDate(prev.StartDate), domain.FormatDate(prev.EndDate),
				domain.FormatDate(res.StartDate), domain.FormatDate(res.EndDate), in.Note))
			entries = append(entries, e)
		}
		for _, e := range entries {
			if err := r.ResourceHistory().Append(ctx, e); err != nil {
				return err
			}
		}

		if roleChanged || allocChanged {
			p, err := r.Projects().GetByID(ctx, res.ProjectID)
			if err != nil {
				return err
			}
			outbox = append(outbox, notification.Notification{
				RecipientID: res.UserID,
				Title:       "Project assignment changed",
				Message: fmt.Sprintf("Your assignment on %s changed: %s at %d%% (was %s at %d%%)",
					p.Name, roleOrDefault(res.Role), res.Allocation, roleOrDefault(prev.Role), prev.Allocation),
				Link:    resourceLink(res.ID),
				Subject: notification.ProjectSubject(p.ID),
			})
		}

		out = res
		return nil
	})
	if err != nil {
		return project.Resource{}, err
	}

	s.dispatch(outbox)
	return out, nil
}

// Remove deletes the assignment. Its history stays.
func (s *Service) Remove(ctx context.Context, resourceID, performedBy uuid.UUID, note string) error {
	var outbox []notification.Notification
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		outbox = nil

		res, err := lockResource(ctx, r, resourceID)
		if err != nil {
			return err
		}

		if err := r.ResourceHistory().Append(ctx, project.ResourceHistory{
			ID:                 uuid.New(),
			ResourceID:         res.ID,
			ProjectID:          res.ProjectID,
			UserID:             res.UserID,
			Action:             project.ActionRemoved,
			PreviousRole:       &res.Role,
			PreviousAllocation: &res.Allocation,
			PerformedBy:        performedBy,
			Note:               strings.TrimSpace(note),
			CreatedAt:          s.now().UTC(),
		}); err != nil {
			return err
		}
		if err := r.Resources().Delete(ctx, res.ID); err != nil {
			return err
		}

		p, err := r.Projects().GetByID(ctx, res.ProjectID)
		if err != nil {
			return err
		}
		outbox = append(outbox, notification.Notification{
			RecipientID: res.UserID,
			Title:       "Removed from project",
			Message:     fmt.Sprintf("You were removed from %s", p.Name),
			Link:        "/projects/" + p.ID.String(),
			Subject:     notification.ProjectSubject(p.ID),
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("resource removed", "resource_id", resourceID, "performed_by", performedBy)
	s.dispatch(outbox)
	return nil
}

func (s *Service) Get(ctx context.Context, resourceID uuid.UUID) (project.Resource, error) {
	return s.store.Repos().Resources().GetByID(ctx, resourceID)
}

func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]project.Resource, error) {
	r := s.store.Repos()
	if _, err := r.Projects().GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return r.Resources().ListByProject(ctx, projectID)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]project.Resource, error) {
	r := s.store.Repos()
	if _, err := r.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return r.Resources().ListByUser(ctx, userID)
}

// History is available after the resource itself was removed.
func (s *Service) History(ctx context.Context, resourceID uuid.UUID) ([]project.ResourceHistory, error) {
	return s.store.Repos().ResourceHistory().ListByResource(ctx, resourceID)
}

func (s *Service) ProjectHistory(ctx context.Context, projectID uuid.UUID) ([]project.ResourceHistory, error) {
	return s.store.Repos().ResourceHistory().ListByProject(ctx, projectID)
}

func (s *Service) Allocation(ctx context.Context, userID uuid.UUID, asOf time.Time) (AllocationSummary, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	day := domain.DateOnly(asOf)

	r := s.store.Repos()
	if _, err := r.Users().GetByID(ctx, userID); err != nil {
		return AllocationSummary{}, err
	}
	active, err := r.Resources().FindActiveByUser(ctx, userID, day)
	if err != nil {
		return AllocationSummary{}, err
	}

	total := 0
	for _, res := range active {
		total += res.Allocation
	}
	available := allocation.MaxAllocation - total
	if available < 0 {
		available = 0
	}
	return AllocationSummary{
		UserID:      userID,
		AsOf:        day,
		Total:       total,
		Available:   available,
		Assignments: active,
	}, nil
}

func (s *Service) dispatch(outbox []notification.Notification) {
	for _, n := range outbox {
		s.notifier.Notify(n)
	}
}

// lockResource takes the owning user's lock before the resource row, the
// same order Assign uses.
func lockResource(ctx context.Context, r repository.Repos, id uuid.UUID) (project.Resource, error) {
	res, err := r.Resources().GetByID(ctx, id)
	if err != nil {
		return project.Resource{}, err
	}
	if _, err := r.Users().LockByID(ctx, res.UserID); err != nil {
		return project.Resource{}, err
	}
	return r.Resources().GetByIDForUpdate(ctx, id)
}

func validateAllocation(v int) error {
	if !allocation.ValidAllocation(v) {
		return domain.InvalidInputf("allocation must be between 0 and %d, got %d", allocation.MaxAllocation, v)
	}
	return nil
}

func validateDates(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return domain.InvalidInputf("start date %s is after end date %s", domain.FormatDate(start), domain.FormatDate(end))
	}
	return nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func roleOrDefault(role string) string {
	if role == "" {
		return "team member"
	}
	return role
}

func resourceLink(id uuid.UUID) string {
	return "/resources/" + id.String()
}
