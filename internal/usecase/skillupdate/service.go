// Package skillupdate runs the approval workflow for proposed skill changes:
// PENDING moves to APPROVED or REJECTED exactly once.
package skillupdate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/skill"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/notification"
	"skill-staffing/internal/pkg/logger"
	"skill-staffing/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200

	approvedReason = "approved update"
)

type SubmitInput struct {
	RequesterID uuid.UUID
	// SkillID targets an existing skill; nil proposes a new one.
	SkillID          *uuid.UUID
	ProposedName     string
	ProposedCategory string
	ProposedLevel    skill.Level
	Justification    string
}

type ListFilter struct {
	Status      *skill.UpdateStatus
	RequesterID *uuid.UUID
	ReviewerID  *uuid.UUID
	Limit       int
	Offset      int
}

type Usecase interface {
	Submit(ctx context.Context, in SubmitInput) (skill.PendingUpdate, error)
	AssignReviewer(ctx context.Context, updateID, reviewerID uuid.UUID) (skill.PendingUpdate, error)
	Approve(ctx context.Context, updateID, reviewerID uuid.UUID, comments string) (skill.PendingUpdate, error)
	Reject(ctx context.Context, updateID, reviewerID uuid.UUID, comments string) (skill.PendingUpdate, error)
	Delete(ctx context.Context, updateID uuid.UUID) error
	Get(ctx context.Context, updateID uuid.UUID) (skill.PendingUpdate, error)
	List(ctx context.Context, f ListFilter) ([]skill.PendingUpdate, error)
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
		log:      logger.OrNop(log).With("usecase", "skill_update"),
		now:      time.Now,
	}
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (skill.PendingUpdate, error) {
	in.ProposedName = strings.TrimSpace(in.ProposedName)
	in.ProposedCategory = strings.TrimSpace(in.ProposedCategory)
	in.Justification = strings.TrimSpace(in.Justification)

	if in.RequesterID == uuid.Nil {
		return skill.PendingUpdate{}, domain.InvalidInputf("requester is required")
	}
	if !in.ProposedLevel.Valid() {
		return skill.PendingUpdate{}, domain.InvalidInputf("invalid proposed level %q", in.ProposedLevel)
	}
	if in.SkillID == nil && in.ProposedName == "" {
		return skill.PendingUpdate{}, domain.InvalidInputf("proposed name is required for a new skill")
	}

	var (
		created skill.PendingUpdate
		outbox  []notification.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		outbox = nil

		requester, err := r.Users().GetByID(ctx, in.RequesterID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		u := skill.PendingUpdate{
			ID:               uuid.New(),
			UserID:           requester.ID,
			SkillID:          in.SkillID,
			ProposedName:     in.ProposedName,
			ProposedCategory: in.ProposedCategory,
			ProposedLevel:    in.ProposedLevel,
			Justification:    in.Justification,
			Status:           skill.StatusPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if in.SkillID != nil {
			current, err := r.Skills().GetByID(ctx, *in.SkillID)
			if err != nil {
				return err
			}
			if current.UserID != requester.ID {
				return fmt.Errorf("%w: skill %s belongs to another user", domain.ErrForbidden, current.ID)
			}
			name, category, level := current.Name, current.Category, current.Level
			u.CurrentName = &name
			u.CurrentCategory = &category
			u.CurrentLevel = &level
			if u.ProposedName == "" {
				u.ProposedName = name
			}
			if u.ProposedCategory == "" {
				u.ProposedCategory = category
			}
		}

		existing, err := r.PendingUpdates().FindByUserSkillAndStatus(ctx, requester.ID, in.SkillID, skill.StatusPending)
		switch {
		case err == nil:
			return fmt.Errorf("%w: update %s is still pending", domain.ErrDuplicatePendingRequest, existing.ID)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if err := r.PendingUpdates().Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: %v", domain.ErrDuplicatePendingRequest, err)
			}
			return err
		}

		reviewers, err := r.Users().ListByRoles(ctx, user.ReviewerRoles...)
		if err != nil {
			return err
		}
		for _, rv := range reviewers {
			if rv.ID == requester.ID {
				continue
			}
			outbox = append(outbox, notification.Notification{
				RecipientID: rv.ID,
				Title:       "Skill update awaiting review",
				Message:     fmt.Sprintf("%s proposed %s", requester.DisplayName(), u.Summary()),
				Link:        link(u.ID),
				Subject:     notification.UserSubject(requester.ID),
			})
		}

		created = u
		return nil
	})
	if err != nil {
		return skill.PendingUpdate{}, err
	}

	s.log.Info("skill update submitted", "update_id", created.ID, "user_id", created.UserID, "reviewers_notified", len(outbox))
	s.dispatch(outbox)
	return created, nil
}

func (s *Service) AssignReviewer(ctx context.Context, updateID, reviewerID uuid.UUID) (skill.PendingUpdate, error) {
	var (
		out    skill.PendingUpdate
		outbox []notification.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		outbox = nil

		u, err := lockPending(ctx, r, updateID)
		if err != nil {
			return err
		}
		reviewer, err := loadReviewer(ctx, r, reviewerID)
		if err != nil {
			return err
		}

		u.ReviewerID = &reviewer.ID
		u.UpdatedAt = s.now().UTC()
		if err := r.PendingUpdates().Update(ctx, u); err != nil {
			return err
		}

		outbox = append(outbox, notification.Notification{
			RecipientID: u.UserID,
			Title:       "Reviewer assigned",
			Message:     fmt.Sprintf("%s will review %s", reviewer.DisplayName(), u.Summary()),
			Link:        link(u.ID),
			Subject:     notification.UserSubject(reviewer.ID),
		})
		out = u
		return nil
	})
	if err != nil {
		return skill.PendingUpdate{}, err
	}

	s.dispatch(outbox)
	return out, nil
}

// Approve applies the proposal in the same transaction that closes it: the
// target skill's level changes, or a new skill is created for the requester.
func (s *Service) Approve(ctx context.Context, updateID, reviewerID uuid.UUID, comments string) (skill.PendingUpdate, error) {
	comments = strings.TrimSpace(comments)

	var (
		out    skill.PendingUpdate
		outbox []notification.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		outbox = nil

		u, err := lockPending(ctx, r, updateID)
		if err != nil {
			return err
		}
		reviewer, err := loadDecider(ctx, r, reviewerID, u)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		skillID, err := s.apply(ctx, r, u, reviewer.ID, now)
		if err != nil {
			return err
		}

		if u.ReviewerID == nil {
			u.ReviewerID = &reviewer.ID
		}
		u.Status = skill.StatusApproved
		u.ReviewerComments = comments
		u.ApprovedAt = &now
		u.UpdatedAt = now
		if err := r.PendingUpdates().Update(ctx, u); err != nil {
			return err
		}

		outbox = append(outbox, notification.Notification{
			RecipientID: u.UserID,
			Title:       "Skill update approved",
			Message:     withComments(fmt.Sprintf("Your update %s was approved", u.Summary()), comments),
			Link:        link(u.ID),
			Subject:     notification.SkillSubject(skillID),
		})
		out = u
		return nil
	})
	if err != nil {
		return skill.PendingUpdate{}, err
	}

	s.log.Info("skill update approved", "update_id", out.ID, "reviewer_id", reviewerID)
	s.dispatch(outbox)
	return out, nil
}

func (s *Service) apply(ctx context.Context, r repository.Repos, u skill.PendingUpdate, actor uuid.UUID, now time.Time) (uuid.UUID, error) {
	if u.SkillID != nil {
		sk, err := r.Skills().GetByIDForUpdate(ctx, *u.SkillID)
		if err != nil {
			return uuid.Nil, err
		}
		old := string(sk.Level)
		sk.Level = u.ProposedLevel
		sk.UpdatedAt = now
		if err := r.Skills().Update(ctx, sk); err != nil {
			return uuid.Nil, err
		}
		newLevel := string(sk.Level)
		return sk.ID, r.SkillHistory().Append(ctx, skill.History{
			ID:          uuid.New(),
			SkillID:     sk.ID,
			Action:      skill.HistoryLevelChanged,
			OldValue:    &old,
			NewValue:    &newLevel,
			PerformedBy: &actor,
			Reason:      approvedReason,
			CreatedAt:   now,
		})
	}

	sk := skill.Skill{
		ID:        uuid.New(),
		UserID:    u.UserID,
		Name:      u.ProposedName,
		Category:  u.ProposedCategory,
		Level:     u.ProposedLevel,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Skills().Create(ctx, sk); err != nil {
		return uuid.Nil, err
	}
	level := string(sk.Level)
	return sk.ID, r.SkillHistory().Append(ctx, skill.History{
		ID:          uuid.New(),
		SkillID:     sk.ID,
		Action:      skill.HistoryCreated,
		NewValue:    &level,
		PerformedBy: &actor,
		Reason:      approvedReason,
		CreatedAt:   now,
	})
}

func (s *Service) Reject(ctx context.Context, updateID, reviewerID uuid.UUID, comments string) (skill.PendingUpdate, error) {
	comments = strings.TrimSpace(comments)

	var (
		out    skill.PendingUpdate
		outbox []notification.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		outbox = nil

		u, err := lockPending(ctx, r, updateID)
		if err != nil {
			return err
		}
		reviewer, err := loadDecider(ctx, r, reviewerID, u)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if u.ReviewerID == nil {
			u.ReviewerID = &reviewer.ID
		}
		u.Status = skill.StatusRejected
		u.ReviewerComments = comments
		u.RejectedAt = &now
		u.UpdatedAt = now
		if err := r.PendingUpdates().Update(ctx, u); err != nil {
			return err
		}

		outbox = append(outbox, notification.Notification{
			RecipientID: u.UserID,
			Title:       "Skill update rejected",
			Message:     withComments(fmt.Sprintf("Your update %s was rejected", u.Summary()), comments),
			Link:        link(u.ID),
		})
		out = u
		return nil
	})
	if err != nil {
		return skill.PendingUpdate{}, err
	}

	s.log.Info("skill update rejected", "update_id", out.ID, "reviewer_id", reviewerID)
	s.dispatch(outbox)
	return out, nil
}

// Delete removes the record in any state. Skills changed by an earlier
// approval stay as they are.
func (s *Service) Delete(ctx context.Context, updateID uuid.UUID) error {
	if err := s.store.Repos().PendingUpdates().Delete(ctx, updateID); err != nil {
		return err
	}
	s.log.Info("skill update deleted", "update_id", updateID)
	return nil
}

func (s *Service) Get(ctx context.Context, updateID uuid.UUID) (skill.PendingUpdate, error) {
	return s.store.Repos().PendingUpdates().GetByID(ctx, updateID)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]skill.PendingUpdate, error) {
	if f.Limit < 0 || f.Offset < 0 {
		return nil, domain.InvalidInputf("limit and offset must not be negative")
	}
	if f.Limit == 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return s.store.Repos().PendingUpdates().List(ctx, repository.PendingUpdateFilter{
		Status:     f.Status,
		UserID:     f.RequesterID,
		ReviewerID: f.ReviewerID,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
}

func (s *Service) dispatch(outbox []notification.Notification) {
	for _, n := range outbox {
		s.notifier.Notify(n)
	}
}

func lockPending(ctx context.Context, r repository.Repos, id uuid.UUID) (skill.PendingUpdate, error) {
	u, err := r.PendingUpdates().GetByIDForUpdate(ctx, id)
	if err != nil {
		return skill.PendingUpdate{}, err
	}
	if u.Status != skill.StatusPending {
		return skill.PendingUpdate{}, fmt.Errorf("%w: update %s is %s", domain.ErrInvalidStateTransition, u.ID, u.Status)
	}
	return u, nil
}

func loadReviewer(ctx context.Context, r repository.Repos, id uuid.UUID) (user.User, error) {
	rv, err := r.Users().GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if !rv.Role.CanReview() {
		return user.User{}, fmt.Errorf("%w: user %s cannot review skill updates", domain.ErrForbidden, rv.ID)
	}
	return rv, nil
}

// loadDecider loads the reviewer approving or rejecting u. Nobody decides
// their own request.
func loadDecider(ctx context.Context, r repository.Repos, reviewerID uuid.UUID, u skill.PendingUpdate) (user.User, error) {
	reviewer, err := loadReviewer(ctx, r, reviewerID)
	if err != nil {
		return user.User{}, err
	}
	if reviewer.ID == u.UserID {
		return user.User{}, fmt.Errorf("%w: cannot review your own skill update", domain.ErrForbidden)
	}
	return reviewer, nil
}

func link(id uuid.UUID) string {
	return "/skill-updates/" + id.String()
}

func withComments(msg, comments string) string {
	if comments == "" {
		return msg
	}
	return msg + ": " + comments
}
