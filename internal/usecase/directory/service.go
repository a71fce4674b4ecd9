// Package directory edits a user's skill profile directly, outside the
// approval workflow. Every mutation is paired with a skill history entry.
package directory

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

type CreateInput struct {
	ActorID       uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	Category      string
	Level         skill.Level
	Certification *string
}

// UpdateInput changes only the non-nil fields.
type UpdateInput struct {
	ActorID       uuid.UUID
	SkillID       uuid.UUID
	Name          *string
	Category      *string
	Level         *skill.Level
	Certification *string
	Reason        string
}

type Usecase interface {
	Create(ctx context.Context, in CreateInput) (skill.Skill, error)
	Update(ctx context.Context, in UpdateInput) (skill.Skill, error)
	Delete(ctx context.Context, actorID, skillID uuid.UUID) error
	Endorse(ctx context.Context, skillID, endorserID uuid.UUID, comment string) (skill.Endorsement, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]skill.Skill, error)
	History(ctx context.Context, skillID uuid.UUID) ([]skill.History, error)
	Endorsements(ctx context.Context, skillID uuid.UUID) ([]skill.Endorsement, error)
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
		log:      logger.OrNop(log).With("usecase", "directory"),
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (skill.Skill, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return skill.Skill{}, domain.InvalidInputf("skill name is required")
	}
	if !in.Level.Valid() {
		return skill.Skill{}, domain.InvalidInputf("unknown skill level %q", in.Level)
	}

	var out skill.Skill
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		actor, err := authorize(ctx, r, in.ActorID, in.OwnerID)
		if err != nil {
			return err
		}
		// A delete followed by a re-create must not skip the approval workflow.
		if in.Level != skill.LevelBeginner && !actor.Role.CanReview() {
			return fmt.Errorf("%w: new skills start at %s, submit a skill update request for a higher level", domain.ErrForbidden, skill.LevelBeginner)
		}
		if _, err := r.Users().GetByID(ctx, in.OwnerID); err != nil {
			return err
		}

		now := s.now().UTC()
		sk := skill.Skill{
			ID:            uuid.New(),
			UserID:        in.OwnerID,
			Name:          in.Name,
			Category:      in.Category,
			Level:         in.Level,
			Certification: trimmed(in.Certification),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := r.Skills().Create(ctx, sk); err != nil {
			return err
		}
		level := string(sk.Level)
		out = sk
		return r.SkillHistory().Append(ctx, skill.History{
			ID:          uuid.New(),
			SkillID:     sk.ID,
			Action:      skill.HistoryCreated,
			NewValue:    &level,
			PerformedBy: &in.ActorID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return skill.Skill{}, err
	}
	s.log.Info("skill created", "skill_id", out.ID, "user_id", out.UserID, "actor_id", in.ActorID)
	return out, nil
}

// Update writes one "updated" entry per changed descriptive field and a
// "level_changed" entry for the level. Only reviewers may change a level
// directly; owners go through a skill update request.
func (s *Service) Update(ctx context.Context, in UpdateInput) (skill.Skill, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return skill.Skill{}, domain.InvalidInputf("skill name must not be empty")
	}
	if in.Level != nil && !in.Level.Valid() {
		return skill.Skill{}, domain.InvalidInputf("unknown skill level %q", *in.Level)
	}

	var out skill.Skill
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		sk, err := r.Skills().GetByIDForUpdate(ctx, in.SkillID)
		if err != nil {
			return err
		}
		actor, err := authorize(ctx, r, in.ActorID, sk.UserID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		var entries []skill.History
		record := func(action skill.HistoryAction, old, next string) {
			entries = append(entries, skill.History{
				ID:          uuid.New(),
				SkillID:     sk.ID,
				Action:      action,
				OldValue:    &old,
				NewValue:    &next,
				PerformedBy: &in.ActorID,
				Reason:      strings.TrimSpace(in.Reason),
				CreatedAt:   now,
			})
		}

		if in.Name != nil {
			if name := strings.TrimSpace(*in.Name); name != sk.Name {
				record(skill.HistoryUpdated, "name="+sk.Name, "name="+name)
				sk.Name = name
			}
		}
		if in.Category != nil {
			if category := strings.TrimSpace(*in.Category); category != sk.Category {
				record(skill.HistoryUpdated, "category="+sk.Category, "category="+category)
				sk.Category = category
			}
		}
		if in.Certification != nil {
			cert := trimmed(in.Certification)
			if deref(cert) != deref(sk.Certification) {
				record(skill.HistoryUpdated, "certification="+deref(sk.Certification), "certification="+deref(cert))
				sk.Certification = cert
			}
		}
		if in.Level != nil && *in.Level != sk.Level {
			if !actor.Role.CanReview() {
				return fmt.Errorf("%w: level changes need a reviewer, submit a skill update request instead", domain.ErrForbidden)
			}
			record(skill.HistoryLevelChanged, string(sk.Level), string(*in.Level))
			sk.Level = *in.Level
		}

		out = sk
		if len(entries) == 0 {
			return nil
		}
		sk.UpdatedAt = now
		out = sk
		if err := r.Skills().Update(ctx, sk); err != nil {
			return err
		}
		for _, h := range entries {
			if err := r.SkillHistory().Append(ctx, h); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return skill.Skill{}, err
	}
	return out, nil
}

// Delete removes the skill together with its history and endorsements.
func (s *Service) Delete(ctx context.Context, actorID, skillID uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		sk, err := r.Skills().GetByIDForUpdate(ctx, skillID)
		if err != nil {
			return err
		}
		if _, err := authorize(ctx, r, actorID, sk.UserID); err != nil {
			return err
		}
		return r.Skills().Delete(ctx, sk.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("skill deleted", "skill_id", skillID, "actor_id", actorID)
	return nil
}

func (s *Service) Endorse(ctx context.Context, skillID, endorserID uuid.UUID, comment string) (skill.Endorsement, error) {
	var (
		out    skill.Endorsement
		outbox []notification.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		outbox = nil

		sk, err := r.Skills().GetByID(ctx, skillID)
		if err != nil {
			return err
		}
		endorser, err := r.Users().GetByID(ctx, endorserID)
		if err != nil {
			return err
		}
		if endorser.ID == sk.UserID {
			return fmt.Errorf("%w: users cannot endorse their own skills", domain.ErrForbidden)
		}

		now := s.now().UTC()
		e := skill.Endorsement{
			ID:         uuid.New(),
			SkillID:    sk.ID,
			EndorserID: endorser.ID,
			Comment:    strings.TrimSpace(comment),
			CreatedAt:  now,
		}
		if err := r.Endorsements().Create(ctx, e); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: %s already endorsed skill %s", domain.ErrDuplicateEndorsement, endorser.ID, sk.ID)
			}
			return err
		}

		by := endorser.ID.String()
		if err := r.SkillHistory().Append(ctx, skill.History{
			ID:          uuid.New(),
			SkillID:     sk.ID,
			Action:      skill.HistoryEndorsed,
			NewValue:    &by,
			PerformedBy: &endorser.ID,
			Reason:      e.Comment,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		outbox = append(outbox, notification.Notification{
			RecipientID: sk.UserID,
			Title:       "Skill endorsed",
			Message:     fmt.Sprintf("%s endorsed your %s skill", endorser.DisplayName(), sk.Name),
			Subject:     notification.SkillSubject(sk.ID),
		})
		out = e
		return nil
	})
	if err != nil {
		return skill.Endorsement{}, err
	}

	for _, n := range outbox {
		s.notifier.Notify(n)
	}
	return out, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]skill.Skill, error) {
	r := s.store.Repos()
	if _, err := r.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return r.Skills().ListByUser(ctx, userID)
}

func (s *Service) History(ctx context.Context, skillID uuid.UUID) ([]skill.History, error) {
	r := s.store.Repos()
	if _, err := r.Skills().GetByID(ctx, skillID); err != nil {
		return nil, err
	}
	return r.SkillHistory().ListBySkill(ctx, skillID)
}

func (s *Service) Endorsements(ctx context.Context, skillID uuid.UUID) ([]skill.Endorsement, error) {
	r := s.store.Repos()
	if _, err := r.Skills().GetByID(ctx, skillID); err != nil {
		return nil, err
	}
	return r.Endorsements().ListBySkill(ctx, skillID)
}

// authorize lets owners edit their own profile and reviewers edit anyone's.
func authorize(ctx context.Context, r repository.Repos, actorID, ownerID uuid.UUID) (user.User, error) {
	actor, err := r.Users().GetByID(ctx, actorID)
	if err != nil {
		return user.User{}, err
	}
	if actor.ID != ownerID && !actor.Role.CanReview() {
		return user.User{}, fmt.Errorf("%w: user %s cannot edit skills of %s", domain.ErrForbidden, actorID, ownerID)
	}
	return actor, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
