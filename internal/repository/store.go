package repository

import (
	"context"
	"errors"
	"time"

	"skill-staffing/internal/domain/project"
	"skill-staffing/internal/domain/skill"
	"skill-staffing/internal/domain/user"

	"github.com/google/uuid"
)

// ErrConflict reports a violated uniqueness constraint.
var ErrConflict = errors.New("conflict")

type SkillRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (skill.Skill, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.Skill, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]skill.Skill, error)
	Create(ctx context.Context, s skill.Skill) error
	Update(ctx context.Context, s skill.Skill) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SkillHistoryRepository interface {
	Append(ctx context.Context, h skill.History) error
	ListBySkill(ctx context.Context, skillID uuid.UUID) ([]skill.History, error)
}

type SkillEndorsementRepository interface {
	Create(ctx context.Context, e skill.Endorsement) error
	ListBySkill(ctx context.Context, skillID uuid.UUID) ([]skill.Endorsement, error)
}

type PendingUpdateFilter struct {
	Status     *skill.UpdateStatus
	UserID     *uuid.UUID
	ReviewerID *uuid.UUID
	Limit      int
	Offset     int
}

type PendingSkillUpdateRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (skill.PendingUpdate, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.PendingUpdate, error)
	// FindByUserSkillAndStatus treats a nil skillID as a value, matching
	// new-skill proposals.
	FindByUserSkillAndStatus(ctx context.Context, userID uuid.UUID, skillID *uuid.UUID, status skill.UpdateStatus) (skill.PendingUpdate, error)
	List(ctx context.Context, f PendingUpdateFilter) ([]skill.PendingUpdate, error)
	Create(ctx context.Context, u skill.PendingUpdate) error
	Update(ctx context.Context, u skill.PendingUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProjectRepository interface {
	Create(ctx context.Context, p project.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (project.Project, error)
	CreateClient(ctx context.Context, c project.Client) error
	GetClient(ctx context.Context, id uuid.UUID) (project.Client, error)
}

type ProjectResourceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (project.Resource, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (project.Resource, error)
	FindByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (project.Resource, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]project.Resource, error)
	FindOverlappingByUser(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]project.Resource, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]project.Resource, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]project.Resource, error)
	Create(ctx context.Context, r project.Resource) error
	Update(ctx context.Context, r project.Resource) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ResourceHistoryRepository interface {
	Append(ctx context.Context, h project.ResourceHistory) error
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]project.ResourceHistory, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]project.ResourceHistory, error)
}

// Repos groups the repositories bound to one connection or transaction.
type Repos interface {
	Users() user.Repository
	Projects() ProjectRepository
	Skills() SkillRepository
	SkillHistory() SkillHistoryRepository
	Endorsements() SkillEndorsementRepository
	PendingUpdates() PendingSkillUpdateRepository
	Resources() ProjectResourceRepository
	ResourceHistory() ResourceHistoryRepository
}

// Store is the persistence gateway. WithinTx commits when fn returns nil and
// rolls back otherwise; repositories handed to fn must not escape it.
type Store interface {
	Repos() Repos
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
