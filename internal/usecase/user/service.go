// Package user serves read-only profile views combining a user with their
// skills and current assignments.
package user

import (
	"context"
	"time"

	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/allocation"
	"skill-staffing/internal/domain/project"
	"skill-staffing/internal/domain/skill"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/repository"

	"github.com/google/uuid"
)

type Profile struct {
	User        user.User
	Skills      []skill.Skill
	Assignments []project.Resource
	// Allocation is the total over assignments active today.
	Allocation int
}

type Usecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error)
	ListByRoles(ctx context.Context, roles ...user.Role) ([]user.User, error)
}

type Service struct {
	store repository.Store
	now   func() time.Time
}

func NewService(store repository.Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	r := s.store.Repos()
	usr, err := r.Users().GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	skills, err := r.Skills().ListByUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	assignments, err := r.Resources().ListByUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	total, err := allocation.NewEngine(r.Resources()).CurrentTotalAllocation(ctx, userID, domain.DateOnly(s.now()))
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: usr, Skills: skills, Assignments: assignments, Allocation: total}, nil
}

// ListByRoles returns every user when no role is given.
func (s *Service) ListByRoles(ctx context.Context, roles ...user.Role) ([]user.User, error) {
	if len(roles) == 0 {
		roles = []user.Role{user.RoleEmployee, user.RoleManager, user.RoleAdmin}
	}
	return s.store.Repos().Users().ListByRoles(ctx, roles...)
}
