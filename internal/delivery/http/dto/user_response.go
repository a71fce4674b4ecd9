package dto

import (
	"time"

	"skill-staffing/internal/domain/user"
	useruc "skill-staffing/internal/usecase/user"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

type UserProfileResponse struct {
	UserResponse
	Skills      []SkillResponse    `json:"skills"`
	Assignments []ResourceResponse `json:"assignments"`
	Allocation  int                `json:"allocation"`
}

func NewUserProfileResponse(p useruc.Profile) UserProfileResponse {
	return UserProfileResponse{
		UserResponse: NewUserResponse(p.User),
		Skills:       NewSkillResponses(p.Skills),
		Assignments:  NewResourceResponses(p.Assignments),
		Allocation:   p.Allocation,
	}
}
