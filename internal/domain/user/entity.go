package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// ReviewerRoles hold the roles allowed to review skill updates.
var ReviewerRoles = []Role{RoleManager, RoleAdmin}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

func (r Role) CanReview() bool {
	return r == RoleManager || r == RoleAdmin
}

type User struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) DisplayName() string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Email
}
