package user

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// LockByID loads the user and holds a row lock until the surrounding
	// transaction ends. Allocation checks for one user serialize on it.
	LockByID(ctx context.Context, id uuid.UUID) (User, error)
	ListByRoles(ctx context.Context, roles ...Role) ([]User, error)
}
