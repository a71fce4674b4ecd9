package seeder

import (
	"context"
	"fmt"

	"skill-staffing/internal/database"
	"skill-staffing/internal/domain/user"

	"github.com/google/uuid"
)

type UsersSeeder struct{}

func (UsersSeeder) Name() string { return "users" }

func (UsersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "users", "id", "email", "full_name", "role"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		ID       uuid.UUID
		Email    string
		FullName string
		Role     user.Role
	}{
		{ID: AdminID, Email: "admin@example.com", FullName: "Ada Admin", Role: user.RoleAdmin},
		{ID: ManagerID, Email: "manager@example.com", FullName: "Max Manager", Role: user.RoleManager},
		{ID: EmployeeID, Email: "erin@example.com", FullName: "Erin Engineer", Role: user.RoleEmployee},
		{ID: Employee2, Email: "sam@example.com", FullName: "Sam Developer", Role: user.RoleEmployee},
	}

	for _, it := range items {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO users (id, email, full_name, role) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			it.ID, it.Email, it.FullName, string(it.Role),
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
