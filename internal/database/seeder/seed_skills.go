package seeder

import (
	"context"
	"fmt"

	"skill-staffing/internal/database"
	"skill-staffing/internal/domain/skill"

	"github.com/google/uuid"
)

type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

func (SkillsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "skills", "id", "user_id", "name", "category", "level"); err != nil {
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
		UserID   uuid.UUID
		Name     string
		Category string
		Level    skill.Level
	}{
		{UserID: EmployeeID, Name: "Go", Category: "Programming Language", Level: skill.LevelAdvanced},
		{UserID: EmployeeID, Name: "PostgreSQL", Category: "Database", Level: skill.LevelIntermediate},
		{UserID: Employee2, Name: "TypeScript", Category: "Programming Language", Level: skill.LevelExpert},
		{UserID: Employee2, Name: "Docker", Category: "DevOps", Level: skill.LevelBeginner},
	}

	for _, it := range items {
		// Deterministic IDs so reseeding is a no-op.
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(it.UserID.String()+"/"+it.Name))
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO skills (id, user_id, name, category, level) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			id, it.UserID, it.Name, it.Category, string(it.Level),
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
