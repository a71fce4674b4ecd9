package seeder

import (
	"context"
	"fmt"

	"skill-staffing/internal/database"

	"github.com/google/uuid"
)

type ProjectsSeeder struct{}

func (ProjectsSeeder) Name() string { return "projects" }

func (ProjectsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "projects", "id", "name", "client_id", "status"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	if _, err := tx.Exec(ctx,
		`INSERT INTO clients (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		AcmeClientID, "Acme Corp",
	); err != nil {
		return err
	}

	projects := map[string]uuid.UUID{
		"Apollo": ApolloProject,
		"Gemini": GeminiProject,
	}
	for name, id := range projects {
		if _, err := tx.Exec(ctx,
			`INSERT INTO projects (id, name, client_id, status) VALUES ($1, $2, $3, 'ACTIVE') ON CONFLICT (id) DO NOTHING`,
			id, name, AcmeClientID,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
