package seeder

import (
	"context"

	"skill-staffing/internal/database"
)

// Seeder loads demo data. Seeders must be idempotent.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
