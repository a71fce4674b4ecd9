package repository

import (
	"context"

	"skill-staffing/internal/database"
	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/project"

	"github.com/google/uuid"
)

type PostgresProjectRepository struct {
	db database.Querier
}

func NewPostgresProjectRepository(db database.Querier) *PostgresProjectRepository {
	return &PostgresProjectRepository{db: db}
}

func (r *PostgresProjectRepository) Create(ctx context.Context, p project.Project) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO projects (id, name, client_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.ClientID, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PostgresProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (project.Project, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, client_id, status, created_at, updated_at FROM projects WHERE id = $1`,
		id,
	)

	var p project.Project
	if err := row.Scan(&p.ID, &p.Name, &p.ClientID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return project.Project{}, domain.NotFoundf("project %s", id)
		}
		return project.Project{}, err
	}
	return p, nil
}

func (r *PostgresProjectRepository) CreateClient(ctx context.Context, c project.Client) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO clients (id, name, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.CreatedAt,
	)
	return err
}

func (r *PostgresProjectRepository) GetClient(ctx context.Context, id uuid.UUID) (project.Client, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, created_at FROM clients WHERE id = $1`, id)

	var c project.Client
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if database.IsNoRows(err) {
			return project.Client{}, domain.NotFoundf("client %s", id)
		}
		return project.Client{}, err
	}
	return c, nil
}
