package repository

import (
	"context"
	"fmt"
	"time"

	"skill-staffing/internal/database"
	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/project"

	"github.com/google/uuid"
)

const resourceColumns = `id, project_id, user_id, role, allocation_percentage, start_date, end_date, created_at, updated_at`

type PostgresProjectResourceRepository struct {
	db database.Querier
}

func NewPostgresProjectResourceRepository(db database.Querier) *PostgresProjectResourceRepository {
	return &PostgresProjectResourceRepository{db: db}
}

func (r *PostgresProjectResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (project.Resource, error) {
	row := r.db.QueryRow(ctx, `SELECT `+resourceColumns+` FROM project_resources WHERE id = $1`, id)
	return scanResource(row, fmt.Sprintf("resource %s", id))
}

func (r *PostgresProjectResourceRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (project.Resource, error) {
	row := r.db.QueryRow(ctx, `SELECT `+resourceColumns+` FROM project_resources WHERE id = $1 FOR UPDATE`, id)
	return scanResource(row, fmt.Sprintf("resource %s", id))
}

func (r *PostgresProjectResourceRepository) FindByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (project.Resource, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+resourceColumns+` FROM project_resources WHERE project_id = $1 AND user_id = $2`,
		projectID, userID,
	)
	return scanResource(row, fmt.Sprintf("resource for user %s on project %s", userID, projectID))
}

func (r *PostgresProjectResourceRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]project.Resource, error) {
	return r.list(ctx,
		`SELECT `+resourceColumns+`
		 FROM project_resources
		 WHERE user_id = $1
		   AND (start_date IS NULL OR start_date <= $2::date)
		   AND (end_date IS NULL OR end_date >= $2::date)
		 ORDER BY created_at ASC`,
		userID, domain.DateOnly(asOf),
	)
}

// FindOverlappingByUser returns assignments active on at least one day of
// [start, end]. Nil bounds are open-ended.
func (r *PostgresProjectResourceRepository) FindOverlappingByUser(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]project.Resource, error) {
	return r.list(ctx,
		`SELECT `+resourceColumns+`
		 FROM project_resources
		 WHERE user_id = $1
		   AND ($2::date IS NULL OR end_date IS NULL OR end_date >= $2::date)
		   AND ($3::date IS NULL OR start_date IS NULL OR start_date <= $3::date)
		 ORDER BY created_at ASC`,
		userID, domain.DatePtr(start), domain.DatePtr(end),
	)
}

func (r *PostgresProjectResourceRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]project.Resource, error) {
	return r.list(ctx,
		`SELECT `+resourceColumns+` FROM project_resources WHERE project_id = $1 ORDER BY created_at ASC`,
		projectID,
	)
}

func (r *PostgresProjectResourceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]project.Resource, error) {
	return r.list(ctx,
		`SELECT `+resourceColumns+` FROM project_resources WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
}

func (r *PostgresProjectResourceRepository) Create(ctx context.Context, res project.Resource) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO project_resources (id, project_id, user_id, role, allocation_percentage, start_date, end_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.ID, res.ProjectID, res.UserID, res.Role, res.Allocation,
		domain.DatePtr(res.StartDate), domain.DatePtr(res.EndDate), res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return fmt.Errorf("%w: user %s already on project %s", ErrConflict, res.UserID, res.ProjectID)
		case database.IsForeignKeyViolation(err):
			return domain.NotFoundf("project %s or user %s", res.ProjectID, res.UserID)
		case database.IsCheckViolation(err):
			return domain.InvalidInputf("resource violates allocation or date constraints")
		}
		return err
	}
	return nil
}

func (r *PostgresProjectResourceRepository) Update(ctx context.Context, res project.Resource) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE project_resources
		 SET role = $1, allocation_percentage = $2, start_date = $3, end_date = $4, updated_at = $5
		 WHERE id = $6`,
		res.Role, res.Allocation, domain.DatePtr(res.StartDate), domain.DatePtr(res.EndDate), res.UpdatedAt, res.ID,
	)
	if err != nil {
		if database.IsCheckViolation(err) {
			return domain.InvalidInputf("resource violates allocation or date constraints")
		}
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("resource %s", res.ID)
	}
	return nil
}

func (r *PostgresProjectResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM project_resources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("resource %s", id)
	}
	return nil
}

func (r *PostgresProjectResourceRepository) list(ctx context.Context, q string, args ...any) ([]project.Resource, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]project.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanResource(row database.Row, what string) (project.Resource, error) {
	var res project.Resource
	err := row.Scan(
		&res.ID, &res.ProjectID, &res.UserID, &res.Role, &res.Allocation,
		&res.StartDate, &res.EndDate, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if what != "" && database.IsNoRows(err) {
			return project.Resource{}, domain.NotFoundf("%s", what)
		}
		return project.Resource{}, err
	}
	res.StartDate = domain.DatePtr(res.StartDate)
	res.EndDate = domain.DatePtr(res.EndDate)
	return res, nil
}

type PostgresResourceHistoryRepository struct {
	db database.Querier
}

func NewPostgresResourceHistoryRepository(db database.Querier) *PostgresResourceHistoryRepository {
	return &PostgresResourceHistoryRepository{db: db}
}

func (r *PostgresResourceHistoryRepository) Append(ctx context.Context, h project.ResourceHistory) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO resource_history (
			id, resource_id, project_id, user_id, action,
			previous_role, new_role, previous_allocation, new_allocation,
			performed_by, note, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		h.ID, h.ResourceID, h.ProjectID, h.UserID, string(h.Action),
		h.PreviousRole, h.NewRole, h.PreviousAllocation, h.NewAllocation,
		h.PerformedBy, h.Note, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append resource history: %w", err)
	}
	return nil
}

func (r *PostgresResourceHistoryRepository) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]project.ResourceHistory, error) {
	return r.list(ctx,
		`SELECT id, resource_id, project_id, user_id, action,
		        previous_role, new_role, previous_allocation, new_allocation,
		        performed_by, note, created_at
		 FROM resource_history
		 WHERE resource_id = $1
		 ORDER BY created_at ASC, id ASC`,
		resourceID,
	)
}

func (r *PostgresResourceHistoryRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]project.ResourceHistory, error) {
	return r.list(ctx,
		`SELECT id, resource_id, project_id, user_id, action,
		        previous_role, new_role, previous_allocation, new_allocation,
		        performed_by, note, created_at
		 FROM resource_history
		 WHERE project_id = $1
		 ORDER BY created_at ASC, id ASC`,
		projectID,
	)
}

func (r *PostgresResourceHistoryRepository) list(ctx context.Context, q string, args ...any) ([]project.ResourceHistory, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]project.ResourceHistory, 0)
	for rows.Next() {
		var h project.ResourceHistory
		if err := rows.Scan(
			&h.ID, &h.ResourceID, &h.ProjectID, &h.UserID, &h.Action,
			&h.PreviousRole, &h.NewRole, &h.PreviousAllocation, &h.NewAllocation,
			&h.PerformedBy, &h.Note, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
