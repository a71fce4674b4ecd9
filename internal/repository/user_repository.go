package repository

import (
	"context"
	"fmt"

	"skill-staffing/internal/database"
	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/user"

	"github.com/google/uuid"
)

const userColumns = `id, email, full_name, role, created_at, updated_at`

type PostgresUserRepository struct {
	db database.Querier
}

func NewPostgresUserRepository(db database.Querier) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, full_name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.FullName, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: user email %s", ErrConflict, u.Email)
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, id)
}

func (r *PostgresUserRepository) LockByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	return scanUser(row, id)
}

func (r *PostgresUserRepository) ListByRoles(ctx context.Context, roles ...user.Role) ([]user.User, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ANY($1) ORDER BY email ASC`,
		names,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.User, 0)
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row database.Row, id uuid.UUID) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return user.User{}, domain.NotFoundf("user %s", id)
		}
		return user.User{}, err
	}
	return u, nil
}
