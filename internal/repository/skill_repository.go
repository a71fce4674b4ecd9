package repository

import (
	"context"
	"fmt"

	"skill-staffing/internal/database"
	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/skill"

	"github.com/google/uuid"
)

const skillColumns = `id, user_id, name, category, level, certification, created_at, updated_at`

type PostgresSkillRepository struct {
	db database.Querier
}

func NewPostgresSkillRepository(db database.Querier) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

func (r *PostgresSkillRepository) GetByID(ctx context.Context, id uuid.UUID) (skill.Skill, error) {
	row := r.db.QueryRow(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1`, id)
	return scanSkill(row, id)
}

func (r *PostgresSkillRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.Skill, error) {
	row := r.db.QueryRow(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1 FOR UPDATE`, id)
	return scanSkill(row, id)
}

func (r *PostgresSkillRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]skill.Skill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE user_id = $1 ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.Skill, 0)
	for rows.Next() {
		var s skill.Skill
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Category, &s.Level, &s.Certification, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSkillRepository) Create(ctx context.Context, s skill.Skill) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO skills (id, user_id, name, category, level, certification, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.Name, s.Category, string(s.Level), s.Certification, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.NotFoundf("user %s", s.UserID)
		}
		return err
	}
	return nil
}

func (r *PostgresSkillRepository) Update(ctx context.Context, s skill.Skill) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE skills
		 SET name = $1, category = $2, level = $3, certification = $4, updated_at = $5
		 WHERE id = $6`,
		s.Name, s.Category, string(s.Level), s.Certification, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("skill %s", s.ID)
	}
	return nil
}

// Delete cascades to the skill's endorsements and history.
func (r *PostgresSkillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("skill %s", id)
	}
	return nil
}

func scanSkill(row database.Row, id uuid.UUID) (skill.Skill, error) {
	var s skill.Skill
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Category, &s.Level, &s.Certification, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return skill.Skill{}, domain.NotFoundf("skill %s", id)
		}
		return skill.Skill{}, err
	}
	return s, nil
}

type PostgresSkillHistoryRepository struct {
	db database.Querier
}

func NewPostgresSkillHistoryRepository(db database.Querier) *PostgresSkillHistoryRepository {
	return &PostgresSkillHistoryRepository{db: db}
}

func (r *PostgresSkillHistoryRepository) Append(ctx context.Context, h skill.History) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO skill_history (id, skill_id, action, old_value, new_value, performed_by, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.SkillID, string(h.Action), h.OldValue, h.NewValue, h.PerformedBy, h.Reason, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append skill history: %w", err)
	}
	return nil
}

func (r *PostgresSkillHistoryRepository) ListBySkill(ctx context.Context, skillID uuid.UUID) ([]skill.History, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, skill_id, action, old_value, new_value, performed_by, reason, created_at
		 FROM skill_history
		 WHERE skill_id = $1
		 ORDER BY created_at ASC, id ASC`,
		skillID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.History, 0)
	for rows.Next() {
		var h skill.History
		if err := rows.Scan(&h.ID, &h.SkillID, &h.Action, &h.OldValue, &h.NewValue, &h.PerformedBy, &h.Reason, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type PostgresSkillEndorsementRepository struct {
	db database.Querier
}

func NewPostgresSkillEndorsementRepository(db database.Querier) *PostgresSkillEndorsementRepository {
	return &PostgresSkillEndorsementRepository{db: db}
}

func (r *PostgresSkillEndorsementRepository) Create(ctx context.Context, e skill.Endorsement) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO skill_endorsements (id, skill_id, endorser_id, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.SkillID, e.EndorserID, e.Comment, e.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: skill %s already endorsed by %s", ErrConflict, e.SkillID, e.EndorserID)
		}
		return err
	}
	return nil
}

func (r *PostgresSkillEndorsementRepository) ListBySkill(ctx context.Context, skillID uuid.UUID) ([]skill.Endorsement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, skill_id, endorser_id, comment, created_at
		 FROM skill_endorsements
		 WHERE skill_id = $1
		 ORDER BY created_at ASC`,
		skillID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.Endorsement, 0)
	for rows.Next() {
		var e skill.Endorsement
		if err := rows.Scan(&e.ID, &e.SkillID, &e.EndorserID, &e.Comment, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
