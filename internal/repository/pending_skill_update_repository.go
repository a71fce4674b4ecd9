package repository

import (
	"context"
	"fmt"
	"strings"

	"skill-staffing/internal/database"
	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/skill"

	"github.com/google/uuid"
)

const pendingUpdateColumns = `id, user_id, skill_id,
	current_name, current_category, current_level,
	proposed_name, proposed_category, proposed_level, justification,
	status, reviewer_id, reviewer_comments,
	created_at, updated_at, approved_at, rejected_at`

type PostgresPendingSkillUpdateRepository struct {
	db database.Querier
}

func NewPostgresPendingSkillUpdateRepository(db database.Querier) *PostgresPendingSkillUpdateRepository {
	return &PostgresPendingSkillUpdateRepository{db: db}
}

func (r *PostgresPendingSkillUpdateRepository) GetByID(ctx context.Context, id uuid.UUID) (skill.PendingUpdate, error) {
	row := r.db.QueryRow(ctx, `SELECT `+pendingUpdateColumns+` FROM pending_skill_updates WHERE id = $1`, id)
	return scanPendingUpdate(row, id)
}

func (r *PostgresPendingSkillUpdateRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.PendingUpdate, error) {
	row := r.db.QueryRow(ctx, `SELECT `+pendingUpdateColumns+` FROM pending_skill_updates WHERE id = $1 FOR UPDATE`, id)
	return scanPendingUpdate(row, id)
}

func (r *PostgresPendingSkillUpdateRepository) FindByUserSkillAndStatus(ctx context.Context, userID uuid.UUID, skillID *uuid.UUID, status skill.UpdateStatus) (skill.PendingUpdate, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+pendingUpdateColumns+`
		 FROM pending_skill_updates
		 WHERE user_id = $1
		   AND skill_id IS NOT DISTINCT FROM $2
		   AND status = $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, skillID, string(status),
	)

	u, err := scanPendingUpdate(row, uuid.Nil)
	if err != nil {
		if database.IsNoRows(err) {
			return skill.PendingUpdate{}, domain.NotFoundf("%s update for user %s", status, userID)
		}
		return skill.PendingUpdate{}, err
	}
	return u, nil
}

func (r *PostgresPendingSkillUpdateRepository) List(ctx context.Context, f PendingUpdateFilter) ([]skill.PendingUpdate, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.ReviewerID != nil {
		args = append(args, *f.ReviewerID)
		where = append(where, fmt.Sprintf("reviewer_id = $%d", len(args)))
	}

	q := `SELECT ` + pendingUpdateColumns + ` FROM pending_skill_updates`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id ASC`

	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.PendingUpdate, 0)
	for rows.Next() {
		u, err := scanPendingUpdate(rows, uuid.Nil)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresPendingSkillUpdateRepository) Create(ctx context.Context, u skill.PendingUpdate) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO pending_skill_updates (
			id, user_id, skill_id,
			current_name, current_category, current_level,
			proposed_name, proposed_category, proposed_level, justification,
			status, reviewer_id, reviewer_comments,
			created_at, updated_at, approved_at, rejected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		u.ID, u.UserID, u.SkillID,
		u.CurrentName, u.CurrentCategory, levelArg(u.CurrentLevel),
		u.ProposedName, u.ProposedCategory, string(u.ProposedLevel), u.Justification,
		string(u.Status), u.ReviewerID, u.ReviewerComments,
		u.CreatedAt, u.UpdatedAt, u.ApprovedAt, u.RejectedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: pending update for user %s", ErrConflict, u.UserID)
		}
		if database.IsForeignKeyViolation(err) {
			return domain.NotFoundf("user %s", u.UserID)
		}
		return err
	}
	return nil
}

// Update persists the mutable review fields.
func (r *PostgresPendingSkillUpdateRepository) Update(ctx context.Context, u skill.PendingUpdate) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE pending_skill_updates
		 SET status = $1,
		     reviewer_id = $2,
		     reviewer_comments = $3,
		     updated_at = $4,
		     approved_at = $5,
		     rejected_at = $6
		 WHERE id = $7`,
		string(u.Status), u.ReviewerID, u.ReviewerComments, u.UpdatedAt, u.ApprovedAt, u.RejectedAt, u.ID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.NotFoundf("reviewer %v", u.ReviewerID)
		}
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("skill update %s", u.ID)
	}
	return nil
}

func (r *PostgresPendingSkillUpdateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx, `DELETE FROM pending_skill_updates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("skill update %s", id)
	}
	return nil
}

// scanPendingUpdate reports ErrNotFound for a missing row only when id is
// set; otherwise the raw no-rows error is returned to the caller.
func scanPendingUpdate(row database.Row, id uuid.UUID) (skill.PendingUpdate, error) {
	var (
		u            skill.PendingUpdate
		currentLevel *string
		comments     *string
	)
	err := row.Scan(
		&u.ID, &u.UserID, &u.SkillID,
		&u.CurrentName, &u.CurrentCategory, &currentLevel,
		&u.ProposedName, &u.ProposedCategory, &u.ProposedLevel, &u.Justification,
		&u.Status, &u.ReviewerID, &comments,
		&u.CreatedAt, &u.UpdatedAt, &u.ApprovedAt, &u.RejectedAt,
	)
	if err != nil {
		if id != uuid.Nil && database.IsNoRows(err) {
			return skill.PendingUpdate{}, domain.NotFoundf("skill update %s", id)
		}
		return skill.PendingUpdate{}, err
	}
	if currentLevel != nil {
		l := skill.Level(*currentLevel)
		u.CurrentLevel = &l
	}
	if comments != nil {
		u.ReviewerComments = *comments
	}
	return u, nil
}

func levelArg(l *skill.Level) *string {
	if l == nil {
		return nil
	}
	s := string(*l)
	return &s
}
