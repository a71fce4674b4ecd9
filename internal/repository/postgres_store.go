package repository

import (
	"context"
	"fmt"

	"skill-staffing/internal/database"
	"skill-staffing/internal/domain/user"
)

type PostgresStore struct {
	db database.DB
}

func NewPostgresStore(db database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Repos() Repos {
	return postgresRepos{q: s.db}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	if err := fn(ctx, postgresRepos{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type postgresRepos struct {
	q database.Querier
}

func (r postgresRepos) Users() user.Repository { return NewPostgresUserRepository(r.q) }
func (r postgresRepos) Projects() ProjectRepository {
	return NewPostgresProjectRepository(r.q)
}
func (r postgresRepos) Skills() SkillRepository { return NewPostgresSkillRepository(r.q) }
func (r postgresRepos) SkillHistory() SkillHistoryRepository {
	return NewPostgresSkillHistoryRepository(r.q)
}
func (r postgresRepos) Endorsements() SkillEndorsementRepository {
	return NewPostgresSkillEndorsementRepository(r.q)
}
func (r postgresRepos) PendingUpdates() PendingSkillUpdateRepository {
	return NewPostgresPendingSkillUpdateRepository(r.q)
}
func (r postgresRepos) Resources() ProjectResourceRepository {
	return NewPostgresProjectResourceRepository(r.q)
}
func (r postgresRepos) ResourceHistory() ResourceHistoryRepository {
	return NewPostgresResourceHistoryRepository(r.q)
}
