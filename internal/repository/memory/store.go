// Package memory is an in-process repository.Store used by tests and local
// runs without Postgres. Transactions are serialized and applied to a copy of
// the data that replaces the live copy on commit.
package memory

import (
	"context"
	"sync"

	"skill-staffing/internal/domain/project"
	"skill-staffing/internal/domain/skill"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/repository"

	"github.com/google/uuid"
)

type table[T any] struct {
	order []uuid.UUID
	rows  map[uuid.UUID]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[uuid.UUID]T)}
}

func (t *table[T]) get(id uuid.UUID) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id uuid.UUID, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) del(id uuid.UUID) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// all returns rows in insertion order.
func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{
		order: append([]uuid.UUID(nil), t.order...),
		rows:  make(map[uuid.UUID]T, len(t.rows)),
	}
	for k, v := range t.rows {
		c.rows[k] = v
	}
	return c
}

type state struct {
	users           *table[user.User]
	clients         *table[project.Client]
	projects        *table[project.Project]
	skills          *table[skill.Skill]
	skillHistory    *table[skill.History]
	endorsements    *table[skill.Endorsement]
	pendingUpdates  *table[skill.PendingUpdate]
	resources       *table[project.Resource]
	resourceHistory *table[project.ResourceHistory]
}

func newState() *state {
	return &state{
		users:           newTable[user.User](),
		clients:         newTable[project.Client](),
		projects:        newTable[project.Project](),
		skills:          newTable[skill.Skill](),
		skillHistory:    newTable[skill.History](),
		endorsements:    newTable[skill.Endorsement](),
		pendingUpdates:  newTable[skill.PendingUpdate](),
		resources:       newTable[project.Resource](),
		resourceHistory: newTable[project.ResourceHistory](),
	}
}

func (s *state) clone() *state {
	return &state{
		users:           s.users.clone(),
		clients:         s.clients.clone(),
		projects:        s.projects.clone(),
		skills:          s.skills.clone(),
		skillHistory:    s.skillHistory.clone(),
		endorsements:    s.endorsements.clone(),
		pendingUpdates:  s.pendingUpdates.clone(),
		resources:       s.resources.clone(),
		resourceHistory: s.resourceHistory.clone(),
	}
}

type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

// Repos returns repositories that lock the store per call.
func (s *Store) Repos() repository.Repos {
	return repos{
		view: func() (*state, func()) {
			s.mu.Lock()
			return s.data, s.mu.Unlock
		},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	r := repos{
		view: func() (*state, func()) { return work, func() {} },
	}
	if err := fn(ctx, r); err != nil {
		return err
	}
	s.data = work
	return nil
}

type repos struct {
	view func() (*state, func())
}

func (r repos) Users() user.Repository                                  { return userRepo{r.view} }
func (r repos) Projects() repository.ProjectRepository                  { return projectRepo{r.view} }
func (r repos) Skills() repository.SkillRepository                      { return skillRepo{r.view} }
func (r repos) SkillHistory() repository.SkillHistoryRepository         { return skillHistoryRepo{r.view} }
func (r repos) Endorsements() repository.SkillEndorsementRepository     { return endorsementRepo{r.view} }
func (r repos) PendingUpdates() repository.PendingSkillUpdateRepository { return pendingRepo{r.view} }
func (r repos) Resources() repository.ProjectResourceRepository         { return resourceRepo{r.view} }
func (r repos) ResourceHistory() repository.ResourceHistoryRepository {
	return resourceHistoryRepo{r.view}
}
