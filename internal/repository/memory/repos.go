package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/project"
	"skill-staffing/internal/domain/skill"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/repository"

	"github.com/google/uuid"
)

type view func() (*state, func())

type userRepo struct{ view view }

func (r userRepo) Create(_ context.Context, u user.User) error {
	s, done := r.view()
	defer done()
	for _, existing := range s.users.rows {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: user email %s", repository.ErrConflict, u.Email)
		}
	}
	s.users.put(u.ID, u)
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	s, done := r.view()
	defer done()
	u, ok := s.users.get(id)
	if !ok {
		return user.User{}, domain.NotFoundf("user %s", id)
	}
	return u, nil
}

// LockByID is a plain read: transactions are already serialized.
func (r userRepo) LockByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return r.GetByID(ctx, id)
}

func (r userRepo) ListByRoles(_ context.Context, roles ...user.Role) ([]user.User, error) {
	s, done := r.view()
	defer done()
	out := make([]user.User, 0)
	for _, u := range s.users.all() {
		if slices.Contains(roles, u.Role) {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type projectRepo struct{ view view }

func (r projectRepo) Create(_ context.Context, p project.Project) error {
	s, done := r.view()
	defer done()
	if p.ClientID != nil {
		if _, ok := s.clients.get(*p.ClientID); !ok {
			return domain.NotFoundf("client %s", *p.ClientID)
		}
	}
	s.projects.put(p.ID, p)
	return nil
}

func (r projectRepo) GetByID(_ context.Context, id uuid.UUID) (project.Project, error) {
	s, done := r.view()
	defer done()
	p, ok := s.projects.get(id)
	if !ok {
		return project.Project{}, domain.NotFoundf("project %s", id)
	}
	return p, nil
}

func (r projectRepo) CreateClient(_ context.Context, c project.Client) error {
	s, done := r.view()
	defer done()
	s.clients.put(c.ID, c)
	return nil
}

func (r projectRepo) GetClient(_ context.Context, id uuid.UUID) (project.Client, error) {
	s, done := r.view()
	defer done()
	c, ok := s.clients.get(id)
	if !ok {
		return project.Client{}, domain.NotFoundf("client %s", id)
	}
	return c, nil
}

type skillRepo struct{ view view }

func (r skillRepo) GetByID(_ context.Context, id uuid.UUID) (skill.Skill, error) {
	s, done := r.view()
	defer done()
	sk, ok := s.skills.get(id)
	if !ok {
		return skill.Skill{}, domain.NotFoundf("skill %s", id)
	}
	return sk, nil
}

func (r skillRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.Skill, error) {
	return r.GetByID(ctx, id)
}

func (r skillRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]skill.Skill, error) {
	s, done := r.view()
	defer done()
	out := make([]skill.Skill, 0)
	for _, sk := range s.skills.all() {
		if sk.UserID == userID {
			out = append(out, sk)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r skillRepo) Create(_ context.Context, sk skill.Skill) error {
	s, done := r.view()
	defer done()
	if _, ok := s.users.get(sk.UserID); !ok {
		return domain.NotFoundf("user %s", sk.UserID)
	}
	s.skills.put(sk.ID, sk)
	return nil
}

func (r skillRepo) Update(_ context.Context, sk skill.Skill) error {
	s, done := r.view()
	defer done()
	if _, ok := s.skills.get(sk.ID); !ok {
		return domain.NotFoundf("skill %s", sk.ID)
	}
	s.skills.put(sk.ID, sk)
	return nil
}

func (r skillRepo) Delete(_ context.Context, id uuid.UUID) error {
	s, done := r.view()
	defer done()
	if !s.skills.del(id) {
		return domain.NotFoundf("skill %s", id)
	}
	for _, h := range s.skillHistory.all() {
		if h.SkillID == id {
			s.skillHistory.del(h.ID)
		}
	}
	for _, e := range s.endorsements.all() {
		if e.SkillID == id {
			s.endorsements.del(e.ID)
		}
	}
	return nil
}

type skillHistoryRepo struct{ view view }

func (r skillHistoryRepo) Append(_ context.Context, h skill.History) error {
	s, done := r.view()
	defer done()
	if _, ok := s.skills.get(h.SkillID); !ok {
		return fmt.Errorf("append skill history: %w", domain.NotFoundf("skill %s", h.SkillID))
	}
	s.skillHistory.put(h.ID, h)
	return nil
}

func (r skillHistoryRepo) ListBySkill(_ context.Context, skillID uuid.UUID) ([]skill.History, error) {
	s, done := r.view()
	defer done()
	out := make([]skill.History, 0)
	for _, h := range s.skillHistory.all() {
		if h.SkillID == skillID {
			out = append(out, h)
		}
	}
	return out, nil
}

type endorsementRepo struct{ view view }

func (r endorsementRepo) Create(_ context.Context, e skill.Endorsement) error {
	s, done := r.view()
	defer done()
	if _, ok := s.skills.get(e.SkillID); !ok {
		return domain.NotFoundf("skill %s", e.SkillID)
	}
	for _, existing := range s.endorsements.rows {
		if existing.SkillID == e.SkillID && existing.EndorserID == e.EndorserID {
			return fmt.Errorf("%w: skill %s already endorsed by %s", repository.ErrConflict, e.SkillID, e.EndorserID)
		}
	}
	s.endorsements.put(e.ID, e)
	return nil
}

func (r endorsementRepo) ListBySkill(_ context.Context, skillID uuid.UUID) ([]skill.Endorsement, error) {
	s, done := r.view()
	defer done()
	out := make([]skill.Endorsement, 0)
	for _, e := range s.endorsements.all() {
		if e.SkillID == skillID {
			out = append(out, e)
		}
	}
	return out, nil
}

type pendingRepo struct{ view view }

func (r pendingRepo) GetByID(_ context.Context, id uuid.UUID) (skill.PendingUpdate, error) {
	s, done := r.view()
	defer done()
	u, ok := s.pendingUpdates.get(id)
	if !ok {
		return skill.PendingUpdate{}, domain.NotFoundf("skill update %s", id)
	}
	return u, nil
}

func (r pendingRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.PendingUpdate, error) {
	return r.GetByID(ctx, id)
}

func (r pendingRepo) FindByUserSkillAndStatus(_ context.Context, userID uuid.UUID, skillID *uuid.UUID, status skill.UpdateStatus) (skill.PendingUpdate, error) {
	s, done := r.view()
	defer done()
	items := s.pendingUpdates.all()
	for i := len(items) - 1; i >= 0; i-- {
		u := items[i]
		if u.UserID == userID && sameSkill(u.SkillID, skillID) && u.Status == status {
			return u, nil
		}
	}
	return skill.PendingUpdate{}, domain.NotFoundf("%s update for user %s", status, userID)
}

func (r pendingRepo) List(_ context.Context, f repository.PendingUpdateFilter) ([]skill.PendingUpdate, error) {
	s, done := r.view()
	defer done()
	items := s.pendingUpdates.all()
	out := make([]skill.PendingUpdate, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		u := items[i]
		if f.Status != nil && u.Status != *f.Status {
			continue
		}
		if f.UserID != nil && u.UserID != *f.UserID {
			continue
		}
		if f.ReviewerID != nil && (u.ReviewerID == nil || *u.ReviewerID != *f.ReviewerID) {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []skill.PendingUpdate{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r pendingRepo) Create(_ context.Context, u skill.PendingUpdate) error {
	s, done := r.view()
	defer done()
	if _, ok := s.users.get(u.UserID); !ok {
		return domain.NotFoundf("user %s", u.UserID)
	}
	if u.Status == skill.StatusPending {
		for _, existing := range s.pendingUpdates.rows {
			if existing.Status == skill.StatusPending && existing.UserID == u.UserID && sameSkill(existing.SkillID, u.SkillID) {
				return fmt.Errorf("%w: pending update for user %s", repository.ErrConflict, u.UserID)
			}
		}
	}
	s.pendingUpdates.put(u.ID, u)
	return nil
}

func (r pendingRepo) Update(_ context.Context, u skill.PendingUpdate) error {
	s, done := r.view()
	defer done()
	current, ok := s.pendingUpdates.get(u.ID)
	if !ok {
		return domain.NotFoundf("skill update %s", u.ID)
	}
	if u.ReviewerID != nil {
		if _, ok := s.users.get(*u.ReviewerID); !ok {
			return domain.NotFoundf("reviewer %s", *u.ReviewerID)
		}
	}
	current.Status = u.Status
	current.ReviewerID = u.ReviewerID
	current.ReviewerComments = u.ReviewerComments
	current.UpdatedAt = u.UpdatedAt
	current.ApprovedAt = u.ApprovedAt
	current.RejectedAt = u.RejectedAt
	s.pendingUpdates.put(u.ID, current)
	return nil
}

func (r pendingRepo) Delete(_ context.Context, id uuid.UUID) error {
	s, done := r.view()
	defer done()
	if !s.pendingUpdates.del(id) {
		return domain.NotFoundf("skill update %s", id)
	}
	return nil
}

func sameSkill(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type resourceRepo struct{ view view }

func (r resourceRepo) GetByID(_ context.Context, id uuid.UUID) (project.Resource, error) {
	s, done := r.view()
	defer done()
	res, ok := s.resources.get(id)
	if !ok {
		return project.Resource{}, domain.NotFoundf("resource %s", id)
	}
	return res, nil
}

func (r resourceRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (project.Resource, error) {
	return r.GetByID(ctx, id)
}

func (r resourceRepo) FindByProjectAndUser(_ context.Context, projectID, userID uuid.UUID) (project.Resource, error) {
	s, done := r.view()
	defer done()
	for _, res := range s.resources.all() {
		if res.ProjectID == projectID && res.UserID == userID {
			return res, nil
		}
	}
	return project.Resource{}, domain.NotFoundf("resource for user %s on project %s", userID, projectID)
}

func (r resourceRepo) FindActiveByUser(_ context.Context, userID uuid.UUID, asOf time.Time) ([]project.Resource, error) {
	day := domain.DateOnly(asOf)
	return r.filter(func(res project.Resource) bool {
		return res.UserID == userID && res.ActiveOn(day)
	}), nil
}

func (r resourceRepo) FindOverlappingByUser(_ context.Context, userID uuid.UUID, start, end *time.Time) ([]project.Resource, error) {
	start, end = domain.DatePtr(start), domain.DatePtr(end)
	return r.filter(func(res project.Resource) bool {
		return res.UserID == userID && res.Overlaps(start, end)
	}), nil
}

func (r resourceRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]project.Resource, error) {
	return r.filter(func(res project.Resource) bool { return res.ProjectID == projectID }), nil
}

func (r resourceRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]project.Resource, error) {
	return r.filter(func(res project.Resource) bool { return res.UserID == userID }), nil
}

func (r resourceRepo) Create(_ context.Context, res project.Resource) error {
	if err := checkResource(res); err != nil {
		return err
	}
	s, done := r.view()
	defer done()
	if _, ok := s.projects.get(res.ProjectID); !ok {
		return domain.NotFoundf("project %s or user %s", res.ProjectID, res.UserID)
	}
	if _, ok := s.users.get(res.UserID); !ok {
		return domain.NotFoundf("project %s or user %s", res.ProjectID, res.UserID)
	}
	for _, existing := range s.resources.rows {
		if existing.ProjectID == res.ProjectID && existing.UserID == res.UserID {
			return fmt.Errorf("%w: user %s already on project %s", repository.ErrConflict, res.UserID, res.ProjectID)
		}
	}
	res.StartDate, res.EndDate = domain.DatePtr(res.StartDate), domain.DatePtr(res.EndDate)
	s.resources.put(res.ID, res)
	return nil
}

func (r resourceRepo) Update(_ context.Context, res project.Resource) error {
	if err := checkResource(res); err != nil {
		return err
	}
	s, done := r.view()
	defer done()
	current, ok := s.resources.get(res.ID)
	if !ok {
		return domain.NotFoundf("resource %s", res.ID)
	}
	current.Role = res.Role
	current.Allocation = res.Allocation
	current.StartDate = domain.DatePtr(res.StartDate)
	current.EndDate = domain.DatePtr(res.EndDate)
	current.UpdatedAt = res.UpdatedAt
	s.resources.put(res.ID, current)
	return nil
}

func (r resourceRepo) Delete(_ context.Context, id uuid.UUID) error {
	s, done := r.view()
	defer done()
	if !s.resources.del(id) {
		return domain.NotFoundf("resource %s", id)
	}
	return nil
}

func (r resourceRepo) filter(keep func(project.Resource) bool) []project.Resource {
	s, done := r.view()
	defer done()
	out := make([]project.Resource, 0)
	for _, res := range s.resources.all() {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

// checkResource mirrors the table CHECK constraints.
func checkResource(res project.Resource) error {
	if res.Allocation < 0 || res.Allocation > 100 {
		return domain.InvalidInputf("resource violates allocation or date constraints")
	}
	if res.StartDate != nil && res.EndDate != nil && res.StartDate.After(*res.EndDate) {
		return domain.InvalidInputf("resource violates allocation or date constraints")
	}
	return nil
}

type resourceHistoryRepo struct{ view view }

func (r resourceHistoryRepo) Append(_ context.Context, h project.ResourceHistory) error {
	s, done := r.view()
	defer done()
	if _, exists := s.resourceHistory.get(h.ID); exists {
		return fmt.Errorf("append resource history: %w: entry %s exists", repository.ErrConflict, h.ID)
	}
	s.resourceHistory.put(h.ID, h)
	return nil
}

func (r resourceHistoryRepo) ListByResource(_ context.Context, resourceID uuid.UUID) ([]project.ResourceHistory, error) {
	return r.filter(func(h project.ResourceHistory) bool { return h.ResourceID == resourceID }), nil
}

func (r resourceHistoryRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]project.ResourceHistory, error) {
	return r.filter(func(h project.ResourceHistory) bool { return h.ProjectID == projectID }), nil
}

func (r resourceHistoryRepo) filter(keep func(project.ResourceHistory) bool) []project.ResourceHistory {
	s, done := r.view()
	defer done()
	out := make([]project.ResourceHistory, 0)
	for _, h := range s.resourceHistory.all() {
		if keep(h) {
			out = append(out, h)
		}
	}
	return out
}
