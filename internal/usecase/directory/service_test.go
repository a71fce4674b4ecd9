package directory

import (
	"context"
	"testing"
	"time"

	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/skill"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/notification"
	"skill-staffing/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	notes    *notification.Recorder
	svc      *Service
	employee user.User
	peer     user.User
	manager  user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), notes: &notification.Recorder{}}
	f.svc = NewService(f.store, f.notes, nil)
	f.svc.now = func() time.Time { return time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC) }

	f.employee = f.addUser(t, "erin@example.com", "Erin", user.RoleEmployee)
	f.peer = f.addUser(t, "paul@example.com", "Paul", user.RoleEmployee)
	f.manager = f.addUser(t, "max@example.com", "Max", user.RoleManager)
	return f
}

func (f *fixture) addUser(t *testing.T, email, name string, role user.Role) user.User {
	t.Helper()
	u := user.User{ID: uuid.New(), Email: email, FullName: name, Role: role}
	require.NoError(t, f.store.Repos().Users().Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }

func TestCreate_OwnerAddsSkillWithHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sk, err := f.svc.Create(ctx, CreateInput{
		ActorID:       f.employee.ID,
		OwnerID:       f.employee.ID,
		Name:          " Go ",
		Category:      "Programming Language",
		Level:         skill.LevelBeginner,
		Certification: strPtr("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go", sk.Name)
	assert.Nil(t, sk.Certification)

	hist, err := f.svc.History(ctx, sk.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, skill.HistoryCreated, hist[0].Action)
	assert.Equal(t, "BEGINNER", *hist[0].NewValue)

	items, err := f.svc.ListByUser(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCreate_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"empty name", CreateInput{ActorID: f.employee.ID, OwnerID: f.employee.ID, Level: skill.LevelExpert}, domain.ErrInvalidInput},
		{"unknown level", CreateInput{ActorID: f.employee.ID, OwnerID: f.employee.ID, Name: "Go", Level: "GURU"}, domain.ErrInvalidInput},
		{"owner rates a new skill above beginner", CreateInput{ActorID: f.employee.ID, OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelExpert}, domain.ErrForbidden},
		{"peer edits someone else", CreateInput{ActorID: f.peer.ID, OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelExpert}, domain.ErrForbidden},
		{"unknown owner", CreateInput{ActorID: f.manager.ID, OwnerID: uuid.New(), Name: "Go", Level: skill.LevelExpert}, domain.ErrNotFound},
		{"unknown actor", CreateInput{ActorID: uuid.New(), OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelExpert}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.svc.Create(ctx, CreateInput{ActorID: f.manager.ID, OwnerID: f.employee.ID, Name: "SQL", Level: skill.LevelBeginner})
	require.NoError(t, err)
}

func TestUpdate_RecordsEachChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sk, err := f.svc.Create(ctx, CreateInput{ActorID: f.manager.ID, OwnerID: f.employee.ID, Name: "Go", Category: "Lang", Level: skill.LevelAdvanced})
	require.NoError(t, err)

	level := skill.LevelExpert
	updated, err := f.svc.Update(ctx, UpdateInput{
		ActorID:       f.manager.ID,
		SkillID:       sk.ID,
		Name:          strPtr("Golang"),
		Category:      strPtr("Lang"),
		Certification: strPtr("GCP-PD"),
		Level:         &level,
		Reason:        "yearly review",
	})
	require.NoError(t, err)
	assert.Equal(t, "Golang", updated.Name)
	assert.Equal(t, skill.LevelExpert, updated.Level)
	require.NotNil(t, updated.Certification)
	assert.Equal(t, "GCP-PD", *updated.Certification)

	hist, err := f.svc.History(ctx, sk.ID)
	require.NoError(t, err)
	require.Len(t, hist, 4)
	assert.Equal(t, skill.HistoryUpdated, hist[1].Action)
	assert.Equal(t, "name=Go", *hist[1].OldValue)
	assert.Equal(t, "name=Golang", *hist[1].NewValue)
	assert.Equal(t, skill.HistoryUpdated, hist[2].Action)
	assert.Equal(t, skill.HistoryLevelChanged, hist[3].Action)
	assert.Equal(t, "ADVANCED", *hist[3].OldValue)
	assert.Equal(t, "yearly review", hist[3].Reason)
}

func TestUpdate_OwnerCannotChangeOwnLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sk, err := f.svc.Create(ctx, CreateInput{ActorID: f.manager.ID, OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelAdvanced})
	require.NoError(t, err)

	level := skill.LevelExpert
	_, err = f.svc.Update(ctx, UpdateInput{ActorID: f.employee.ID, SkillID: sk.ID, Name: strPtr("Golang"), Level: &level})
	require.ErrorIs(t, err, domain.ErrForbidden)

	// The whole edit rolled back.
	items, err := f.svc.ListByUser(ctx, f.employee.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Go", items[0].Name)

	_, err = f.svc.Update(ctx, UpdateInput{ActorID: f.employee.ID, SkillID: sk.ID, Name: strPtr("Golang")})
	require.NoError(t, err)
}

func TestUpdate_NoChangeWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sk, err := f.svc.Create(ctx, CreateInput{ActorID: f.manager.ID, OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelAdvanced})
	require.NoError(t, err)

	level := skill.LevelAdvanced
	_, err = f.svc.Update(ctx, UpdateInput{ActorID: f.employee.ID, SkillID: sk.ID, Name: strPtr("Go"), Level: &level})
	require.NoError(t, err)

	hist, err := f.svc.History(ctx, sk.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestEndorse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sk, err := f.svc.Create(ctx, CreateInput{ActorID: f.manager.ID, OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelAdvanced})
	require.NoError(t, err)

	e, err := f.svc.Endorse(ctx, sk.ID, f.peer.ID, " great reviews ")
	require.NoError(t, err)
	assert.Equal(t, "great reviews", e.Comment)

	_, err = f.svc.Endorse(ctx, sk.ID, f.peer.ID, "again")
	require.ErrorIs(t, err, domain.ErrDuplicateEndorsement)

	_, err = f.svc.Endorse(ctx, sk.ID, f.employee.ID, "me")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Endorse(ctx, uuid.New(), f.peer.ID, "")
	require.ErrorIs(t, err, domain.ErrNotFound)

	endorsements, err := f.svc.Endorsements(ctx, sk.ID)
	require.NoError(t, err)
	assert.Len(t, endorsements, 1)

	hist, err := f.svc.History(ctx, sk.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, skill.HistoryEndorsed, hist[1].Action)

	notes := f.notes.Items()
	require.Len(t, notes, 1)
	assert.Equal(t, f.employee.ID, notes[0].RecipientID)
	assert.Equal(t, "Paul endorsed your Go skill", notes[0].Message)
	assert.Equal(t, notification.SkillSubject(sk.ID), notes[0].Subject)
}

func TestDelete_CascadesAndAuthorizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sk, err := f.svc.Create(ctx, CreateInput{ActorID: f.manager.ID, OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelAdvanced})
	require.NoError(t, err)
	_, err = f.svc.Endorse(ctx, sk.ID, f.peer.ID, "")
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Delete(ctx, f.peer.ID, sk.ID), domain.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.manager.ID, sk.ID))

	_, err = f.svc.History(ctx, sk.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	endorsements, err := f.store.Repos().Endorsements().ListBySkill(ctx, sk.ID)
	require.NoError(t, err)
	assert.Empty(t, endorsements)

	require.ErrorIs(t, f.svc.Delete(ctx, f.manager.ID, sk.ID), domain.ErrNotFound)
}

func TestCreate_DeleteAndRecreateCannotRaiseLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sk, err := f.svc.Create(ctx, CreateInput{ActorID: f.employee.ID, OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelBeginner})
	require.NoError(t, err)

	level := skill.LevelExpert
	_, err = f.svc.Update(ctx, UpdateInput{ActorID: f.employee.ID, SkillID: sk.ID, Level: &level})
	require.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, f.employee.ID, sk.ID))
	_, err = f.svc.Create(ctx, CreateInput{ActorID: f.employee.ID, OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelExpert})
	require.ErrorIs(t, err, domain.ErrForbidden)

	items, err := f.svc.ListByUser(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Reviewers may still record an assessed level directly.
	created, err := f.svc.Create(ctx, CreateInput{ActorID: f.manager.ID, OwnerID: f.employee.ID, Name: "Go", Level: skill.LevelExpert})
	require.NoError(t, err)
	assert.Equal(t, skill.LevelExpert, created.Level)
}
