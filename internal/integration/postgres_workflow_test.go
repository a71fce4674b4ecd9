package integration

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"skill-staffing/internal/config"
	"skill-staffing/internal/database"
	"skill-staffing/internal/database/migration"
	dbpostgres "skill-staffing/internal/database/postgres"
	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/project"
	"skill-staffing/internal/domain/skill"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/notification"
	"skill-staffing/internal/repository"
	"skill-staffing/internal/usecase/skillupdate"
	"skill-staffing/internal/usecase/staffing"
	"skill-staffing/migrations"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against a real Postgres and are skipped unless one is
// configured through STAFFING_TEST_DB_* or DB_* variables.

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	usr := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_SSL_MODE"), os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || usr == "" {
		t.Skip("missing test DB env vars: set STAFFING_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	db, err := dbpostgres.Connect(ctx, config.DatabaseConfig{
		DBHost:       host,
		DBPort:       port,
		DBName:       name,
		DBUser:       usr,
		DBPassword:   pass,
		DBSSLMode:    ssl,
		PoolMaxConns: 16,
	})
	require.NoError(t, err, "connect db")
	t.Cleanup(func() { _ = db.Close() })

	r := migration.Runner{FS: migrations.Files}
	require.NoError(t, r.Run(ctx, db.SQLDB()), "run migrations")
	return db
}

func stringsOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

type seeded struct {
	employee user.User
	manager  user.User
	admin    user.User
	projects []project.Project
}

// seed inserts fresh rows per test; ids and emails are random so runs do not
// collide on a shared database.
func seed(t *testing.T, ctx context.Context, store repository.Store, projects int) seeded {
	t.Helper()
	r := store.Repos()

	mk := func(role user.Role) user.User {
		now := time.Now().UTC()
		u := user.User{ID: uuid.New(), Email: uuid.NewString() + "@it.example.com", FullName: string(role), Role: role, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, r.Users().Create(ctx, u))
		return u
	}
	out := seeded{employee: mk(user.RoleEmployee), manager: mk(user.RoleManager), admin: mk(user.RoleAdmin)}
	for i := 0; i < projects; i++ {
		now := time.Now().UTC()
		p := project.Project{ID: uuid.New(), Name: "it-" + uuid.NewString(), Status: "ACTIVE", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, r.Projects().Create(ctx, p))
		out.projects = append(out.projects, p)
	}
	return out
}

func TestPostgres_ConcurrentAssignmentsRespectCapacity(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	store := repository.NewPostgresStore(db)
	s := seed(t, ctx, store, 6)
	svc := staffing.NewService(store, &notification.Recorder{}, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		exceeded int
	)
	for _, p := range s.projects {
		wg.Add(1)
		go func(p project.Project) {
			defer wg.Done()
			_, err := svc.Assign(ctx, staffing.AssignInput{ProjectID: p.ID, UserID: s.employee.ID, Allocation: 40, PerformedBy: s.manager.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrAllocationExceeded):
				exceeded++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 2, ok)
	assert.Equal(t, len(s.projects)-2, exceeded)

	sum, err := svc.Allocation(ctx, s.employee.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 80, sum.Total)
}

func TestPostgres_DuplicateAssignmentAndHistory(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	store := repository.NewPostgresStore(db)
	s := seed(t, ctx, store, 1)
	svc := staffing.NewService(store, &notification.Recorder{}, nil)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.Assign(ctx, staffing.AssignInput{ProjectID: s.projects[0].ID, UserID: s.employee.ID, Role: "Dev", Allocation: 50, StartDate: &start, PerformedBy: s.manager.ID})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, staffing.AssignInput{ProjectID: s.projects[0].ID, UserID: s.employee.ID, Allocation: 10})
	require.ErrorIs(t, err, domain.ErrDuplicateAssignment)

	role := "Lead"
	_, err = svc.Update(ctx, staffing.UpdateInput{ResourceID: res.ID, Role: &role, PerformedBy: s.manager.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, res.ID, s.manager.ID, "done"))

	hist, err := svc.History(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, project.ActionAdded, hist[0].Action)
	assert.Equal(t, project.ActionRoleChanged, hist[1].Action)
	assert.Equal(t, project.ActionRemoved, hist[2].Action)

	_, err = db.Exec(ctx, `UPDATE resource_history SET note = 'edited' WHERE resource_id = $1`, res.ID)
	assert.Error(t, err, "resource history must reject updates")
}

func TestPostgres_ConcurrentApproveRejectHasOneWinner(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	store := repository.NewPostgresStore(db)
	s := seed(t, ctx, store, 0)
	svc := skillupdate.NewService(store, &notification.Recorder{}, nil)

	sk := skill.Skill{ID: uuid.New(), UserID: s.employee.ID, Name: "Go", Category: "Programming Language", Level: skill.LevelAdvanced}
	require.NoError(t, store.Repos().Skills().Create(ctx, sk))

	u, err := svc.Submit(ctx, skillupdate.SubmitInput{RequesterID: s.employee.ID, SkillID: &sk.ID, ProposedLevel: skill.LevelExpert})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, skillupdate.SubmitInput{RequesterID: s.employee.ID, SkillID: &sk.ID, ProposedLevel: skill.LevelBeginner})
	require.ErrorIs(t, err, domain.ErrDuplicatePendingRequest)

	var (
		wg      sync.WaitGroup
		results [2]error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = svc.Approve(ctx, u.ID, s.manager.ID, "")
	}()
	go func() {
		defer wg.Done()
		_, results[1] = svc.Reject(ctx, u.ID, s.admin.ID, "")
	}()
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	}
	assert.Equal(t, 1, wins)

	final, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, final.Status.Terminal())

	got, err := store.Repos().Skills().GetByID(ctx, sk.ID)
	require.NoError(t, err)
	if final.Status == skill.StatusApproved {
		assert.Equal(t, skill.LevelExpert, got.Level)
	} else {
		assert.Equal(t, skill.LevelAdvanced, got.Level)
	}
}
