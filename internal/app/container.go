package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"skill-staffing/internal/config"
	"skill-staffing/internal/database"
	"skill-staffing/internal/database/migration"
	dbpostgres "skill-staffing/internal/database/postgres"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/infrastructure/cache"
	"skill-staffing/internal/infrastructure/email"
	"skill-staffing/internal/notification"
	"skill-staffing/internal/pkg/jwt"
	"skill-staffing/internal/pkg/logger"
	"skill-staffing/internal/repository"
	"skill-staffing/internal/usecase/directory"
	"skill-staffing/internal/usecase/skillupdate"
	"skill-staffing/internal/usecase/staffing"
	useruc "skill-staffing/internal/usecase/user"
	"skill-staffing/internal/ws"
	"skill-staffing/migrations"
)

type Container struct {
	Config config.Config
	Logger *logger.Logger

	// DB is nil when the container runs on an injected store.
	DB       database.DB
	Store    repository.Store
	Redis    *cache.Redis
	Inbox    *notification.Inbox
	Hub      *ws.Hub
	Notifier *notification.Service
	JWT      jwt.Service

	SkillUpdates skillupdate.Usecase
	Staffing     staffing.Usecase
	Directory    directory.Usecase
	Users        useruc.Usecase
}

// NewContainer connects to Postgres, applies pending migrations and wires
// every service. Redis and SendGrid are optional.
func NewContainer(ctx context.Context, cfg config.Config, log *logger.Logger) (*Container, error) {
	log = logger.OrNop(log)

	pool, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := MigrationRunner(cfg, log).Run(ctx, pool.SQLDB()); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	c := NewContainerWithStore(cfg, log, repository.NewPostgresStore(pool), cache.NewRedis(cfg.Redis, log), email.NewSendGrid(cfg.Email, log))
	c.DB = pool
	return c, nil
}

// NewContainerWithStore wires the services over an existing store.
func NewContainerWithStore(cfg config.Config, log *logger.Logger, store repository.Store, redis *cache.Redis, mailer notification.Mailer) *Container {
	log = logger.OrNop(log)

	hub := ws.NewHub(log)
	inbox := notification.NewInbox(redis, cfg.Redis.InboxSize, cfg.Redis.TTL)
	channels := []notification.Channel{inbox, ws.NewChannel(hub)}
	if mailer != nil && mailer.Enabled() {
		channels = append(channels, notification.NewEmail(mailer, func() user.Repository {
			return store.Repos().Users()
		}, cfg.Email.PublicBaseURL))
	}
	notifier := notification.NewService(cfg.Notification, notification.StoreResolvers(store), log, channels...)

	return &Container{
		Config:   cfg,
		Logger:   log,
		Store:    store,
		Redis:    redis,
		Inbox:    inbox,
		Hub:      hub,
		Notifier: notifier,
		JWT:      jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn),

		SkillUpdates: skillupdate.NewService(store, notifier, log),
		Staffing:     staffing.NewService(store, notifier, log),
		Directory:    directory.NewService(store, notifier, log),
		Users:        useruc.NewService(store),
	}
}

func MigrationRunner(cfg config.Config, log *logger.Logger) migration.Runner {
	if dir := strings.TrimSpace(cfg.App.MigrationsDir); dir != "" {
		return migration.Runner{Dir: dir, Logger: log}
	}
	return migration.Runner{FS: migrations.Files, Logger: log}
}

// Start runs the websocket hub and the notification workers until ctx ends.
func (c *Container) Start(ctx context.Context) {
	go c.Hub.Run(ctx)
	c.Notifier.Start(ctx)
}

// Close drains queued notifications before releasing connections.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	c.Notifier.Stop(ctx)

	var errs []error
	if err := c.Redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
