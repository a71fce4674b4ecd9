package app

import (
	"context"
	"fmt"
	"strings"

	"skill-staffing/internal/config"
	"skill-staffing/internal/delivery/http/handler"
	"skill-staffing/internal/delivery/http/middleware"
	"skill-staffing/internal/delivery/http/routes"
	v1 "skill-staffing/internal/delivery/http/routes/v1"
	"skill-staffing/internal/pkg/logger"
	"skill-staffing/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the production container and HTTP app. The returned
// cleanup drains notifications and closes connections.
func Bootstrap(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, func(context.Context) error, error) {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, log *logger.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(log).Middleware())
	app.Use(middleware.NewErrorMiddleware(log).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	required := map[string]handler.Pinger{}
	if c.DB != nil {
		required["postgres"] = c.DB
	}
	optional := map[string]handler.Pinger{}
	if c.Redis.Available() {
		optional["redis"] = c.Redis
	}

	registry := routes.NewRegistry(
		handler.NewHealthHandler(required, optional),
		middleware.NewAuthMiddleware(c.JWT),
		v1.Handlers{
			SkillUpdate:  handler.NewSkillUpdateHandler(c.SkillUpdates),
			Resource:     handler.NewResourceHandler(c.Staffing),
			Skill:        handler.NewSkillHandler(c.Directory),
			User:         handler.NewUserHandler(c.Users),
			Notification: handler.NewNotificationHandler(c.Inbox),
			WS:           ws.NewHandler(c.Hub, c.JWT, c.Logger),
		},
	)
	registry.Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
