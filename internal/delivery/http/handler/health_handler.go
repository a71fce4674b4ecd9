package handler

import (
	"context"
	"time"

	"skill-staffing/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports "ok" per dependency. Only a failing required
// dependency turns the response into a 503.
type HealthHandler struct {
	required map[string]Pinger
	optional map[string]Pinger
}

func NewHealthHandler(required, optional map[string]Pinger) *HealthHandler {
	return &HealthHandler{required: required, optional: optional}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := fiber.StatusOK
	for name, p := range h.required {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	for name, p := range h.optional {
		if err := p.Ping(ctx); err != nil {
			checks[name] = "degraded: " + err.Error()
			continue
		}
		checks[name] = "ok"
	}

	msg := response.MessageOK
	if status != fiber.StatusOK {
		msg = response.MessageServiceUnavailable
	}
	return response.Success(c, status, msg, checks)
}
