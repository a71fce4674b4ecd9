package v1

import (
	"skill-staffing/internal/delivery/http/handler"
	"skill-staffing/internal/delivery/http/middleware"
	"skill-staffing/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	SkillUpdate  *handler.SkillUpdateHandler
	Resource     *handler.ResourceHandler
	Skill        *handler.SkillHandler
	User         *handler.UserHandler
	Notification *handler.NotificationHandler
	WS           *ws.Handler
}

func Register(r fiber.Router, auth *middleware.AuthMiddleware, h Handlers) {
	if r == nil || auth == nil {
		return
	}

	// The websocket route authenticates from the query string, so it is
	// registered ahead of the bearer-token group.
	if h.WS != nil {
		r.Get("/ws/notifications", h.WS.HandleNotificationsWS)
	}

	protected := r.Group("", auth.Middleware())

	RegisterStaffing(protected, h.SkillUpdate, h.Resource)
	RegisterUsers(protected, h.User, h.Skill)
	if h.Notification != nil {
		h.Notification.RegisterRoutes(protected)
	}
}
