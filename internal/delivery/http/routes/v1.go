package routes

import (
	"skill-staffing/internal/delivery/http/middleware"
	v1 "skill-staffing/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

func RegisterV1(r fiber.Router, auth *middleware.AuthMiddleware, h v1.Handlers) {
	if r == nil {
		return
	}

	v1.Register(r, auth, h)
}
