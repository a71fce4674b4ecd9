package v1

import (
	"skill-staffing/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterUsers(r fiber.Router, userHandler *handler.UserHandler, skillHandler *handler.SkillHandler) {
	if r == nil {
		return
	}
	if userHandler == nil {
		return
	}

	userHandler.RegisterRoutes(r)
	if skillHandler != nil {
		skillHandler.RegisterRoutes(r)
	}
}
