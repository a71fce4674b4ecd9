package v1

import (
	"skill-staffing/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterStaffing(r fiber.Router, skillUpdates *handler.SkillUpdateHandler, resources *handler.ResourceHandler) {
	if r == nil {
		return
	}

	if skillUpdates != nil {
		skillUpdates.RegisterRoutes(r)
	}
	if resources != nil {
		resources.RegisterRoutes(r)
	}
}
