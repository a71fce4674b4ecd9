package handler

import (
	"strings"

	"skill-staffing/internal/delivery/http/dto"
	"skill-staffing/internal/delivery/http/middleware"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/pkg/response"
	useruc "skill-staffing/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type UserHandler struct {
	uc useruc.Usecase
}

func NewUserHandler(uc useruc.Usecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me", h.GetMe)
	r.Get("/users", h.List)
	r.Get("/users/:id", h.Get)
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	userID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	return h.profile(c, userID)
}

func (h *UserHandler) Get(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	return h.profile(c, id)
}

func (h *UserHandler) profile(c fiber.Ctx, id uuid.UUID) error {
	prof, err := h.uc.GetProfile(c.Context(), id)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserProfileResponse(prof))
}

// List accepts ?role=MANAGER,ADMIN.
func (h *UserHandler) List(c fiber.Ctx) error {
	var roles []user.Role
	for _, raw := range strings.Split(c.Query("role"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		role, ok := user.ParseRole(raw)
		if !ok {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid role", nil, nil)
		}
		roles = append(roles, role)
	}

	items, err := h.uc.ListByRoles(c.Context(), roles...)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	out := make([]dto.UserResponse, 0, len(items))
	for _, u := range items {
		out = append(out, dto.NewUserResponse(u))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
