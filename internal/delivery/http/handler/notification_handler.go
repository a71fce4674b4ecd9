package handler

import (
	"context"

	"skill-staffing/internal/delivery/http/middleware"
	"skill-staffing/internal/notification"
	"skill-staffing/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	defaultInboxLimit = 20
	maxInboxLimit     = 100
)

type InboxReader interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error)
}

type NotificationHandler struct {
	inbox InboxReader
}

func NewNotificationHandler(inbox InboxReader) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/me/notifications", h.List)
}

func (h *NotificationHandler) List(c fiber.Ctx) error {
	userID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	limit, err := parseQueryIntStrict(c, "limit", defaultInboxLimit)
	if err != nil || limit < 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit", nil, err)
	}
	if limit == 0 || limit > maxInboxLimit {
		limit = maxInboxLimit
	}

	items, err := h.inbox.List(c.Context(), userID, limit)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.List(c, response.MessageOK, items)
}
