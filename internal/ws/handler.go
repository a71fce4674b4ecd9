package ws

import (
	"net/http"
	"strings"

	"skill-staffing/internal/pkg/jwt"
	"skill-staffing/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub    *Hub
	jwt    jwt.Service
	logger *logger.Logger
}

func NewHandler(hub *Hub, jwtSvc jwt.Service, log *logger.Logger) *Handler {
	return &Handler{hub: hub, jwt: jwtSvc, logger: logger.OrNop(log)}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleNotificationsWS upgrades the connection for the user identified by
// the access token in the "token" query parameter or the Authorization header.
func (h *Handler) HandleNotificationsWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.Get("Authorization"), "Bearer "))
	}
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil || claims.TokenType != jwt.TokenTypeAccess {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(h.hub, conn, claims.UserID)
		if !h.hub.Register(client) {
			_ = conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
