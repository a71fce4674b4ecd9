package middleware

import (
	"time"

	"skill-staffing/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const CtxRequestIDKey = "request_id"

type AccessLogMiddleware struct {
	logger *logger.Logger
}

func NewAccessLogMiddleware(log *logger.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: logger.OrNop(log)}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		kv := []any{
			"rid", rid,
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", status,
			"latency", time.Since(start),
			"resp_bytes", c.Response().Header.ContentLength(),
		}
		if uid, ok := c.Locals(CtxUserIDKey).(uuid.UUID); ok {
			kv = append(kv, "user_id", uid)
		}

		switch {
		case status >= 500:
			m.logger.Error("http access", kv...)
		case status >= 400:
			m.logger.Warn("http access", kv...)
		default:
			m.logger.Info("http access", kv...)
		}
		return err
	}
}
