package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/psytech/suvichar/internal/gateway"
)

// RegisterAuthRoutes wires the sign-in endpoints.
func RegisterAuthRoutes(r fiber.Router, h *gateway.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/code", rateLimiter, h.SendCode)
	} else {
		group.Post("/code", h.SendCode)
	}
	group.Post("/verify", h.VerifyCode)
}
