package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/psytech/suvichar/internal/gateway"
)

// RegisterProfileRoutes wires profile and main-screen endpoints.
func RegisterProfileRoutes(r fiber.Router, h *gateway.Handler) {
	r.Get("/profile", h.GetProfile)
	r.Post("/profile", h.CreateProfile)
	r.Put("/profile", h.UpdateProfile)
	r.Get("/home", h.Home)
}

// RegisterTemplateRoutes wires catalog and quote endpoints.
func RegisterTemplateRoutes(r fiber.Router, h *gateway.Handler) {
	r.Get("/templates", h.Templates)
	r.Get("/templates/:id", h.Template)
	r.Get("/templates/:id/preview.svg", h.Preview)
	r.Get("/categories", h.Categories)
	r.Get("/quotes/random", h.RandomQuote)
}

// RegisterPremiumRoutes wires subscription endpoints. The upgrade is guarded
// by idempotency so a retried checkout does not charge twice.
func RegisterPremiumRoutes(r fiber.Router, h *gateway.Handler, idempotency fiber.Handler) {
	r.Get("/premium", h.Premium)
	r.Post("/premium/upgrade", idempotency, h.Upgrade)
	r.Delete("/premium", h.ClearPremium)
}

// RegisterDownloadRoutes wires the downloads list and save-to-library.
func RegisterDownloadRoutes(r fiber.Router, h *gateway.Handler) {
	r.Get("/downloads", h.Downloads)
	r.Post("/downloads", h.SaveDownload)
}
