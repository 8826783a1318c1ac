package routes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/psytech/suvichar/internal/config"
	"github.com/psytech/suvichar/internal/gateway"
	"github.com/psytech/suvichar/internal/kv"
	"github.com/psytech/suvichar/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Store    kv.Store
	Cache    *redis.Client
	Logger   *slog.Logger
	Gateway  *gateway.Gateway
	Sessions middleware.TokenValidator
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Gateway == nil || d.Sessions == nil {
		return fmt.Errorf("routes: gateway and session store are required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Cfg.LogFormat == "text" {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(cors.New())
	app.Use(middleware.Audit(d.Logger.With(slog.String("component", "http"))))

	RegisterHealthRoutes(app, d)

	h := gateway.NewHandler(d.Gateway, d.Logger)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.CodeRequestRateLimit(d.Cache, d.Cfg.CodeRequestsPerMinute, d.Logger)
	RegisterAuthRoutes(api, h, rateLimiter)

	protected := api.Group("", middleware.SessionAuth(d.Sessions))
	RegisterProfileRoutes(protected, h)
	RegisterTemplateRoutes(protected, h)
	RegisterPremiumRoutes(protected, h, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	RegisterDownloadRoutes(protected, h)

	return nil
}
