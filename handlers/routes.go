package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker func(ctx context.Context) error

// NewApp builds the read-only draw query API. healthCheck may be nil.
func NewApp(drawHandler *DrawHandler, sinkMode string, healthCheck HealthChecker) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "lotto-backend",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":    "ok",
			"sink":      sinkMode,
			"timestamp": time.Now().Unix(),
		}
		if healthCheck != nil {
			if err := healthCheck(c.Context()); err != nil {
				status["status"] = "degraded"
				status["error"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(status)
			}
		}
		return c.JSON(status)
	})

	api := app.Group("/api/v1")

	// Draw Routes
	api.Get("/draws", drawHandler.ListDraws)
	api.Get("/draws/latest", drawHandler.GetLatestDraw)
	api.Get("/draws/:drw_no", drawHandler.GetDraw)

	return app
}
