// Package http exposes the query surface over the history engine and the
// alert buffer. Handlers are thin: parsing, auth and response shaping only.
package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"

	"github.com/stocksentinel/alerts-core/backend/internal/alerts"
	"github.com/stocksentinel/alerts-core/backend/internal/auth"
	"github.com/stocksentinel/alerts-core/backend/internal/config"
	"github.com/stocksentinel/alerts-core/backend/internal/domain"
	"github.com/stocksentinel/alerts-core/backend/internal/notify"
	"github.com/stocksentinel/alerts-core/backend/internal/service"
)

// Deps carries the collaborators the handlers delegate to
type Deps struct {
	History   *service.HistoryService
	Scheduler *alerts.Scheduler
	Sink      notify.Sink
	Config    config.Config
	Logger    *logrus.Logger
}

// NewApp builds the fiber application with all routes registered
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, domain.ErrStoreNotProvisioned) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "history store not provisioned",
				})
			}
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			deps.Logger.WithError(err).Error("unexpected handler error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public variant: shop comes from the query string, no session required
	api.Get("/public/history", deps.publicHistoryHandler())
	api.Post("/auth/token", deps.tokenHandler())

	protected := api.Group("")
	protected.Use(auth.Middleware(deps.Config.JWTSecret))

	protected.Get("/history", deps.historyHandler())
	protected.Get("/history/stats", deps.statsHandler())
	protected.Post("/history", deps.recordHandler())
	protected.Post("/history/cleanup", deps.cleanupHandler())

	protected.Get("/alerts", deps.alertsHandler())
	protected.Post("/alerts/refresh", deps.refreshHandler())
	protected.Post("/alerts/dismiss", deps.dismissAllHandler())
	protected.Post("/alerts/:id/dismiss", deps.dismissHandler())
	protected.Get("/alerts/notifications/test", deps.notificationTestHandler())

	return app
}

// tokenHandler issues a development session token for a shop. A production
// deployment exchanges platform session tokens instead.
func (d Deps) tokenHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Shop string `json:"shop"`
		}
		if err := c.BodyParser(&body); err != nil || body.Shop == "" {
			return fiber.NewError(fiber.StatusBadRequest, "shop is required")
		}

		token, err := auth.GenerateToken(d.Config.JWTSecret, body.Shop)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		return c.JSON(fiber.Map{"token": token})
	}
}
