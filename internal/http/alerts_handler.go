package http

import (
	"github.com/gofiber/fiber/v2"
)

// GET /api/alerts
func (d Deps) alertsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"alerts":     d.Scheduler.Active(),
			"last_check": d.Scheduler.LastCheck(),
			"state":      d.Scheduler.State(),
		})
	}
}

// POST /api/alerts/refresh
func (d Deps) refreshHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !d.Scheduler.Refresh(c.Context()) {
			// A cycle is already in flight; the trigger is dropped, not queued
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"refreshed": false,
				"reason":    "check already in progress",
			})
		}
		return c.JSON(fiber.Map{
			"refreshed": true,
			"alerts":    d.Scheduler.Active(),
		})
	}
}

// POST /api/alerts/:id/dismiss
func (d Deps) dismissHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !d.Scheduler.Dismiss(id) {
			return fiber.NewError(fiber.StatusNotFound, "alert not found")
		}
		return c.JSON(fiber.Map{"dismissed": id})
	}
}

// POST /api/alerts/dismiss
func (d Deps) dismissAllHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		d.Scheduler.DismissAll()
		return c.JSON(fiber.Map{"dismissed": "all"})
	}
}

// GET /api/alerts/notifications/test
//
// Always reports a structured result; a failing sink is data, not an error
// response.
func (d Deps) notificationTestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(d.Sink.Test())
	}
}
