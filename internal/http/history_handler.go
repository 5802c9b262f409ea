package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stocksentinel/alerts-core/backend/internal/auth"
	"github.com/stocksentinel/alerts-core/backend/internal/domain"
	"github.com/stocksentinel/alerts-core/backend/internal/repository"
)

// parseFilters reads the optional query filters. Malformed values (an
// unparsable date, an unknown enum) are treated as absent, never as errors.
func parseFilters(c *fiber.Ctx) repository.QueryFilters {
	filters := repository.QueryFilters{
		ProductID: c.Query("productId"),
		UserID:    c.Query("userId"),
		Limit:     c.QueryInt("limit", 0),
		Offset:    c.QueryInt("offset", 0),
	}

	if ct := domain.ChangeType(c.Query("changeType")); domain.ValidChangeType(ct) {
		filters.ChangeType = ct
	}
	if src := domain.ChangeSource(c.Query("source")); domain.ValidChangeSource(src) {
		filters.Source = src
	}
	if from, ok := parseDate(c.Query("dateFrom"), false); ok {
		filters.DateFrom = from
	}
	if to, ok := parseDate(c.Query("dateTo"), true); ok {
		filters.DateTo = to
	}

	return filters
}

// parseDate accepts RFC3339 timestamps or plain dates. A date-only upper
// bound is widened to the end of that day so the range stays inclusive.
func parseDate(value string, endOfDay bool) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, true
	}
	if day, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			return day.Add(24*time.Hour - time.Nanosecond), true
		}
		return day, true
	}
	return time.Time{}, false
}

// GET /api/history
func (d Deps) historyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := d.History.Query(c.Context(), auth.ShopFromCtx(c), parseFilters(c))
		if err != nil {
			return err
		}
		return c.JSON(result)
	}
}

// GET /api/public/history?shop=...
//
// Public variant of the query surface; the shop arrives as a query parameter
// instead of a session claim. Filters behave identically.
func (d Deps) publicHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		shop := c.Query("shop")
		if shop == "" {
			return fiber.NewError(fiber.StatusBadRequest, "shop query parameter is required")
		}

		result, err := d.History.Query(c.Context(), shop, parseFilters(c))
		if err != nil {
			return err
		}
		return c.JSON(result)
	}
}

// GET /api/history/stats
func (d Deps) statsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var from, to time.Time
		if ts, ok := parseDate(c.Query("dateFrom"), false); ok {
			from = ts
		}
		if ts, ok := parseDate(c.Query("dateTo"), true); ok {
			to = ts
		}

		stats, err := d.History.Stats(c.Context(), auth.ShopFromCtx(c), from, to)
		if err != nil {
			return err
		}
		return c.JSON(stats)
	}
}

// recordRequest is the payload for logging one inventory change
type recordRequest struct {
	ProductID     string `json:"product_id"`
	ProductTitle  string `json:"product_title"`
	VariantID     string `json:"variant_id"`
	VariantTitle  string `json:"variant_title"`
	ChangeType    string `json:"change_type"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
	Quantity      int    `json:"quantity"`
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	UserEmail     string `json:"user_email"`
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	Notes         string `json:"notes"`
	Source        string `json:"source"`
}

// POST /api/history
func (d Deps) recordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req recordRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
		}

		entry := &domain.InventoryLogEntry{
			Shop:          auth.ShopFromCtx(c),
			ProductID:     req.ProductID,
			ProductTitle:  req.ProductTitle,
			VariantID:     req.VariantID,
			VariantTitle:  req.VariantTitle,
			ChangeType:    domain.ChangeType(req.ChangeType),
			PreviousStock: req.PreviousStock,
			NewStock:      req.NewStock,
			Quantity:      req.Quantity,
			UserID:        req.UserID,
			UserName:      req.UserName,
			UserEmail:     req.UserEmail,
			OrderID:       req.OrderID,
			OrderNumber:   req.OrderNumber,
			Notes:         req.Notes,
			Source:        domain.ChangeSource(req.Source),
		}

		stored, err := d.History.Record(c.Context(), entry)
		if err != nil {
			if validationErr := entry.Validate(); validationErr != nil {
				return fiber.NewError(fiber.StatusBadRequest, validationErr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to record inventory change")
		}

		return c.Status(fiber.StatusCreated).JSON(stored)
	}
}

// POST /api/history/cleanup
func (d Deps) cleanupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			DaysToKeep int `json:"days_to_keep"`
		}
		// Empty body falls back to the retention default
		_ = c.BodyParser(&body)
		if body.DaysToKeep <= 0 {
			body.DaysToKeep = d.Config.RetentionDays
		}

		removed, err := d.History.Cleanup(c.Context(), auth.ShopFromCtx(c), body.DaysToKeep)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "retention cleanup failed")
		}

		return c.JSON(fiber.Map{"removed": removed})
	}
}
