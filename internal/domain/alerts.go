package domain

import (
	"fmt"
	"math"
	"time"
)

// ProductSnapshot is the per-cycle view of a product supplied by the stock
// snapshot provider. Snapshots are ephemeral and never persisted.
type ProductSnapshot struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Stock              int     `json:"stock"`
	DailySalesVelocity float64 `json:"daily_sales_velocity"`
}

// AlertStatus is the severity tier assigned to a product
type AlertStatus string

const (
	StatusOutOfStock AlertStatus = "out-of-stock"
	StatusCritical   AlertStatus = "critical"
	StatusWarning    AlertStatus = "warning"
)

// AlertType classifies an instant alert for presentation
type AlertType string

const (
	AlertTypeCritical AlertType = "critical"
	AlertTypeWarning  AlertType = "warning"
	AlertTypeSuccess  AlertType = "success"
	AlertTypeInfo     AlertType = "info"
)

// AlertAction is the suggested follow-up attached to an alert
type AlertAction string

const (
	ActionRestock       AlertAction = "restock"
	ActionUrgentRestock AlertAction = "urgent-restock"
	ActionPlanRestock   AlertAction = "plan-restock"
)

// AlertProduct is a classified product carried inside an alert
type AlertProduct struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Stock             int         `json:"stock"`
	Status            AlertStatus `json:"status"`
	DaysUntilStockout *int        `json:"days_until_stockout,omitempty"`
}

// InstantAlert is one entry in the scheduler's rolling in-memory buffer.
// Alerts are never persisted; Dismissed is the only mutable field.
type InstantAlert struct {
	ID        string         `json:"id"`
	Type      AlertType      `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Products  []AlertProduct `json:"products"`
	Timestamp time.Time      `json:"timestamp"`
	Dismissed bool           `json:"dismissed"`
	Action    AlertAction    `json:"action,omitempty"`
}

// NewAlertID builds the canonical alert ID for a severity bucket at a point
// in time, e.g. "critical-1712345678901".
func NewAlertID(bucket string, at time.Time) string {
	return fmt.Sprintf("%s-%d", bucket, at.UnixMilli())
}

// Thresholds holds the severity cutoffs for classification. The values are
// configuration with defaults, not constants, so they can vary per shop.
type Thresholds struct {
	CriticalStock int `json:"critical_stock"`
	CriticalDays  int `json:"critical_days"`
	WarningStock  int `json:"warning_stock"`
	WarningDays   int `json:"warning_days"`
}

// DefaultThresholds returns the stock/forecast cutoffs used when a shop has
// no overrides: critical at 2 units or 3 days, warning at 5 units or 7 days.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalStock: 2,
		CriticalDays:  3,
		WarningStock:  5,
		WarningDays:   7,
	}
}

// DaysUntilStockout forecasts how many days of stock remain given a daily
// sales velocity. The result is defined only for velocity > 0; a zero
// velocity means "no forecast" and never triggers a tier on its own.
func DaysUntilStockout(stock int, velocity float64) (int, bool) {
	if velocity <= 0 {
		return 0, false
	}
	return int(math.Ceil(float64(stock) / velocity)), true
}
