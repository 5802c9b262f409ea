package alerts

import (
	"fmt"
	"time"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

// Aggregate builds at most one InstantAlert per non-empty severity bucket,
// so a single cycle emits between zero and three alerts. Alert IDs embed the
// bucket name and epoch milliseconds of the cycle.
func Aggregate(buckets Buckets, now time.Time) []domain.InstantAlert {
	var out []domain.InstantAlert

	if len(buckets.OutOfStock) > 0 {
		out = append(out, domain.InstantAlert{
			ID:        domain.NewAlertID("out-of-stock", now),
			Type:      domain.AlertTypeCritical,
			Title:     "Out of stock",
			Message:   pluralize(len(buckets.OutOfStock), "out of stock"),
			Products:  buckets.OutOfStock,
			Timestamp: now,
			Action:    domain.ActionRestock,
		})
	}

	if len(buckets.Critical) > 0 {
		out = append(out, domain.InstantAlert{
			ID:        domain.NewAlertID("critical", now),
			Type:      domain.AlertTypeCritical,
			Title:     "Critical stock level",
			Message:   pluralize(len(buckets.Critical), "at critical stock levels"),
			Products:  buckets.Critical,
			Timestamp: now,
			Action:    domain.ActionUrgentRestock,
		})
	}

	if len(buckets.Warning) > 0 {
		out = append(out, domain.InstantAlert{
			ID:        domain.NewAlertID("warning", now),
			Type:      domain.AlertTypeWarning,
			Title:     "Low stock warning",
			Message:   pluralize(len(buckets.Warning), "running low"),
			Products:  buckets.Warning,
			Timestamp: now,
			Action:    domain.ActionPlanRestock,
		})
	}

	return out
}

func pluralize(count int, suffix string) string {
	if count == 1 {
		return fmt.Sprintf("1 product is %s", suffix)
	}
	return fmt.Sprintf("%d products are %s", count, suffix)
}
