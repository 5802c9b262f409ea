// Package alerts implements the inventory alert pipeline: classification of
// product snapshots into severity tiers, aggregation into alert events,
// time-bounded deduplication and the scheduler that drives periodic and
// manual check cycles.
package alerts

import (
	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

// Buckets holds the classified products of one cycle, one slice per severity
// tier. A product appears in at most one bucket; healthy products appear in
// none. Slice order is classification order.
type Buckets struct {
	OutOfStock []domain.AlertProduct
	Critical   []domain.AlertProduct
	Warning    []domain.AlertProduct
}

// Classify maps product snapshots to severity tiers. Tiers are checked in
// severity order and are mutually exclusive:
//
//  1. stock == 0 -> out-of-stock, days until stockout 0
//  2. stock <= critical threshold OR forecast <= critical days -> critical
//  3. stock <= warning threshold OR forecast <= warning days -> warning
//
// The forecast is ceil(stock/velocity) and only exists for velocity > 0, so
// a zero velocity never triggers a tier on its own.
func Classify(snapshots []domain.ProductSnapshot, thresholds domain.Thresholds) Buckets {
	var buckets Buckets

	for _, snap := range snapshots {
		if snap.Stock == 0 {
			zero := 0
			buckets.OutOfStock = append(buckets.OutOfStock, domain.AlertProduct{
				ID:                snap.ID,
				Name:              snap.Name,
				Stock:             0,
				Status:            domain.StatusOutOfStock,
				DaysUntilStockout: &zero,
			})
			continue
		}

		days, forecast := domain.DaysUntilStockout(snap.Stock, snap.DailySalesVelocity)
		var daysPtr *int
		if forecast {
			d := days
			daysPtr = &d
		}

		switch {
		case snap.Stock <= thresholds.CriticalStock || (forecast && days <= thresholds.CriticalDays):
			buckets.Critical = append(buckets.Critical, domain.AlertProduct{
				ID:                snap.ID,
				Name:              snap.Name,
				Stock:             snap.Stock,
				Status:            domain.StatusCritical,
				DaysUntilStockout: daysPtr,
			})
		case snap.Stock <= thresholds.WarningStock || (forecast && days <= thresholds.WarningDays):
			buckets.Warning = append(buckets.Warning, domain.AlertProduct{
				ID:                snap.ID,
				Name:              snap.Name,
				Stock:             snap.Stock,
				Status:            domain.StatusWarning,
				DaysUntilStockout: daysPtr,
			})
		}
	}

	return buckets
}
