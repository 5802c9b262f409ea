// Package snapshot supplies the per-cycle product stock snapshots the alert
// pipeline classifies. A production deployment plugs in a live catalog
// integration; the static provider ships the reference data set.
package snapshot

import (
	"context"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

// Provider returns the current product snapshots for one shop. Results are
// consumed within a single classification cycle and never persisted.
type Provider interface {
	Snapshots(ctx context.Context) ([]domain.ProductSnapshot, error)
}

// StaticProvider serves a fixed snapshot list. Used as the reference
// implementation and in tests.
type StaticProvider struct {
	products []domain.ProductSnapshot
}

// NewStaticProvider creates a provider over a fixed product list
func NewStaticProvider(products []domain.ProductSnapshot) *StaticProvider {
	return &StaticProvider{products: products}
}

// NewDemoProvider returns the reference catalog used when no live
// integration is configured.
func NewDemoProvider() *StaticProvider {
	return NewStaticProvider([]domain.ProductSnapshot{
		{ID: "prod-001", Name: "Classic Leather Wallet", Stock: 0, DailySalesVelocity: 2.1},
		{ID: "prod-002", Name: "Canvas Weekender Bag", Stock: 1, DailySalesVelocity: 1.2},
		{ID: "prod-003", Name: "Merino Wool Scarf", Stock: 4, DailySalesVelocity: 1.5},
		{ID: "prod-004", Name: "Brass Key Organizer", Stock: 3, DailySalesVelocity: 0},
		{ID: "prod-005", Name: "Travel Cable Pouch", Stock: 12, DailySalesVelocity: 1.4},
		{ID: "prod-006", Name: "Slim Card Holder", Stock: 25, DailySalesVelocity: 0.8},
	})
}

func (p *StaticProvider) Snapshots(ctx context.Context) ([]domain.ProductSnapshot, error) {
	out := make([]domain.ProductSnapshot, len(p.products))
	copy(out, p.products)
	return out, nil
}
