package repository

import (
	"context"
	"time"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

// SchemaVersion is written to the store's meta bucket when it is provisioned.
// A store missing the marker (or carrying a different version) is reported as
// not provisioned rather than probed at call time.
const SchemaVersion = "1"

// HistoryRepository defines the interface for inventory log persistence.
// Entries are append-only: they are never updated after creation and are
// removed only through DeleteEntriesBefore.
type HistoryRepository interface {
	// CreateEntry assigns an ID and timestamp, persists the entry atomically
	// and returns the stored value.
	CreateEntry(ctx context.Context, entry *domain.InventoryLogEntry) (*domain.InventoryLogEntry, error)

	// QueryEntries returns entries for a shop matching the filters, newest
	// first, plus the total match count before pagination.
	QueryEntries(ctx context.Context, shop string, filters QueryFilters) ([]*domain.InventoryLogEntry, int, error)

	// DeleteEntriesBefore removes entries for a shop older than cutoff and
	// returns the number removed.
	DeleteEntriesBefore(ctx context.Context, shop string, cutoff time.Time) (int, error)

	// VerifySchema reports whether the store has been provisioned with a
	// compatible schema version.
	VerifySchema() error

	Close() error
}

// QueryFilters provides the independently optional predicates for querying a
// shop's log. Zero values mean "filter absent".
type QueryFilters struct {
	ChangeType domain.ChangeType
	Source     domain.ChangeSource
	ProductID  string
	UserID     string
	DateFrom   time.Time
	DateTo     time.Time
	Limit      int
	Offset     int
}

// matches reports whether an entry passes every supplied filter. The shop
// match is handled by the key layout, not here.
func (f QueryFilters) matches(e *domain.InventoryLogEntry) bool {
	if f.ChangeType != "" && e.ChangeType != f.ChangeType {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.ProductID != "" && e.ProductID != f.ProductID {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if !f.DateFrom.IsZero() && e.Timestamp.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && e.Timestamp.After(f.DateTo) {
		return false
	}
	return true
}
