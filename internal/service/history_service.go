package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
	"github.com/stocksentinel/alerts-core/backend/internal/repository"
)

const (
	// DefaultPageSize is used when a query supplies no limit
	DefaultPageSize = 25
	// MaxPageSize caps the page size a single query may request
	MaxPageSize = 50
	// DefaultRetentionDays is the age threshold for retention cleanup
	DefaultRetentionDays = 90

	// recentActivityWindow bounds the "recent" counter in stats
	recentActivityWindow = 24 * time.Hour
	// topProductsLimit truncates the per-product activity ranking
	topProductsLimit = 10
)

// HistoryService is the query/aggregation engine over the persisted
// inventory log. It only ever reads through the repository except for
// Record and Cleanup.
type HistoryService struct {
	repo   repository.HistoryRepository
	logger *logrus.Logger
	now    func() time.Time
}

// NewHistoryService creates a new history service instance
func NewHistoryService(repo repository.HistoryRepository, logger *logrus.Logger) *HistoryService {
	return &HistoryService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// QueryResult is the paginated response shape of Query
type QueryResult struct {
	Entries []*domain.InventoryLogEntry `json:"entries"`
	Total   int                         `json:"total"`
	HasMore bool                        `json:"has_more"`
}

// Record validates and persists one inventory change. A persistence failure
// is logged and returned to the caller but never retried here; the
// originating business action must not be blocked on it.
func (s *HistoryService) Record(ctx context.Context, entry *domain.InventoryLogEntry) (*domain.InventoryLogEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid log entry: %w", err)
	}

	stored, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"shop":        entry.Shop,
			"product_id":  entry.ProductID,
			"change_type": entry.ChangeType,
		}).Error("failed to persist inventory log entry")
		return nil, fmt.Errorf("failed to persist log entry: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"shop":        stored.Shop,
		"entry_id":    stored.ID,
		"product_id":  stored.ProductID,
		"change_type": stored.ChangeType,
		"source":      stored.Source,
		"quantity":    stored.Quantity,
	}).Info("inventory change recorded")

	return stored, nil
}

// Query returns a filtered, paginated page of the shop's log, newest first.
// An unprovisioned store surfaces as a distinct error; any other store
// failure degrades to an empty result so callers keep functioning.
func (s *HistoryService) Query(ctx context.Context, shop string, filters repository.QueryFilters) (*QueryResult, error) {
	if shop == "" {
		return nil, fmt.Errorf("shop is required")
	}

	if filters.Limit <= 0 {
		filters.Limit = DefaultPageSize
	}
	if filters.Limit > MaxPageSize {
		filters.Limit = MaxPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	entries, total, err := s.repo.QueryEntries(ctx, shop, filters)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotProvisioned) {
			return nil, err
		}
		s.logger.WithError(err).WithField("shop", shop).Warn("history query degraded to empty result")
		return &QueryResult{Entries: []*domain.InventoryLogEntry{}}, nil
	}

	if entries == nil {
		entries = []*domain.InventoryLogEntry{}
	}

	return &QueryResult{
		Entries: entries,
		Total:   total,
		HasMore: filters.Offset+len(entries) < total,
	}, nil
}

// Stats aggregates the shop's log over an optional inclusive date range
func (s *HistoryService) Stats(ctx context.Context, shop string, dateFrom, dateTo time.Time) (*domain.HistoryStats, error) {
	if shop == "" {
		return nil, fmt.Errorf("shop is required")
	}

	entries, _, err := s.repo.QueryEntries(ctx, shop, repository.QueryFilters{
		DateFrom: dateFrom,
		DateTo:   dateTo,
	})
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotProvisioned) {
			return nil, err
		}
		s.logger.WithError(err).WithField("shop", shop).Warn("history stats degraded to empty result")
		entries = nil
	}

	stats := &domain.HistoryStats{
		TotalChanges:    len(entries),
		ChangesByType:   make(map[domain.ChangeType]int),
		ChangesBySource: make(map[domain.ChangeSource]int),
		TopProducts:     []domain.ProductActivity{},
	}

	recentCutoff := s.now().Add(-recentActivityWindow)
	counts := make(map[string]*domain.ProductActivity)
	firstSeen := make(map[string]int)

	for i, entry := range entries {
		stats.ChangesByType[entry.ChangeType]++
		stats.ChangesBySource[entry.Source]++

		if entry.Timestamp.After(recentCutoff) {
			stats.RecentActivity++
		}

		if _, ok := counts[entry.ProductID]; !ok {
			counts[entry.ProductID] = &domain.ProductActivity{
				ProductID:    entry.ProductID,
				ProductTitle: entry.ProductTitle,
			}
			firstSeen[entry.ProductID] = i
		}
		counts[entry.ProductID].Count++
	}

	products := make([]domain.ProductActivity, 0, len(counts))
	for _, activity := range counts {
		products = append(products, *activity)
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Count != products[j].Count {
			return products[i].Count > products[j].Count
		}
		return firstSeen[products[i].ProductID] < firstSeen[products[j].ProductID]
	})
	if len(products) > topProductsLimit {
		products = products[:topProductsLimit]
	}
	stats.TopProducts = products

	return stats, nil
}

// Cleanup removes the shop's entries older than daysToKeep (default 90).
// Intended to run out-of-band, never per request.
func (s *HistoryService) Cleanup(ctx context.Context, shop string, daysToKeep int) (int, error) {
	if shop == "" {
		return 0, fmt.Errorf("shop is required")
	}
	if daysToKeep <= 0 {
		daysToKeep = DefaultRetentionDays
	}

	cutoff := s.now().AddDate(0, 0, -daysToKeep)
	removed, err := s.repo.DeleteEntriesBefore(ctx, shop, cutoff)
	if err != nil {
		s.logger.WithError(err).WithField("shop", shop).Error("retention cleanup failed")
		return 0, fmt.Errorf("retention cleanup failed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"shop":         shop,
		"days_to_keep": daysToKeep,
		"removed":      removed,
	}).Info("retention cleanup completed")

	return removed, nil
}
