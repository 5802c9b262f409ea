package repository

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

const (
	historyBucket = "history"
	metaBucket    = "meta"

	schemaVersionKey = "schema_version"
)

// entryKey builds the storage key for a log entry. Keys sort chronologically
// per shop; the per-shop sequence number keeps same-nanosecond writes in
// insertion order.
func entryKey(shop string, ts time.Time, seq uint64) string {
	return fmt.Sprintf("%s:%020d:%012d", shop, ts.UnixNano(), seq)
}

// shopPrefix is the key prefix covering every entry of one shop
func shopPrefix(shop string) string {
	return shop + ":"
}

// scanBounds converts the optional date range into key-space bounds for a
// prefix scan. endKey is exclusive.
func scanBounds(shop string, filters QueryFilters) (startKey, endKey string) {
	prefix := shopPrefix(shop)
	startKey = prefix
	endKey = prefix + "~" // past any zero-padded numeric suffix

	if !filters.DateFrom.IsZero() {
		startKey = fmt.Sprintf("%s%020d", prefix, filters.DateFrom.UnixNano())
	}
	if !filters.DateTo.IsZero() {
		endKey = fmt.Sprintf("%s%020d", prefix, filters.DateTo.UnixNano()+1)
	}
	return startKey, endKey
}

// inShop reports whether a key belongs to the shop's prefix
func inShop(key, shop string) bool {
	return strings.HasPrefix(key, shopPrefix(shop))
}

// sortNewestFirst orders entries by timestamp descending. The input arrives
// in key order (oldest first, insertion order within a timestamp), so a
// stable sort preserves insertion order for timestamp ties.
func sortNewestFirst(entries []*domain.InventoryLogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

// paginate applies offset/limit to an already sorted result set
func paginate(entries []*domain.InventoryLogEntry, offset, limit int) []*domain.InventoryLogEntry {
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
