package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

// BoltHistoryRepository implements HistoryRepository using BoltDB (bbolt).
// BoltDB is much more compact than BadgerDB and keeps the whole log in a
// single file, which suits per-shop datasets.
type BoltHistoryRepository struct {
	db *bbolt.DB
}

// NewBoltHistoryRepository creates a new BoltDB-backed repository and
// provisions the schema if the file is new.
func NewBoltHistoryRepository(dbPath string) (*BoltHistoryRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory for bolt db: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout:      1 * time.Second,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{historyBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		meta := tx.Bucket([]byte(metaBucket))
		return meta.Put([]byte(schemaVersionKey), []byte(SchemaVersion))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to provision schema: %w", err)
	}

	return &BoltHistoryRepository{db: db}, nil
}

// Close closes the database connection
func (r *BoltHistoryRepository) Close() error {
	return r.db.Close()
}

// VerifySchema checks the provisioning marker written at open time
func (r *BoltHistoryRepository) VerifySchema() error {
	return r.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(metaBucket))
		if meta == nil {
			return domain.ErrStoreNotProvisioned
		}
		version := meta.Get([]byte(schemaVersionKey))
		if version == nil || string(version) != SchemaVersion {
			return fmt.Errorf("schema version %q: %w", version, domain.ErrStoreNotProvisioned)
		}
		if tx.Bucket([]byte(historyBucket)) == nil {
			return domain.ErrStoreNotProvisioned
		}
		return nil
	})
}

// CreateEntry assigns an ID and timestamp and persists the entry in a single
// write transaction. Stored entries are never modified afterwards.
func (r *BoltHistoryRepository) CreateEntry(ctx context.Context, entry *domain.InventoryLogEntry) (*domain.InventoryLogEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return domain.ErrStoreNotProvisioned
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}

		return bucket.Put([]byte(entryKey(entry.Shop, entry.Timestamp, seq)), data)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// QueryEntries scans the shop's key range, applies the filters natively and
// returns entries newest first plus the pre-pagination match count.
func (r *BoltHistoryRepository) QueryEntries(ctx context.Context, shop string, filters QueryFilters) ([]*domain.InventoryLogEntry, int, error) {
	var matched []*domain.InventoryLogEntry
	startKey, endKey := scanBounds(shop, filters)

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return domain.ErrStoreNotProvisioned
		}

		cursor := bucket.Cursor()
		for key, value := cursor.Seek([]byte(startKey)); key != nil; key, value = cursor.Next() {
			if string(key) >= endKey {
				break
			}
			if !inShop(string(key), shop) {
				continue
			}

			var entry domain.InventoryLogEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				continue // skip malformed entries
			}

			if filters.matches(&entry) {
				matched = append(matched, &entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sortNewestFirst(matched)
	total := len(matched)
	return paginate(matched, filters.Offset, filters.Limit), total, nil
}

// DeleteEntriesBefore removes the shop's entries with timestamps strictly
// before cutoff and returns how many were removed.
func (r *BoltHistoryRepository) DeleteEntriesBefore(ctx context.Context, shop string, cutoff time.Time) (int, error) {
	deleted := 0
	endKey := fmt.Sprintf("%s%020d", shopPrefix(shop), cutoff.UnixNano())

	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return domain.ErrStoreNotProvisioned
		}

		var stale [][]byte
		cursor := bucket.Cursor()
		for key, _ := cursor.Seek([]byte(shopPrefix(shop))); key != nil; key, _ = cursor.Next() {
			if string(key) >= endKey || !inShop(string(key), shop) {
				break
			}
			stale = append(stale, append([]byte(nil), key...))
		}

		for _, key := range stale {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete entry: %w", err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
