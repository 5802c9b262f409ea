package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

// Internal keys live outside any shop prefix ("!" sorts before shop domains
// and is never part of one).
const (
	badgerMetaKey     = "!meta:" + schemaVersionKey
	badgerSequenceKey = "!seq:history"
)

// BadgerHistoryRepository implements HistoryRepository using BadgerDB.
// Badger's LSM tree handles high write throughput well, at the cost of
// larger on-disk footprint than BoltDB.
type BadgerHistoryRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerHistoryRepository creates a new BadgerDB-backed repository and
// provisions the schema marker.
func NewBadgerHistoryRepository(dbPath string) (*BadgerHistoryRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // badger's default logger is noisy on stdout

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerMetaKey), []byte(SchemaVersion))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to provision schema: %w", err)
	}

	seq, err := db.GetSequence([]byte(badgerSequenceKey), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sequence: %w", err)
	}

	return &BadgerHistoryRepository{db: db, seq: seq}, nil
}

// Close releases the sequence and closes the database
func (r *BadgerHistoryRepository) Close() error {
	if r.seq != nil {
		r.seq.Release()
	}
	return r.db.Close()
}

// VerifySchema checks the provisioning marker written at open time
func (r *BadgerHistoryRepository) VerifySchema() error {
	return r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerMetaKey))
		if err == badger.ErrKeyNotFound {
			return domain.ErrStoreNotProvisioned
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if string(val) != SchemaVersion {
				return fmt.Errorf("schema version %q: %w", val, domain.ErrStoreNotProvisioned)
			}
			return nil
		})
	})
}

// CreateEntry assigns an ID and timestamp and persists the entry in a single
// transaction. Stored entries are never modified afterwards.
func (r *BadgerHistoryRepository) CreateEntry(ctx context.Context, entry *domain.InventoryLogEntry) (*domain.InventoryLogEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	seq, err := r.seq.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sequence: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(entryKey(entry.Shop, entry.Timestamp, seq)), data)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// QueryEntries scans the shop's key range, applies the filters natively and
// returns entries newest first plus the pre-pagination match count.
func (r *BadgerHistoryRepository) QueryEntries(ctx context.Context, shop string, filters QueryFilters) ([]*domain.InventoryLogEntry, int, error) {
	var matched []*domain.InventoryLogEntry
	startKey, endKey := scanBounds(shop, filters)
	prefix := []byte(shopPrefix(shop))

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(startKey)); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if key >= endKey {
				break
			}

			var entry domain.InventoryLogEntry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
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
func (r *BadgerHistoryRepository) DeleteEntriesBefore(ctx context.Context, shop string, cutoff time.Time) (int, error) {
	endKey := fmt.Sprintf("%s%020d", shopPrefix(shop), cutoff.UnixNano())
	prefix := []byte(shopPrefix(shop))

	var stale [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if string(key) >= endKey {
				break
			}
			stale = append(stale, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range stale {
		err := r.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete entry: %w", err)
		}
		deleted++
	}

	return deleted, nil
}
