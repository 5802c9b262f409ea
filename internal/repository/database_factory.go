package repository

import (
	"fmt"
	"strings"
)

// DatabaseType represents different database backend options
type DatabaseType string

const (
	DatabaseTypeBadger DatabaseType = "badger"
	DatabaseTypeBolt   DatabaseType = "bolt"
)

// NewHistoryRepository creates a new history repository with the specified
// database type.
//
// Database Types:
// - bolt: Compact B+ tree database (default), single small file
// - badger: High-performance LSM-tree database, directory-based storage
func NewHistoryRepository(dbPath string, dbType DatabaseType) (HistoryRepository, error) {
	switch dbType {
	case DatabaseTypeBolt:
		// Use .bolt extension for BoltDB files
		if !strings.HasSuffix(dbPath, ".bolt") {
			dbPath = dbPath + ".bolt"
		}
		return NewBoltHistoryRepository(dbPath)

	case DatabaseTypeBadger:
		// BadgerDB uses directory-based storage
		return NewBadgerHistoryRepository(dbPath)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}
