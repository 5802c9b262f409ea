package domain

import (
	"errors"
	"fmt"
	"time"
)

// ChangeType categorizes why an inventory quantity changed
type ChangeType string

const (
	ChangeTypeSale       ChangeType = "SALE"
	ChangeTypeRestock    ChangeType = "RESTOCK"
	ChangeTypeManualEdit ChangeType = "MANUAL_EDIT"
	ChangeTypeAdjustment ChangeType = "ADJUSTMENT"
	ChangeTypeReturn     ChangeType = "RETURN"
	ChangeTypeTransfer   ChangeType = "TRANSFER"
	ChangeTypeDamaged    ChangeType = "DAMAGED"
	ChangeTypePromotion  ChangeType = "PROMOTION"
)

// ChangeSource categorizes the channel an inventory change arrived through
type ChangeSource string

const (
	SourceAdmin       ChangeSource = "ADMIN"
	SourcePOS         ChangeSource = "POS"
	SourceApp         ChangeSource = "APP"
	SourceWebhook     ChangeSource = "WEBHOOK"
	SourceManual      ChangeSource = "MANUAL"
	SourceShopifyFlow ChangeSource = "SHOPIFY_FLOW"
	SourceAPI         ChangeSource = "API"
)

// ValidChangeType reports whether t is one of the known change types
func ValidChangeType(t ChangeType) bool {
	switch t {
	case ChangeTypeSale, ChangeTypeRestock, ChangeTypeManualEdit, ChangeTypeAdjustment,
		ChangeTypeReturn, ChangeTypeTransfer, ChangeTypeDamaged, ChangeTypePromotion:
		return true
	}
	return false
}

// ValidChangeSource reports whether s is one of the known change sources
func ValidChangeSource(s ChangeSource) bool {
	switch s {
	case SourceAdmin, SourcePOS, SourceApp, SourceWebhook, SourceManual, SourceShopifyFlow, SourceAPI:
		return true
	}
	return false
}

// InventoryLogEntry is one immutable record of an inventory-affecting action.
// Entries are created once and never updated; they leave the store only
// through retention cleanup.
type InventoryLogEntry struct {
	ID            string       `json:"id"`
	Shop          string       `json:"shop"`
	ProductID     string       `json:"product_id"`
	ProductTitle  string       `json:"product_title"`
	VariantID     string       `json:"variant_id,omitempty"`
	VariantTitle  string       `json:"variant_title,omitempty"`
	ChangeType    ChangeType   `json:"change_type"`
	PreviousStock int          `json:"previous_stock"`
	NewStock      int          `json:"new_stock"`
	Quantity      int          `json:"quantity"`
	UserID        string       `json:"user_id,omitempty"`
	UserName      string       `json:"user_name,omitempty"`
	UserEmail     string       `json:"user_email,omitempty"`
	OrderID       string       `json:"order_id,omitempty"`
	OrderNumber   string       `json:"order_number,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	Source        ChangeSource `json:"source"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Validate checks the closed enumerations and the stock arithmetic invariant
func (e *InventoryLogEntry) Validate() error {
	if e.Shop == "" {
		return fmt.Errorf("shop is required")
	}
	if e.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if !ValidChangeType(e.ChangeType) {
		return fmt.Errorf("unknown change type: %s", e.ChangeType)
	}
	if !ValidChangeSource(e.Source) {
		return fmt.Errorf("unknown change source: %s", e.Source)
	}
	if e.NewStock != e.PreviousStock+e.Quantity {
		return fmt.Errorf("stock delta mismatch: %d + %d != %d", e.PreviousStock, e.Quantity, e.NewStock)
	}
	return nil
}

// HistoryStats aggregates a shop's log entries over an optional date range
type HistoryStats struct {
	TotalChanges    int                  `json:"total_changes"`
	ChangesByType   map[ChangeType]int   `json:"changes_by_type"`
	ChangesBySource map[ChangeSource]int `json:"changes_by_source"`
	TopProducts     []ProductActivity    `json:"top_products"`
	RecentActivity  int                  `json:"recent_activity"`
}

// ProductActivity counts log entries for a single product
type ProductActivity struct {
	ProductID    string `json:"product_id"`
	ProductTitle string `json:"product_title"`
	Count        int    `json:"count"`
}

// ErrStoreNotProvisioned indicates the history schema has not been set up
// (or was written by an incompatible version) in the underlying store.
var ErrStoreNotProvisioned = errors.New("history store not provisioned")

// EntryNotFoundError represents an error when a log entry is not found
type EntryNotFoundError struct {
	ID string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("inventory log entry with ID '%s' not found", e.ID)
}
