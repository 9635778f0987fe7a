package dto

import "time"

type ItemFilters struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// StockSummary backs the dashboard header metrics.
type StockSummary struct {
	ItemCount          int   `json:"item_count"`
	TotalStock         int64 `json:"total_stock"`
	TotalCommitted     int64 `json:"total_committed"`
	TotalAvailable     int64 `json:"total_available"`
	ActiveReservations int   `json:"active_reservations"`
}

type TransactionHistoryEntry struct {
	ID        int64                    `json:"id"`
	Reference string                   `json:"reference"`
	Notes     *string                  `json:"notes"`
	CreatedBy *string                  `json:"created_by"`
	CreatedAt time.Time                `json:"created_at"`
	Lines     []TransactionHistoryLine `json:"lines"`
}

type TransactionHistoryLine struct {
	InventoryItemID int64   `json:"inventory_item_id"`
	SKU             string  `json:"sku"`
	Item            string  `json:"item"`
	QuantityChange  int64   `json:"quantity_change"`
	StockBefore     int64   `json:"stock_before"`
	StockAfter      int64   `json:"stock_after"`
	Note            *string `json:"note"`
}
