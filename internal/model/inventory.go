package model

import "time"

type ItemStatus string

const (
	ItemStatusInStock      ItemStatus = "In Stock"
	ItemStatusLow          ItemStatus = "Low"
	ItemStatusCritical     ItemStatus = "Critical"
	ItemStatusDiscontinued ItemStatus = "Discontinued"
)

// DeriveStatus computes the stock status from availability. Discontinued wins
// over everything; otherwise Critical at or below zero, Low at or below the
// reorder point, In Stock above it.
func DeriveStatus(availableQty, reorderPoint int64, discontinued bool) ItemStatus {
	switch {
	case discontinued:
		return ItemStatusDiscontinued
	case availableQty <= 0:
		return ItemStatusCritical
	case availableQty <= reorderPoint:
		return ItemStatusLow
	default:
		return ItemStatusInStock
	}
}

type InventoryItem struct {
	ID              int64      `db:"id" json:"id"`
	Item            string     `db:"item" json:"item"`
	SKU             string     `db:"sku" json:"sku"`
	PartNumber      string     `db:"part_number" json:"part_number"`
	Finish          *string    `db:"finish" json:"finish"`
	Location        string     `db:"location" json:"location"`
	Stock           int64      `db:"stock" json:"stock"`
	CommittedQty    int64      `db:"committed_qty" json:"committed_qty"`
	Status          ItemStatus `db:"status" json:"status"`
	SupplierID      *int64     `db:"supplier_id" json:"supplier_id"`
	SupplierContact *string    `db:"supplier_contact" json:"supplier_contact"`
	SupplierSKU     *string    `db:"supplier_sku" json:"supplier_sku"`
	ReorderPoint    int64      `db:"reorder_point" json:"reorder_point"`
	LeadTimeDays    int        `db:"lead_time_days" json:"lead_time_days"`
	SafetyStockQty  float64    `db:"safety_stock_qty" json:"safety_stock_qty"`
	MinimumOrderQty float64    `db:"minimum_order_qty" json:"minimum_order_qty"`
	OrderMultiple   float64    `db:"order_multiple" json:"order_multiple"`
	PackSize        float64    `db:"pack_size" json:"pack_size"`
	PurchaseUOM     *string    `db:"purchase_uom" json:"purchase_uom"`
	StockUOM        string     `db:"stock_uom" json:"stock_uom"`
	Discontinued    bool       `db:"discontinued" json:"discontinued"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// AvailableQty is stock minus outstanding commitments. It can go negative
// when commitments were accepted past on-hand stock.
func (i *InventoryItem) AvailableQty() int64 {
	return i.Stock - i.CommittedQty
}

// InventoryTransaction is an immutable multi-line stock movement record.
type InventoryTransaction struct {
	ID        int64     `db:"id" json:"id"`
	Reference string    `db:"reference" json:"reference"`
	Notes     *string   `db:"notes" json:"notes"`
	CreatedBy *string   `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Lines []InventoryTransactionLine `db:"-" json:"lines"`
}

type InventoryTransactionLine struct {
	ID              int64   `db:"id" json:"id"`
	TransactionID   int64   `db:"transaction_id" json:"transaction_id"`
	InventoryItemID int64   `db:"inventory_item_id" json:"inventory_item_id"`
	QuantityChange  int64   `db:"quantity_change" json:"quantity_change"`
	StockBefore     int64   `db:"stock_before" json:"stock_before"`
	StockAfter      int64   `db:"stock_after" json:"stock_after"`
	Note            *string `db:"note" json:"note"`
}
