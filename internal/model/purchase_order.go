package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	POStatusDraft             PurchaseOrderStatus = "draft"
	POStatusSent              PurchaseOrderStatus = "sent"
	POStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	POStatusClosed            PurchaseOrderStatus = "closed"
	POStatusCancelled         PurchaseOrderStatus = "cancelled"
)

func (s PurchaseOrderStatus) Valid() bool {
	switch s {
	case POStatusDraft, POStatusSent, POStatusPartiallyReceived,
		POStatusClosed, POStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the order can no longer receive stock.
func (s PurchaseOrderStatus) Terminal() bool {
	return s == POStatusClosed || s == POStatusCancelled
}

type Supplier struct {
	ID                  int64     `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	ContactName         *string   `db:"contact_name" json:"contact_name"`
	ContactEmail        *string   `db:"contact_email" json:"contact_email"`
	ContactPhone        *string   `db:"contact_phone" json:"contact_phone"`
	DefaultLeadTimeDays int       `db:"default_lead_time_days" json:"default_lead_time_days"`
	Notes               *string   `db:"notes" json:"notes"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

type PurchaseOrder struct {
	ID           int64               `db:"id" json:"id"`
	OrderNumber  *string             `db:"order_number" json:"order_number"`
	SupplierID   *int64              `db:"supplier_id" json:"supplier_id"`
	SupplierName *string             `db:"supplier_name" json:"supplier_name"`
	Status       PurchaseOrderStatus `db:"status" json:"status"`
	OrderDate    *time.Time          `db:"order_date" json:"order_date"`
	ExpectedDate *time.Time          `db:"expected_date" json:"expected_date"`
	TotalCost    decimal.Decimal     `db:"total_cost" json:"total_cost"`
	Notes        *string             `db:"notes" json:"notes"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`

	Lines []PurchaseOrderLine `db:"-" json:"lines"`
}

// PurchaseOrderLine quantities are NUMERIC(18,6); suppliers sell in packs and
// fractional purchase units.
type PurchaseOrderLine struct {
	ID                int64           `db:"id" json:"id"`
	PurchaseOrderID   int64           `db:"purchase_order_id" json:"purchase_order_id"`
	InventoryItemID   *int64          `db:"inventory_item_id" json:"inventory_item_id"`
	SupplierSKU       *string         `db:"supplier_sku" json:"supplier_sku"`
	Description       string          `db:"description" json:"description"`
	QuantityOrdered   decimal.Decimal `db:"quantity_ordered" json:"quantity_ordered"`
	QuantityReceived  decimal.Decimal `db:"quantity_received" json:"quantity_received"`
	QuantityCancelled decimal.Decimal `db:"quantity_cancelled" json:"quantity_cancelled"`
	UnitCost          decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	PackSize          decimal.Decimal `db:"pack_size" json:"pack_size"`
	PurchaseUOM       *string         `db:"purchase_uom" json:"purchase_uom"`
	StockUOM          string          `db:"stock_uom" json:"stock_uom"`
	ExpectedDate      *time.Time      `db:"expected_date" json:"expected_date"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Outstanding is the balance still receivable on the line, floored at zero.
func (l *PurchaseOrderLine) Outstanding() decimal.Decimal {
	out := l.QuantityOrdered.Sub(l.QuantityReceived).Sub(l.QuantityCancelled)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// Receipt is an immutable audit record of one receiving event against a
// purchase order.
type Receipt struct {
	ID                     int64     `db:"id" json:"id"`
	PurchaseOrderID        int64     `db:"purchase_order_id" json:"purchase_order_id"`
	InventoryTransactionID *int64    `db:"inventory_transaction_id" json:"inventory_transaction_id"`
	Reference              string    `db:"reference" json:"reference"`
	Notes                  *string   `db:"notes" json:"notes"`
	ReceivedBy             *string   `db:"received_by" json:"received_by"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`

	Lines []ReceiptLine `db:"-" json:"lines"`
}

type ReceiptLine struct {
	ID                  int64           `db:"id" json:"id"`
	ReceiptID           int64           `db:"receipt_id" json:"receipt_id"`
	PurchaseOrderLineID int64           `db:"purchase_order_line_id" json:"purchase_order_line_id"`
	QuantityReceived    decimal.Decimal `db:"quantity_received" json:"quantity_received"`
	QuantityCancelled   decimal.Decimal `db:"quantity_cancelled" json:"quantity_cancelled"`
}
