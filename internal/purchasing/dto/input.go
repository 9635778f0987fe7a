package dto

import "github.com/shopspring/decimal"

type CreateOrderInput struct {
	OrderNumber  string      `json:"order_number"`
	SupplierID   *int64      `json:"supplier_id"`
	Status       string      `json:"status"` // defaults to draft
	OrderDate    string      `json:"order_date"`
	ExpectedDate string      `json:"expected_date"`
	Notes        string      `json:"notes"`
	Lines        []LineInput `json:"lines"`
}

type LineInput struct {
	InventoryItemID *int64          `json:"inventory_item_id"`
	SupplierSKU     string          `json:"supplier_sku"`
	Description     string          `json:"description"`
	QuantityOrdered decimal.Decimal `json:"quantity_ordered"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	PackSize        decimal.Decimal `json:"pack_size"`
	PurchaseUOM     string          `json:"purchase_uom"`
	StockUOM        string          `json:"stock_uom"`
	ExpectedDate    string          `json:"expected_date"`
}

// UpdateOrderInput patches header fields and upserts or deletes lines.
// A line with ID zero is inserted.
type UpdateOrderInput struct {
	OrderNumber  *string           `json:"order_number"`
	SupplierID   *int64            `json:"supplier_id"`
	Status       *string           `json:"status"`
	OrderDate    *string           `json:"order_date"`
	ExpectedDate *string           `json:"expected_date"`
	Notes        *string           `json:"notes"`
	Lines        []UpdateLineInput `json:"lines"`
	DeleteLines  []int64           `json:"delete_lines"`
}

type UpdateLineInput struct {
	ID int64 `json:"id"`
	LineInput
}

type ReceiptInput struct {
	Reference  string             `json:"reference"`
	Notes      string             `json:"notes"`
	ReceivedBy string             `json:"received_by"`
	Lines      []ReceiptLineInput `json:"lines"`
}

type ReceiptLineInput struct {
	LineID  int64           `json:"line_id"`
	Receive decimal.Decimal `json:"receive"`
	Cancel  decimal.Decimal `json:"cancel"`
}

type SupplierInput struct {
	Name                string `json:"name"`
	ContactName         string `json:"contact_name"`
	ContactEmail        string `json:"contact_email"`
	ContactPhone        string `json:"contact_phone"`
	DefaultLeadTimeDays int    `json:"default_lead_time_days"`
	Notes               string `json:"notes"`
}
