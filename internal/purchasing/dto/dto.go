package dto

import (
	"time"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type OpenOrderSummary struct {
	ID           int64                     `db:"id" json:"id"`
	OrderNumber  *string                   `db:"order_number" json:"order_number"`
	SupplierName *string                   `db:"supplier_name" json:"supplier_name"`
	Status       model.PurchaseOrderStatus `db:"status" json:"status"`
	ExpectedDate *time.Time                `db:"expected_date" json:"expected_date"`
	LineCount    int                       `db:"line_count" json:"line_count"`
	Outstanding  decimal.Decimal           `db:"outstanding" json:"outstanding"`
	TotalCost    decimal.Decimal           `db:"total_cost" json:"total_cost"`
}

type ReceiptResult struct {
	ReceiptID              int64                     `json:"receipt_id"`
	InventoryTransactionID *int64                    `json:"inventory_transaction_id"`
	Reference              string                    `json:"reference"`
	Lines                  []ReceiptResultLine       `json:"lines"`
	TotalReceived          decimal.Decimal           `json:"total_received"`
	TotalCancelled         decimal.Decimal           `json:"total_cancelled"`
	Status                 model.PurchaseOrderStatus `json:"status"`
}

type ReceiptResultLine struct {
	LineID       int64           `json:"line_id"`
	Description  string          `json:"description"`
	Received     decimal.Decimal `json:"received"`
	Cancelled    decimal.Decimal `json:"cancelled"`
	NewReceived  decimal.Decimal `json:"new_received"`
	NewCancelled decimal.Decimal `json:"new_cancelled"`
	StockQtyEach int64           `json:"stock_qty_each"`
}

type ReceiptSummary struct {
	ID              int64           `db:"id" json:"id"`
	PurchaseOrderID int64           `db:"purchase_order_id" json:"purchase_order_id"`
	OrderNumber     *string         `db:"order_number" json:"order_number"`
	Reference       string          `db:"reference" json:"reference"`
	ReceivedBy      *string         `db:"received_by" json:"received_by"`
	LineCount       int             `db:"line_count" json:"line_count"`
	TotalReceived   decimal.Decimal `db:"total_received" json:"total_received"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
