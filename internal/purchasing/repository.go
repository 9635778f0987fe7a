package purchasing

import (
	"context"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/purchasing/dto"
	"github.com/shopspring/decimal"
)

// ReceiptMeta carries the audit fields of one receiving event.
type ReceiptMeta struct {
	Reference  string
	Notes      string
	ReceivedBy string
}

type Repository interface {
	// Suppliers
	CreateSupplier(ctx context.Context, s *model.Supplier) error
	GetSupplier(ctx context.Context, id int64) (*model.Supplier, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)

	// Purchase orders
	CreatePurchaseOrder(ctx context.Context, po *model.PurchaseOrder, lines []dto.LineInput) (*model.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, id int64, input *dto.UpdateOrderInput) (*model.PurchaseOrder, error)
	ListOpen(ctx context.Context) ([]dto.OpenOrderSummary, error)

	// Receiving
	RecordReceipt(ctx context.Context, poID int64, changes map[int64]ReceiptChange, meta ReceiptMeta) (*dto.ReceiptResult, error)
	RecalculateStatus(ctx context.Context, poID int64) (model.PurchaseOrderStatus, error)
	ReceiptHistory(ctx context.Context, poID int64) ([]model.Receipt, error)
	RecentReceipts(ctx context.Context, limit int) ([]dto.ReceiptSummary, error)

	// OutstandingByItem sums undelivered quantities (in stock eaches) across
	// open orders, keyed by inventory item.
	OutstandingByItem(ctx context.Context) (map[int64]decimal.Decimal, error)
}
