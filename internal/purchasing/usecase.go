package purchasing

import (
	"context"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/purchasing/dto"
)

type UseCase interface {
	CreateSupplier(ctx context.Context, input *dto.SupplierInput) (*model.Supplier, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)

	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.PurchaseOrder, error)
	GetOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error)
	UpdateOrder(ctx context.Context, id int64, input *dto.UpdateOrderInput) (*model.PurchaseOrder, error)
	ListOpen(ctx context.Context) ([]dto.OpenOrderSummary, error)

	// RecordReceipt books arrived stock against the order. It never changes
	// the order status; callers decide when to run RecalculateStatus.
	RecordReceipt(ctx context.Context, poID int64, input *dto.ReceiptInput) (*dto.ReceiptResult, error)
	RecalculateStatus(ctx context.Context, poID int64) (model.PurchaseOrderStatus, error)
	ReceiptHistory(ctx context.Context, poID int64) ([]model.Receipt, error)
	RecentReceipts(ctx context.Context, limit int) ([]dto.ReceiptSummary, error)
}
