package ledger

import (
	"context"

	"github.com/forgedesk/inventory-service/internal/ledger/dto"
	"github.com/forgedesk/inventory-service/internal/model"
)

type Repository interface {
	// Items
	GetItem(ctx context.Context, id int64) (*model.InventoryItem, error)
	FindItemBySKU(ctx context.Context, sku string) (*model.InventoryItem, error)
	ResolveItemByIdentifier(ctx context.Context, identifier string) (*model.InventoryItem, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, int, error)
	Summary(ctx context.Context) (*dto.StockSummary, error)

	// Usage history
	AverageDailyUse(ctx context.Context, itemID int64, windowDays int) (*float64, error)

	// Transactions / audit
	ListTransactions(ctx context.Context, limit int) ([]dto.TransactionHistoryEntry, error)

	// Mutations. RecordTransaction applies all lines or none; AdjustCommitted
	// moves the commitment level on a single item.
	RecordTransaction(ctx context.Context, txn *model.InventoryTransaction, lines []dto.TransactionLineInput) (*model.InventoryTransaction, error)
	AdjustCommitted(ctx context.Context, itemID int64, delta int64) (*model.InventoryItem, error)
}
