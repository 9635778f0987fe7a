package ledger

import (
	"context"

	"github.com/forgedesk/inventory-service/internal/ledger/dto"
	"github.com/forgedesk/inventory-service/internal/model"
)

type UseCase interface {
	GetItem(ctx context.Context, id int64) (*model.InventoryItem, error)
	ResolveItem(ctx context.Context, identifier string) (*model.InventoryItem, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, int, error)
	Summary(ctx context.Context) (*dto.StockSummary, error)
	AvailableQty(ctx context.Context, itemID int64) (int64, error)
	AverageDailyUse(ctx context.Context, itemID int64, windowDays int) (*float64, error)

	RecordTransaction(ctx context.Context, input *dto.RecordTransactionInput) (*model.InventoryTransaction, error)
	ListTransactions(ctx context.Context, limit int) ([]dto.TransactionHistoryEntry, error)

	// Commit places a soft hold for a job: it never fails on shortage but
	// reports one. Release hands committed quantity back.
	Commit(ctx context.Context, itemID, quantity int64) (*model.InventoryItem, *model.ShortageWarning, error)
	Release(ctx context.Context, itemID, quantity int64) (*model.InventoryItem, error)
}
