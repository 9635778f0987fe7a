package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forgedesk/inventory-service/internal/ledger"
	"github.com/forgedesk/inventory-service/internal/ledger/dto"
	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/pkg/cache"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ledgerUseCase struct {
	repo   ledger.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewLedgerUseCase(repo ledger.Repository, cache *cache.RedisClient, log logger.ZapLogger) ledger.UseCase {
	return &ledgerUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *ledgerUseCase) GetItem(ctx context.Context, id int64) (*model.InventoryItem, error) {
	return uc.repo.GetItem(ctx, id)
}

func (uc *ledgerUseCase) ResolveItem(ctx context.Context, identifier string) (*model.InventoryItem, error) {
	if identifier == "" {
		return nil, model.Invalid("identifier", "is required")
	}
	return uc.repo.ResolveItemByIdentifier(ctx, identifier)
}

func (uc *ledgerUseCase) ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, int, error) {
	return uc.repo.ListItems(ctx, filters)
}

func (uc *ledgerUseCase) Summary(ctx context.Context) (*dto.StockSummary, error) {
	return uc.repo.Summary(ctx)
}

func (uc *ledgerUseCase) AvailableQty(ctx context.Context, itemID int64) (int64, error) {
	item, err := uc.repo.GetItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return item.AvailableQty(), nil
}

func (uc *ledgerUseCase) AverageDailyUse(ctx context.Context, itemID int64, windowDays int) (*float64, error) {
	if windowDays <= 0 {
		return nil, model.Invalid("window_days", "must be positive")
	}
	if _, err := uc.repo.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return uc.repo.AverageDailyUse(ctx, itemID, windowDays)
}

func (uc *ledgerUseCase) RecordTransaction(ctx context.Context, input *dto.RecordTransactionInput) (*model.InventoryTransaction, error) {
	if input.Reference == "" {
		return nil, model.Invalid("reference", "is required")
	}
	if len(input.Lines) == 0 {
		return nil, model.Invalid("lines", "at least one line is required")
	}

	// Resolve identifier-only lines before entering the transaction.
	lines := make([]dto.TransactionLineInput, len(input.Lines))
	copy(lines, input.Lines)
	for i := range lines {
		if lines[i].ItemID != 0 {
			continue
		}
		if lines[i].Identifier == "" {
			return nil, model.Invalid(fmt.Sprintf("lines[%d]", i), "item_id or identifier is required")
		}
		item, err := uc.repo.ResolveItemByIdentifier(ctx, lines[i].Identifier)
		if err != nil {
			if errors.Is(err, model.ErrItemNotFound) {
				return nil, model.Invalid(fmt.Sprintf("lines[%d].identifier", i),
					fmt.Sprintf("no item matches %q", lines[i].Identifier))
			}
			return nil, err
		}
		lines[i].ItemID = item.ID
	}

	txn := &model.InventoryTransaction{Reference: input.Reference}
	if input.Notes != "" {
		txn.Notes = &input.Notes
	}
	if input.RecordedBy != "" {
		txn.CreatedBy = &input.RecordedBy
	}

	recorded, err := uc.repo.RecordTransaction(ctx, txn, lines)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("recorded inventory transaction",
		zap.Int64("transaction_id", recorded.ID),
		zap.String("reference", recorded.Reference),
		zap.Int("lines", len(recorded.Lines)))
	return recorded, nil
}

func (uc *ledgerUseCase) ListTransactions(ctx context.Context, limit int) ([]dto.TransactionHistoryEntry, error) {
	return uc.repo.ListTransactions(ctx, limit)
}

func (uc *ledgerUseCase) Commit(ctx context.Context, itemID, quantity int64) (*model.InventoryItem, *model.ShortageWarning, error) {
	if quantity <= 0 {
		return nil, nil, model.Invalid("quantity", "must be positive")
	}

	release, err := uc.lockItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	item, err := uc.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}

	// Soft guard: overcommit is allowed but reported.
	var warning *model.ShortageWarning
	if item.AvailableQty() < quantity {
		warning = &model.ShortageWarning{
			ItemID:       item.ID,
			SKU:          item.SKU,
			Item:         item.Item,
			Location:     item.Location,
			RequestedQty: quantity,
			AvailableQty: item.AvailableQty(),
		}
		uc.logger.Warn("commitment exceeds availability",
			zap.Int64("item_id", item.ID),
			zap.Int64("requested", quantity),
			zap.Int64("available", item.AvailableQty()))
	}

	updated, err := uc.repo.AdjustCommitted(ctx, itemID, quantity)
	if err != nil {
		return nil, nil, err
	}
	return updated, warning, nil
}

func (uc *ledgerUseCase) Release(ctx context.Context, itemID, quantity int64) (*model.InventoryItem, error) {
	if quantity <= 0 {
		return nil, model.Invalid("quantity", "must be positive")
	}

	release, err := uc.lockItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	defer release()

	return uc.repo.AdjustCommitted(ctx, itemID, -quantity)
}

// lockItem serializes commitment changes per item above the row locks.
func (uc *ledgerUseCase) lockItem(ctx context.Context, itemID int64) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:item:%d", itemID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, errors.New("system busy, please try again later (lock)")
	}

	return func() { uc.cache.ReleaseLock(ctx, lockKey, lockValue) }, nil
}
