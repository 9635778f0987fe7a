package usecase

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/forgedesk/inventory-service/internal/ledger"
	"github.com/forgedesk/inventory-service/internal/ledger/dto"
	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	items map[int64]*model.InventoryItem
	txns  []*model.InventoryTransaction
}

func newFakeRepo(items ...*model.InventoryItem) *fakeRepo {
	r := &fakeRepo{items: map[int64]*model.InventoryItem{}}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *fakeRepo) GetItem(_ context.Context, id int64) (*model.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeRepo) FindItemBySKU(_ context.Context, sku string) (*model.InventoryItem, error) {
	for _, item := range r.items {
		if item.SKU == sku {
			copied := *item
			return &copied, nil
		}
	}
	return nil, model.ErrItemNotFound
}

func (r *fakeRepo) ResolveItemByIdentifier(ctx context.Context, identifier string) (*model.InventoryItem, error) {
	if item, err := r.FindItemBySKU(ctx, identifier); err == nil {
		return item, nil
	}
	for _, item := range r.items {
		if item.PartNumber == identifier || strings.Contains(strings.ToLower(item.Item), strings.ToLower(identifier)) {
			copied := *item
			return &copied, nil
		}
	}
	return nil, model.ErrItemNotFound
}

func (r *fakeRepo) ListItems(_ context.Context, _ *dto.ItemFilters) ([]model.InventoryItem, int, error) {
	ids := make([]int64, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	items := make([]model.InventoryItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, *r.items[id])
	}
	return items, len(items), nil
}

func (r *fakeRepo) Summary(_ context.Context) (*dto.StockSummary, error) {
	s := &dto.StockSummary{ItemCount: len(r.items)}
	for _, item := range r.items {
		s.TotalStock += item.Stock
		s.TotalCommitted += item.CommittedQty
		s.TotalAvailable += item.AvailableQty()
	}
	return s, nil
}

func (r *fakeRepo) AverageDailyUse(_ context.Context, _ int64, _ int) (*float64, error) {
	return nil, nil
}

func (r *fakeRepo) ListTransactions(_ context.Context, _ int) ([]dto.TransactionHistoryEntry, error) {
	return nil, nil
}

func (r *fakeRepo) RecordTransaction(_ context.Context, txn *model.InventoryTransaction, lines []dto.TransactionLineInput) (*model.InventoryTransaction, error) {
	planned, err := ledger.PlanTransaction(r.items, lines)
	if err != nil {
		return nil, err
	}
	for _, p := range planned {
		item := r.items[p.ItemID]
		item.Stock += p.QuantityChange
		item.Status = model.DeriveStatus(item.AvailableQty(), item.ReorderPoint, item.Discontinued)
		txn.Lines = append(txn.Lines, model.InventoryTransactionLine{
			InventoryItemID: p.ItemID,
			QuantityChange:  p.QuantityChange,
			StockBefore:     p.StockBefore,
			StockAfter:      p.StockAfter,
			Note:            p.Note,
		})
	}
	txn.ID = int64(len(r.txns) + 1)
	r.txns = append(r.txns, txn)
	return txn, nil
}

func (r *fakeRepo) AdjustCommitted(_ context.Context, itemID int64, delta int64) (*model.InventoryItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	item.CommittedQty += delta
	if item.CommittedQty < 0 {
		item.CommittedQty = 0
	}
	item.Status = model.DeriveStatus(item.AvailableQty(), item.ReorderPoint, item.Discontinued)
	copied := *item
	return &copied, nil
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "error", Encoding: "console", DisableStacktrace: true})
}

func TestCommitWithinAvailabilityHasNoWarning(t *testing.T) {
	repo := newFakeRepo(&model.InventoryItem{ID: 1, SKU: "HG-35-BL", Stock: 10, ReorderPoint: 2})
	uc := NewLedgerUseCase(repo, nil, testLogger())

	item, warning, err := uc.Commit(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Nil(t, warning)
	assert.Equal(t, int64(4), item.CommittedQty)
	assert.Equal(t, int64(6), item.AvailableQty())
}

func TestCommitPastAvailabilityAppliesAndWarns(t *testing.T) {
	repo := newFakeRepo(&model.InventoryItem{ID: 1, Item: "Hinge", SKU: "HG-35-BL", Stock: 5, ReorderPoint: 2})
	uc := NewLedgerUseCase(repo, nil, testLogger())

	item, warning, err := uc.Commit(context.Background(), 1, 8)
	require.NoError(t, err)
	require.NotNil(t, warning)
	assert.Equal(t, int64(8), warning.RequestedQty)
	assert.Equal(t, int64(5), warning.AvailableQty)

	// Applied anyway; availability goes negative and status drops.
	assert.Equal(t, int64(8), item.CommittedQty)
	assert.Equal(t, int64(-3), item.AvailableQty())
	assert.Equal(t, model.ItemStatusCritical, item.Status)
}

func TestCommitRejectsNonPositiveQuantity(t *testing.T) {
	repo := newFakeRepo(&model.InventoryItem{ID: 1, Stock: 5})
	uc := NewLedgerUseCase(repo, nil, testLogger())

	var vErr *model.ValidationError
	_, _, err := uc.Commit(context.Background(), 1, 0)
	require.ErrorAs(t, err, &vErr)
	_, _, err = uc.Commit(context.Background(), 1, -2)
	require.ErrorAs(t, err, &vErr)
}

func TestReleaseClampsAtZero(t *testing.T) {
	repo := newFakeRepo(&model.InventoryItem{ID: 1, Stock: 10, CommittedQty: 3, ReorderPoint: 2})
	uc := NewLedgerUseCase(repo, nil, testLogger())

	item, err := uc.Release(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.CommittedQty)
}

func TestRecordTransactionResolvesIdentifiers(t *testing.T) {
	repo := newFakeRepo(
		&model.InventoryItem{ID: 1, Item: "Hinge 35mm", SKU: "HG-35-BL", PartNumber: "HG-35", Stock: 10},
		&model.InventoryItem{ID: 2, Item: "Drawer slide", SKU: "DS-450", Stock: 4},
	)
	uc := NewLedgerUseCase(repo, nil, testLogger())

	txn, err := uc.RecordTransaction(context.Background(), &dto.RecordTransactionInput{
		Reference:  "WO-1042",
		RecordedBy: "mara",
		Lines: []dto.TransactionLineInput{
			{Identifier: "HG-35-BL", QuantityChange: -2},
			{Identifier: "drawer", QuantityChange: -1},
		},
	})
	require.NoError(t, err)
	require.Len(t, txn.Lines, 2)
	assert.Equal(t, int64(1), txn.Lines[0].InventoryItemID)
	assert.Equal(t, int64(2), txn.Lines[1].InventoryItemID)
	assert.Equal(t, int64(8), repo.items[1].Stock)
	assert.Equal(t, int64(3), repo.items[2].Stock)
}

func TestRecordTransactionIsAllOrNothing(t *testing.T) {
	repo := newFakeRepo(
		&model.InventoryItem{ID: 1, SKU: "HG-35-BL", Stock: 10},
		&model.InventoryItem{ID: 2, SKU: "DS-450", Stock: 4},
	)
	uc := NewLedgerUseCase(repo, nil, testLogger())

	_, err := uc.RecordTransaction(context.Background(), &dto.RecordTransactionInput{
		Reference: "WO-1043",
		Lines: []dto.TransactionLineInput{
			{ItemID: 1, QuantityChange: -5},
			{ItemID: 2, QuantityChange: -9},
		},
	})
	var insufficient *model.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	// First line must not have been applied.
	assert.Equal(t, int64(10), repo.items[1].Stock)
	assert.Equal(t, int64(4), repo.items[2].Stock)
	assert.Empty(t, repo.txns)
}

func TestRecordTransactionRequiresReference(t *testing.T) {
	repo := newFakeRepo(&model.InventoryItem{ID: 1, Stock: 10})
	uc := NewLedgerUseCase(repo, nil, testLogger())

	var vErr *model.ValidationError
	_, err := uc.RecordTransaction(context.Background(), &dto.RecordTransactionInput{
		Lines: []dto.TransactionLineInput{{ItemID: 1, QuantityChange: 1}},
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reference", vErr.Field)
}

func TestRecordTransactionUnknownIdentifier(t *testing.T) {
	repo := newFakeRepo(&model.InventoryItem{ID: 1, SKU: "HG-35-BL", Stock: 10})
	uc := NewLedgerUseCase(repo, nil, testLogger())

	var vErr *model.ValidationError
	_, err := uc.RecordTransaction(context.Background(), &dto.RecordTransactionInput{
		Reference: "WO-1044",
		Lines:     []dto.TransactionLineInput{{Identifier: "nope", QuantityChange: 1}},
	})
	require.ErrorAs(t, err, &vErr)
}
