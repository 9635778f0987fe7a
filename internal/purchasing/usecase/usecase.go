package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/pkg/cache"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/forgedesk/inventory-service/internal/purchasing"
	"github.com/forgedesk/inventory-service/internal/purchasing/dto"
)

type purchasingUseCase struct {
	repo   purchasing.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewPurchasingUseCase(repo purchasing.Repository, cache *cache.RedisClient, logger logger.ZapLogger) purchasing.UseCase {
	return &purchasingUseCase{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (uc *purchasingUseCase) CreateSupplier(ctx context.Context, input *dto.SupplierInput) (*model.Supplier, error) {
	if input.Name == "" {
		return nil, model.Invalid("name", "is required")
	}
	supplier := &model.Supplier{
		Name:                input.Name,
		ContactName:         optional(input.ContactName),
		ContactEmail:        optional(input.ContactEmail),
		ContactPhone:        optional(input.ContactPhone),
		DefaultLeadTimeDays: input.DefaultLeadTimeDays,
		Notes:               optional(input.Notes),
	}
	if err := uc.repo.CreateSupplier(ctx, supplier); err != nil {
		uc.logger.Error("failed to create supplier", zap.Error(err))
		return nil, err
	}
	uc.logger.Info("created supplier",
		zap.Int64("supplier_id", supplier.ID),
		zap.String("name", supplier.Name))
	return supplier, nil
}

func (uc *purchasingUseCase) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return uc.repo.ListSuppliers(ctx)
}

func (uc *purchasingUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.PurchaseOrder, error) {
	status := model.POStatusDraft
	if input.Status != "" {
		status = model.PurchaseOrderStatus(input.Status)
		if !status.Valid() {
			return nil, model.Invalid("status", fmt.Sprintf("unknown status %q", input.Status))
		}
	}
	if input.SupplierID != nil {
		if _, err := uc.repo.GetSupplier(ctx, *input.SupplierID); err != nil {
			return nil, err
		}
	}
	for i, line := range input.Lines {
		if line.Description == "" {
			return nil, model.Invalid(fmt.Sprintf("lines[%d].description", i), "is required")
		}
		if line.QuantityOrdered.IsNegative() {
			return nil, model.Invalid(fmt.Sprintf("lines[%d].quantity_ordered", i), "must not be negative")
		}
	}

	po := &model.PurchaseOrder{
		OrderNumber: optional(input.OrderNumber),
		SupplierID:  input.SupplierID,
		Status:      status,
		Notes:       optional(input.Notes),
	}
	var err error
	if po.OrderDate, err = parseDate(input.OrderDate, "order_date"); err != nil {
		return nil, err
	}
	if po.ExpectedDate, err = parseDate(input.ExpectedDate, "expected_date"); err != nil {
		return nil, err
	}

	created, err := uc.repo.CreatePurchaseOrder(ctx, po, input.Lines)
	if err != nil {
		uc.logger.Error("failed to create purchase order", zap.Error(err))
		return nil, err
	}
	uc.logger.Info("created purchase order",
		zap.Int64("po_id", created.ID),
		zap.Int("lines", len(created.Lines)))
	return created, nil
}

func (uc *purchasingUseCase) GetOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	return uc.repo.GetPurchaseOrder(ctx, id)
}

func (uc *purchasingUseCase) UpdateOrder(ctx context.Context, id int64, input *dto.UpdateOrderInput) (*model.PurchaseOrder, error) {
	release, err := uc.lockOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	updated, err := uc.repo.UpdatePurchaseOrder(ctx, id, input)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("updated purchase order", zap.Int64("po_id", id))
	return updated, nil
}

func (uc *purchasingUseCase) ListOpen(ctx context.Context) ([]dto.OpenOrderSummary, error) {
	return uc.repo.ListOpen(ctx)
}

func (uc *purchasingUseCase) RecordReceipt(ctx context.Context, poID int64, input *dto.ReceiptInput) (*dto.ReceiptResult, error) {
	if len(input.Lines) == 0 {
		return nil, model.Invalid("lines", "must not be empty")
	}

	changes := make(map[int64]purchasing.ReceiptChange, len(input.Lines))
	for i, line := range input.Lines {
		if line.LineID == 0 {
			return nil, model.Invalid(fmt.Sprintf("lines[%d].line_id", i), "is required")
		}
		if _, ok := changes[line.LineID]; ok {
			return nil, model.Invalid("lines", fmt.Sprintf("line %d appears more than once", line.LineID))
		}
		changes[line.LineID] = purchasing.ReceiptChange{
			Receive: line.Receive,
			Cancel:  line.Cancel,
		}
	}

	meta := purchasing.ReceiptMeta{
		Reference:  input.Reference,
		Notes:      input.Notes,
		ReceivedBy: input.ReceivedBy,
	}
	if meta.Reference == "" {
		meta.Reference = fmt.Sprintf("PO %d receipt %s", poID, uuid.NewString()[:8])
	}

	release, err := uc.lockOrder(ctx, poID)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := uc.repo.RecordReceipt(ctx, poID, changes, meta)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("recorded receipt",
		zap.Int64("receipt_id", result.ReceiptID),
		zap.Int64("po_id", poID),
		zap.String("total_received", result.TotalReceived.String()),
		zap.String("total_cancelled", result.TotalCancelled.String()))
	return result, nil
}

func (uc *purchasingUseCase) RecalculateStatus(ctx context.Context, poID int64) (model.PurchaseOrderStatus, error) {
	release, err := uc.lockOrder(ctx, poID)
	if err != nil {
		return "", err
	}
	defer release()

	status, err := uc.repo.RecalculateStatus(ctx, poID)
	if err != nil {
		return "", err
	}
	uc.logger.Info("recalculated purchase order status",
		zap.Int64("po_id", poID),
		zap.String("status", string(status)))
	return status, nil
}

func (uc *purchasingUseCase) ReceiptHistory(ctx context.Context, poID int64) ([]model.Receipt, error) {
	if _, err := uc.repo.GetPurchaseOrder(ctx, poID); err != nil {
		return nil, err
	}
	return uc.repo.ReceiptHistory(ctx, poID)
}

func (uc *purchasingUseCase) RecentReceipts(ctx context.Context, limit int) ([]dto.ReceiptSummary, error) {
	return uc.repo.RecentReceipts(ctx, limit)
}

func (uc *purchasingUseCase) lockOrder(ctx context.Context, poID int64) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:po:%d", poID)
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

func parseDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, model.Invalid(field, "must be formatted YYYY-MM-DD")
	}
	return &parsed, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
