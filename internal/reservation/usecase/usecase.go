package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/pkg/cache"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/forgedesk/inventory-service/internal/reservation"
	"github.com/forgedesk/inventory-service/internal/reservation/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type reservationUseCase struct {
	repo   reservation.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewReservationUseCase(repo reservation.Repository, cache *cache.RedisClient, log logger.ZapLogger) reservation.UseCase {
	return &reservationUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *reservationUseCase) Create(ctx context.Context, input *dto.CreateInput) (*dto.ReservationDetail, []model.ShortageWarning, error) {
	if input.JobNumber == "" {
		return nil, nil, model.Invalid("job_number", "is required")
	}
	if input.JobName == "" {
		return nil, nil, model.Invalid("job_name", "is required")
	}
	if input.RequestedBy == "" {
		return nil, nil, model.Invalid("requested_by", "is required")
	}
	if len(input.Lines) == 0 {
		return nil, nil, model.Invalid("lines", "at least one line is required")
	}
	for i, line := range input.Lines {
		if line.ItemID == 0 {
			return nil, nil, model.Invalid(fmt.Sprintf("lines[%d].item_id", i), "is required")
		}
		if line.Quantity <= 0 {
			return nil, nil, model.Invalid(fmt.Sprintf("lines[%d].quantity", i), "must be positive")
		}
	}

	res := &model.Reservation{
		JobNumber:   input.JobNumber,
		JobName:     input.JobName,
		RequestedBy: input.RequestedBy,
		Status:      model.ReservationStatusActive,
	}
	if input.NeededBy != "" {
		parsed, err := time.Parse("2006-01-02", input.NeededBy)
		if err != nil {
			return nil, nil, model.Invalid("needed_by", "must be formatted YYYY-MM-DD")
		}
		res.NeededBy = &parsed
	}
	if input.Notes != "" {
		res.Notes = &input.Notes
	}

	detail, warnings, err := uc.repo.Create(ctx, res, input.Lines)
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Info("created reservation",
		zap.Int64("reservation_id", detail.Reservation.ID),
		zap.String("job_number", detail.Reservation.JobNumber),
		zap.Int("lines", len(detail.Lines)),
		zap.Int("warnings", len(warnings)))
	return detail, warnings, nil
}

func (uc *reservationUseCase) Get(ctx context.Context, id int64) (*dto.ReservationDetail, error) {
	return uc.repo.GetDetail(ctx, id)
}

func (uc *reservationUseCase) List(ctx context.Context) ([]dto.ReservationSummary, error) {
	return uc.repo.List(ctx)
}

func (uc *reservationUseCase) StartWork(ctx context.Context, id int64) (*dto.StatusUpdateResult, error) {
	res, err := uc.repo.StartWork(ctx, id)
	if err != nil {
		return nil, err
	}

	// Committed quantities may outrun on-hand stock under the soft guard.
	// Flag every line the shop cannot pull yet.
	detail, err := uc.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	var insufficient []model.InsufficientItem
	for _, line := range detail.Lines {
		if line.CommittedQty > line.OnHand {
			insufficient = append(insufficient, model.InsufficientItem{
				ItemID:       line.InventoryItemID,
				SKU:          line.SKU,
				Item:         line.Item,
				Location:     line.Location,
				CommittedQty: line.CommittedQty,
				OnHand:       line.OnHand,
				Shortage:     line.CommittedQty - line.OnHand,
			})
		}
	}
	if len(insufficient) > 0 {
		uc.logger.Warn("work started with insufficient stock",
			zap.String("job_number", res.JobNumber),
			zap.Int("short_lines", len(insufficient)))
	}

	return &dto.StatusUpdateResult{Status: res.Status, InsufficientItems: insufficient}, nil
}

func (uc *reservationUseCase) Edit(ctx context.Context, id int64, input *dto.EditInput) (*dto.EditResult, []model.ShortageWarning, error) {
	release, err := uc.lockReservation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	result, warnings, err := uc.repo.Edit(ctx, id, input)
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Info("edited reservation",
		zap.Int64("reservation_id", id),
		zap.Int("lines_updated", result.LinesUpdated),
		zap.Int("lines_added", result.LinesAdded),
		zap.Int64("committed", result.TotalCommitted),
		zap.Int64("released", result.TotalReleased))
	return result, warnings, nil
}

func (uc *reservationUseCase) Complete(ctx context.Context, id int64, actuals map[int64]int64) (*dto.CompletionResult, error) {
	release, err := uc.lockReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := uc.repo.Complete(ctx, id, actuals)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("completed reservation",
		zap.Int64("reservation_id", id),
		zap.String("job_number", result.JobNumber),
		zap.Int64("consumed", result.TotalConsumed),
		zap.Int64("released", result.TotalReleased))
	return result, nil
}

func (uc *reservationUseCase) Cancel(ctx context.Context, id int64) (*dto.CancellationResult, error) {
	release, err := uc.lockReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := uc.repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("cancelled reservation",
		zap.Int64("reservation_id", id),
		zap.String("job_number", result.JobNumber),
		zap.Int64("released", result.TotalReleased))
	return result, nil
}

func (uc *reservationUseCase) UpdateStatus(ctx context.Context, id int64, input *dto.UpdateStatusInput) (*dto.StatusUpdateResult, error) {
	target := model.ReservationStatus(input.Status)
	switch target {
	case model.ReservationStatusInProgress:
		return uc.StartWork(ctx, id)
	case model.ReservationStatusFulfilled:
		completion, err := uc.Complete(ctx, id, input.ActualConsumed)
		if err != nil {
			return nil, err
		}
		return &dto.StatusUpdateResult{Status: target, Completion: completion}, nil
	case model.ReservationStatusCancelled:
		cancellation, err := uc.Cancel(ctx, id)
		if err != nil {
			return nil, err
		}
		return &dto.StatusUpdateResult{Status: target, Cancellation: cancellation}, nil
	case model.ReservationStatusActive:
		return nil, model.Invalid("status", "reservations cannot return to active")
	default:
		return nil, model.Invalid("status", fmt.Sprintf("unknown status %q", input.Status))
	}
}

func (uc *reservationUseCase) lockReservation(ctx context.Context, id int64) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:reservation:%d", id)
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
