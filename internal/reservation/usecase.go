package reservation

import (
	"context"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/reservation/dto"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateInput) (*dto.ReservationDetail, []model.ShortageWarning, error)
	Get(ctx context.Context, id int64) (*dto.ReservationDetail, error)
	List(ctx context.Context) ([]dto.ReservationSummary, error)

	StartWork(ctx context.Context, id int64) (*dto.StatusUpdateResult, error)
	Edit(ctx context.Context, id int64, input *dto.EditInput) (*dto.EditResult, []model.ShortageWarning, error)
	Complete(ctx context.Context, id int64, actuals map[int64]int64) (*dto.CompletionResult, error)
	Cancel(ctx context.Context, id int64) (*dto.CancellationResult, error)

	// UpdateStatus dispatches to StartWork, Complete, or Cancel based on the
	// requested target status.
	UpdateStatus(ctx context.Context, id int64, input *dto.UpdateStatusInput) (*dto.StatusUpdateResult, error)
}
