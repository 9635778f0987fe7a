package reservation

import (
	"context"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/reservation/dto"
)

type Repository interface {
	Create(ctx context.Context, res *model.Reservation, lines []dto.LineInput) (*dto.ReservationDetail, []model.ShortageWarning, error)
	GetDetail(ctx context.Context, id int64) (*dto.ReservationDetail, error)
	List(ctx context.Context) ([]dto.ReservationSummary, error)

	// StartWork moves active -> in_progress without touching quantities.
	StartWork(ctx context.Context, id int64) (*model.Reservation, error)
	Edit(ctx context.Context, id int64, input *dto.EditInput) (*dto.EditResult, []model.ShortageWarning, error)
	Complete(ctx context.Context, id int64, actuals map[int64]int64) (*dto.CompletionResult, error)
	Cancel(ctx context.Context, id int64) (*dto.CancellationResult, error)
}
