package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/forgedesk/inventory-service/internal/reservation"
	"github.com/forgedesk/inventory-service/internal/reservation/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	items        map[int64]*model.InventoryItem
	reservations map[int64]*model.Reservation
	lines        map[int64][]*model.ReservationLine
	nextRes      int64
	nextLine     int64
}

func newFakeRepo(items ...*model.InventoryItem) *fakeRepo {
	r := &fakeRepo{
		items:        map[int64]*model.InventoryItem{},
		reservations: map[int64]*model.Reservation{},
		lines:        map[int64][]*model.ReservationLine{},
	}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *fakeRepo) commit(item *model.InventoryItem, delta int64) {
	item.CommittedQty += delta
	if item.CommittedQty < 0 {
		item.CommittedQty = 0
	}
	item.Status = model.DeriveStatus(item.AvailableQty(), item.ReorderPoint, item.Discontinued)
}

func (r *fakeRepo) Create(_ context.Context, res *model.Reservation, lines []dto.LineInput) (*dto.ReservationDetail, []model.ShortageWarning, error) {
	for _, existing := range r.reservations {
		if existing.JobNumber == res.JobNumber {
			return nil, nil, model.Invalid("job_number", fmt.Sprintf("%q is already reserved", res.JobNumber))
		}
	}

	r.nextRes++
	res.ID = r.nextRes
	r.reservations[res.ID] = res

	var warnings []model.ShortageWarning
	for _, line := range lines {
		item, ok := r.items[line.ItemID]
		if !ok {
			return nil, nil, model.ErrItemNotFound
		}
		if item.AvailableQty() < line.Quantity {
			warnings = append(warnings, model.ShortageWarning{
				ItemID: item.ID, SKU: item.SKU, Item: item.Item,
				RequestedQty: line.Quantity, AvailableQty: item.AvailableQty(),
			})
		}
		r.commit(item, line.Quantity)
		r.nextLine++
		r.lines[res.ID] = append(r.lines[res.ID], &model.ReservationLine{
			ID: r.nextLine, ReservationID: res.ID, InventoryItemID: line.ItemID,
			RequestedQty: line.Quantity, CommittedQty: line.Quantity,
		})
	}

	detail, err := r.GetDetail(context.Background(), res.ID)
	return detail, warnings, err
}

func (r *fakeRepo) GetDetail(_ context.Context, id int64) (*dto.ReservationDetail, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	detail := &dto.ReservationDetail{Reservation: *res}
	for _, line := range r.lines[id] {
		item := r.items[line.InventoryItemID]
		detail.Lines = append(detail.Lines, dto.ReservationLineDetail{
			ID: line.ID, InventoryItemID: line.InventoryItemID,
			SKU: item.SKU, Item: item.Item, Location: item.Location,
			RequestedQty: line.RequestedQty, CommittedQty: line.CommittedQty,
			ConsumedQty: line.ConsumedQty, OnHand: item.Stock, AvailableQty: item.AvailableQty(),
		})
	}
	return detail, nil
}

func (r *fakeRepo) List(_ context.Context) ([]dto.ReservationSummary, error) {
	var out []dto.ReservationSummary
	for _, res := range r.reservations {
		s := dto.ReservationSummary{
			ID: res.ID, JobNumber: res.JobNumber, JobName: res.JobName,
			RequestedBy: res.RequestedBy, Status: res.Status, CreatedAt: res.CreatedAt,
		}
		for _, line := range r.lines[res.ID] {
			s.LineCount++
			s.TotalCommitted += line.CommittedQty
			s.TotalConsumed += line.ConsumedQty
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRepo) StartWork(_ context.Context, id int64) (*model.Reservation, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	if err := reservation.ValidateTransition(id, res.Status, model.ReservationStatusInProgress); err != nil {
		return nil, err
	}
	res.Status = model.ReservationStatusInProgress
	return res, nil
}

func (r *fakeRepo) Edit(_ context.Context, id int64, input *dto.EditInput) (*dto.EditResult, []model.ShortageWarning, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, nil, model.ErrReservationNotFound
	}
	if res.Status.Terminal() {
		return nil, nil, &model.TerminalStateError{Entity: "reservation", ID: id, Status: string(res.Status)}
	}

	result := &dto.EditResult{}
	var warnings []model.ShortageWarning
	for _, change := range input.Lines {
		var line *model.ReservationLine
		for _, l := range r.lines[id] {
			if l.ID == change.LineID {
				line = l
			}
		}
		if line == nil {
			return nil, nil, model.Invalid("lines", "unknown line")
		}
		if change.CommittedQty < 0 {
			return nil, nil, model.Invalid("committed_qty", "must not be negative")
		}
		delta := change.CommittedQty - line.CommittedQty
		item := r.items[line.InventoryItemID]
		if delta > 0 {
			if item.AvailableQty() < delta {
				warnings = append(warnings, model.ShortageWarning{ItemID: item.ID, RequestedQty: delta, AvailableQty: item.AvailableQty()})
			}
			result.TotalCommitted += delta
		} else if delta < 0 {
			result.TotalReleased += -delta
		}
		r.commit(item, delta)
		line.CommittedQty = change.CommittedQty
		result.LinesUpdated++
	}
	for _, nl := range input.NewLines {
		item, ok := r.items[nl.ItemID]
		if !ok {
			return nil, nil, model.ErrItemNotFound
		}
		if item.AvailableQty() < nl.Quantity {
			warnings = append(warnings, model.ShortageWarning{ItemID: item.ID, RequestedQty: nl.Quantity, AvailableQty: item.AvailableQty()})
		}
		r.commit(item, nl.Quantity)
		r.nextLine++
		r.lines[id] = append(r.lines[id], &model.ReservationLine{
			ID: r.nextLine, ReservationID: id, InventoryItemID: nl.ItemID,
			RequestedQty: nl.Quantity, CommittedQty: nl.Quantity,
		})
		result.LinesAdded++
		result.TotalCommitted += nl.Quantity
	}

	detail, _ := r.GetDetail(context.Background(), id)
	result.Detail = detail
	return result, warnings, nil
}

func (r *fakeRepo) Complete(_ context.Context, id int64, actuals map[int64]int64) (*dto.CompletionResult, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	if err := reservation.ValidateTransition(id, res.Status, model.ReservationStatusFulfilled); err != nil {
		return nil, err
	}

	lines := make([]model.ReservationLine, 0, len(r.lines[id]))
	for _, l := range r.lines[id] {
		lines = append(lines, *l)
	}
	plan, err := reservation.PlanCompletion(lines, actuals)
	if err != nil {
		return nil, err
	}

	for i, pl := range plan.Lines {
		item := r.items[pl.ItemID]
		r.commit(item, -pl.CommittedBefore)
		item.Stock -= pl.ConsumedDelta
		item.Status = model.DeriveStatus(item.AvailableQty(), item.ReorderPoint, item.Discontinued)
		r.lines[id][i].ConsumedQty = pl.ActualConsumed
		r.lines[id][i].CommittedQty = 0
	}
	res.Status = model.ReservationStatusFulfilled
	return &dto.CompletionResult{
		JobNumber: res.JobNumber, TotalConsumed: plan.TotalConsumed, TotalReleased: plan.TotalReleased,
	}, nil
}

func (r *fakeRepo) Cancel(_ context.Context, id int64) (*dto.CancellationResult, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, model.ErrReservationNotFound
	}
	if err := reservation.ValidateTransition(id, res.Status, model.ReservationStatusCancelled); err != nil {
		return nil, err
	}

	var released int64
	for _, line := range r.lines[id] {
		if line.CommittedQty > 0 {
			r.commit(r.items[line.InventoryItemID], -line.CommittedQty)
			released += line.CommittedQty
			line.CommittedQty = 0
		}
	}
	res.Status = model.ReservationStatusCancelled
	return &dto.CancellationResult{JobNumber: res.JobNumber, TotalReleased: released}, nil
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "error", Encoding: "console", DisableStacktrace: true})
}

func createInput() *dto.CreateInput {
	return &dto.CreateInput{
		JobNumber:   "J-2051",
		JobName:     "Walnut credenza",
		RequestedBy: "deb",
		Lines:       []dto.LineInput{{ItemID: 1, Quantity: 6}, {ItemID: 2, Quantity: 2}},
	}
}

func seededUseCase() (reservation.UseCase, *fakeRepo) {
	repo := newFakeRepo(
		&model.InventoryItem{ID: 1, Item: "Hinge 35mm", SKU: "HG-35-BL", Stock: 10, ReorderPoint: 2, Status: model.ItemStatusInStock},
		&model.InventoryItem{ID: 2, Item: "Drawer slide", SKU: "DS-450", Stock: 3, ReorderPoint: 1, Status: model.ItemStatusInStock},
	)
	return NewReservationUseCase(repo, nil, testLogger()), repo
}

func TestCreateCommitsLinesAndDerivesStatus(t *testing.T) {
	uc, repo := seededUseCase()

	detail, warnings, err := uc.Create(context.Background(), createInput())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, model.ReservationStatusActive, detail.Reservation.Status)
	require.Len(t, detail.Lines, 2)

	assert.Equal(t, int64(6), repo.items[1].CommittedQty)
	assert.Equal(t, int64(4), repo.items[1].AvailableQty())
	assert.Equal(t, int64(2), repo.items[2].CommittedQty)
	// Available dropped to 1 on item 2, at or below its reorder point.
	assert.Equal(t, model.ItemStatusLow, repo.items[2].Status)
}

func TestCreateOvercommitSucceedsWithWarning(t *testing.T) {
	uc, repo := seededUseCase()

	input := createInput()
	input.Lines = []dto.LineInput{{ItemID: 2, Quantity: 5}}
	detail, warnings, err := uc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(5), warnings[0].RequestedQty)
	assert.Equal(t, int64(3), warnings[0].AvailableQty)

	assert.Equal(t, int64(5), repo.items[2].CommittedQty)
	assert.Equal(t, int64(-2), repo.items[2].AvailableQty())
	assert.Equal(t, model.ItemStatusCritical, repo.items[2].Status)
	assert.NotNil(t, detail)
}

func TestCreateValidation(t *testing.T) {
	uc, _ := seededUseCase()
	var vErr *model.ValidationError

	bad := createInput()
	bad.JobNumber = ""
	_, _, err := uc.Create(context.Background(), bad)
	require.ErrorAs(t, err, &vErr)

	bad = createInput()
	bad.Lines = nil
	_, _, err = uc.Create(context.Background(), bad)
	require.ErrorAs(t, err, &vErr)

	bad = createInput()
	bad.Lines[0].Quantity = 0
	_, _, err = uc.Create(context.Background(), bad)
	require.ErrorAs(t, err, &vErr)

	bad = createInput()
	bad.NeededBy = "next tuesday"
	_, _, err = uc.Create(context.Background(), bad)
	require.ErrorAs(t, err, &vErr)
}

func TestStartWorkFlagsInsufficientItems(t *testing.T) {
	uc, repo := seededUseCase()

	input := createInput()
	input.Lines = []dto.LineInput{{ItemID: 2, Quantity: 5}}
	detail, _, err := uc.Create(context.Background(), input)
	require.NoError(t, err)

	result, err := uc.StartWork(context.Background(), detail.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusInProgress, result.Status)
	require.Len(t, result.InsufficientItems, 1)
	assert.Equal(t, int64(2), result.InsufficientItems[0].Shortage)

	assert.Equal(t, model.ReservationStatusInProgress, repo.reservations[detail.Reservation.ID].Status)
}

func TestCompleteDeductsStockAndReleasesRemainder(t *testing.T) {
	uc, repo := seededUseCase()

	detail, _, err := uc.Create(context.Background(), createInput())
	require.NoError(t, err)
	id := detail.Reservation.ID

	_, err = uc.StartWork(context.Background(), id)
	require.NoError(t, err)

	// Consume 4 of the 6 hinges, everything on the slides.
	result, err := uc.UpdateStatus(context.Background(), id, &dto.UpdateStatusInput{
		Status:         "fulfilled",
		ActualConsumed: map[int64]int64{detail.Lines[0].ID: 4},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Completion)
	assert.Equal(t, int64(6), result.Completion.TotalConsumed)
	assert.Equal(t, int64(2), result.Completion.TotalReleased)

	assert.Equal(t, int64(6), repo.items[1].Stock)
	assert.Equal(t, int64(0), repo.items[1].CommittedQty)
	assert.Equal(t, int64(1), repo.items[2].Stock)
	assert.Equal(t, int64(0), repo.items[2].CommittedQty)
	assert.Equal(t, model.ReservationStatusFulfilled, repo.reservations[id].Status)
}

func TestCompleteRequiresWorkInProgress(t *testing.T) {
	uc, _ := seededUseCase()
	detail, _, err := uc.Create(context.Background(), createInput())
	require.NoError(t, err)

	var vErr *model.ValidationError
	_, err = uc.Complete(context.Background(), detail.Reservation.ID, nil)
	require.ErrorAs(t, err, &vErr)
}

func TestCancelReleasesEverything(t *testing.T) {
	uc, repo := seededUseCase()
	detail, _, err := uc.Create(context.Background(), createInput())
	require.NoError(t, err)

	result, err := uc.Cancel(context.Background(), detail.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), result.TotalReleased)
	assert.Equal(t, int64(0), repo.items[1].CommittedQty)
	assert.Equal(t, int64(0), repo.items[2].CommittedQty)
	// Stock never moves on cancellation.
	assert.Equal(t, int64(10), repo.items[1].Stock)
}

func TestTerminalReservationRejectsFurtherChanges(t *testing.T) {
	uc, _ := seededUseCase()
	detail, _, err := uc.Create(context.Background(), createInput())
	require.NoError(t, err)
	id := detail.Reservation.ID

	_, err = uc.Cancel(context.Background(), id)
	require.NoError(t, err)

	var terminal *model.TerminalStateError
	_, _, err = uc.Edit(context.Background(), id, &dto.EditInput{})
	require.ErrorAs(t, err, &terminal)

	_, err = uc.Cancel(context.Background(), id)
	require.ErrorAs(t, err, &terminal)
}

func TestEditAdjustsCommitments(t *testing.T) {
	uc, repo := seededUseCase()
	detail, _, err := uc.Create(context.Background(), createInput())
	require.NoError(t, err)
	id := detail.Reservation.ID

	result, warnings, err := uc.Edit(context.Background(), id, &dto.EditInput{
		Lines: []dto.EditLineInput{
			{LineID: detail.Lines[0].ID, CommittedQty: 8},
			{LineID: detail.Lines[1].ID, CommittedQty: 1},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 2, result.LinesUpdated)
	assert.Equal(t, int64(2), result.TotalCommitted)
	assert.Equal(t, int64(1), result.TotalReleased)

	assert.Equal(t, int64(8), repo.items[1].CommittedQty)
	assert.Equal(t, int64(1), repo.items[2].CommittedQty)
}
