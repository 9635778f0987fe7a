package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	ledgerpg "github.com/forgedesk/inventory-service/internal/ledger/repository"
	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/reservation"
	"github.com/forgedesk/inventory-service/internal/reservation/dto"
)

const pgUniqueViolation = "23505"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, res *model.Reservation, lines []dto.LineInput) (*dto.ReservationDetail, []model.ShortageWarning, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO job_reservations (job_number, job_name, requested_by, needed_by, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		res.JobNumber, res.JobName, res.RequestedBy, res.NeededBy, res.Notes, res.Status).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, nil, model.Invalid("job_number", fmt.Sprintf("%q is already reserved", res.JobNumber))
		}
		return nil, nil, fmt.Errorf("insert reservation: %w", err)
	}

	items, err := ledgerpg.ItemsForUpdate(ctx, tx, lineItemIDs(lines))
	if err != nil {
		return nil, nil, err
	}

	var warnings []model.ShortageWarning
	for _, line := range lines {
		item, ok := items[line.ItemID]
		if !ok {
			return nil, nil, fmt.Errorf("item %d: %w", line.ItemID, model.ErrItemNotFound)
		}

		if item.AvailableQty() < line.Quantity {
			warnings = append(warnings, shortageWarning(item, line.Quantity))
		}
		if err := ledgerpg.ApplyCommitDelta(ctx, tx, item, line.Quantity); err != nil {
			return nil, nil, err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO job_reservation_lines (reservation_id, inventory_item_id, requested_qty, committed_qty, consumed_qty)
			VALUES ($1, $2, $3, $4, 0)`,
			res.ID, line.ItemID, line.Quantity, line.Quantity)
		if err != nil {
			return nil, nil, fmt.Errorf("insert reservation line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	detail, err := r.GetDetail(ctx, res.ID)
	return detail, warnings, err
}

func (r *PGRepository) GetDetail(ctx context.Context, id int64) (*dto.ReservationDetail, error) {
	var res model.Reservation
	err := r.DB.GetContext(ctx, &res,
		`SELECT id, job_number, job_name, requested_by, needed_by, notes, status, created_at, updated_at
		FROM job_reservations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrReservationNotFound
		}
		return nil, err
	}

	var lines []dto.ReservationLineDetail
	err = r.DB.SelectContext(ctx, &lines,
		`SELECT rl.id, rl.inventory_item_id, i.sku, i.item, i.location,
			rl.requested_qty, rl.committed_qty, rl.consumed_qty,
			i.stock AS on_hand, (i.stock - i.committed_qty) AS available_qty
		FROM job_reservation_lines rl
		JOIN inventory_items i ON i.id = rl.inventory_item_id
		WHERE rl.reservation_id = $1
		ORDER BY rl.id ASC`, id)
	if err != nil {
		return nil, err
	}

	return &dto.ReservationDetail{Reservation: res, Lines: lines}, nil
}

func (r *PGRepository) List(ctx context.Context) ([]dto.ReservationSummary, error) {
	var summaries []dto.ReservationSummary
	err := r.DB.SelectContext(ctx, &summaries,
		`SELECT r.id, r.job_number, r.job_name, r.requested_by, r.needed_by, r.status, r.created_at,
			COUNT(rl.id) AS line_count,
			COALESCE(SUM(rl.committed_qty), 0) AS total_committed,
			COALESCE(SUM(rl.consumed_qty), 0) AS total_consumed
		FROM job_reservations r
		LEFT JOIN job_reservation_lines rl ON rl.reservation_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *PGRepository) StartWork(ctx context.Context, id int64) (*model.Reservation, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := reservationForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := reservation.ValidateTransition(id, res.Status, model.ReservationStatusInProgress); err != nil {
		return nil, err
	}

	res.Status = model.ReservationStatusInProgress
	if err := updateStatus(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *PGRepository) Edit(ctx context.Context, id int64, input *dto.EditInput) (*dto.EditResult, []model.ShortageWarning, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	res, err := reservationForUpdate(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if res.Status.Terminal() {
		return nil, nil, &model.TerminalStateError{Entity: "reservation", ID: id, Status: string(res.Status)}
	}

	if err := patchHeader(res, input); err != nil {
		return nil, nil, err
	}

	lines, err := linesForUpdate(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	lineByID := make(map[int64]*model.ReservationLine, len(lines))
	for i := range lines {
		lineByID[lines[i].ID] = &lines[i]
	}

	itemIDs := make([]int64, 0, len(input.Lines)+len(input.NewLines))
	for _, change := range input.Lines {
		line, ok := lineByID[change.LineID]
		if !ok {
			return nil, nil, model.Invalid("lines", fmt.Sprintf("line %d is not on this reservation", change.LineID))
		}
		if change.CommittedQty < 0 {
			return nil, nil, model.Invalid(fmt.Sprintf("lines[%d].committed_qty", change.LineID), "must not be negative")
		}
		itemIDs = append(itemIDs, line.InventoryItemID)
	}
	for i, nl := range input.NewLines {
		if nl.Quantity <= 0 {
			return nil, nil, model.Invalid(fmt.Sprintf("new_lines[%d].quantity", i), "must be positive")
		}
		itemIDs = append(itemIDs, nl.ItemID)
	}

	items, err := ledgerpg.ItemsForUpdate(ctx, tx, dedupeSorted(itemIDs))
	if err != nil {
		return nil, nil, err
	}

	result := &dto.EditResult{}
	var warnings []model.ShortageWarning

	for _, change := range input.Lines {
		line := lineByID[change.LineID]
		delta := change.CommittedQty - line.CommittedQty
		if delta == 0 {
			continue
		}
		item := items[line.InventoryItemID]

		if delta > 0 {
			if item.AvailableQty() < delta {
				warnings = append(warnings, shortageWarning(item, delta))
			}
			result.TotalCommitted += delta
		} else {
			result.TotalReleased += -delta
		}
		if err := ledgerpg.ApplyCommitDelta(ctx, tx, item, delta); err != nil {
			return nil, nil, err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE job_reservation_lines SET committed_qty = $1 WHERE id = $2`,
			change.CommittedQty, line.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("update reservation line: %w", err)
		}
		result.LinesUpdated++
	}

	for _, nl := range input.NewLines {
		item, ok := items[nl.ItemID]
		if !ok {
			return nil, nil, fmt.Errorf("item %d: %w", nl.ItemID, model.ErrItemNotFound)
		}
		if item.AvailableQty() < nl.Quantity {
			warnings = append(warnings, shortageWarning(item, nl.Quantity))
		}
		if err := ledgerpg.ApplyCommitDelta(ctx, tx, item, nl.Quantity); err != nil {
			return nil, nil, err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO job_reservation_lines (reservation_id, inventory_item_id, requested_qty, committed_qty, consumed_qty)
			VALUES ($1, $2, $3, $4, 0)`,
			id, nl.ItemID, nl.Quantity, nl.Quantity)
		if err != nil {
			return nil, nil, fmt.Errorf("insert reservation line: %w", err)
		}
		result.LinesAdded++
		result.TotalCommitted += nl.Quantity
	}

	if err := updateStatus(ctx, tx, res); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	detail, err := r.GetDetail(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	result.Detail = detail
	return result, warnings, nil
}

func (r *PGRepository) Complete(ctx context.Context, id int64, actuals map[int64]int64) (*dto.CompletionResult, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := reservationForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := reservation.ValidateTransition(id, res.Status, model.ReservationStatusFulfilled); err != nil {
		return nil, err
	}

	lines, err := linesForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	plan, err := reservation.PlanCompletion(lines, actuals)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]int64, 0, len(plan.Lines))
	for _, pl := range plan.Lines {
		itemIDs = append(itemIDs, pl.ItemID)
	}
	items, err := ledgerpg.ItemsForUpdate(ctx, tx, dedupeSorted(itemIDs))
	if err != nil {
		return nil, err
	}

	txn := &model.InventoryTransaction{
		Reference: fmt.Sprintf("Job %s completion", res.JobNumber),
	}

	for _, pl := range plan.Lines {
		item := items[pl.ItemID]

		if err := ledgerpg.ApplyCommitDelta(ctx, tx, item, -pl.CommittedBefore); err != nil {
			return nil, err
		}
		if pl.ConsumedDelta > 0 {
			before := item.Stock
			if err := ledgerpg.ApplyStockDelta(ctx, tx, item, -pl.ConsumedDelta); err != nil {
				return nil, err
			}
			txn.Lines = append(txn.Lines, model.InventoryTransactionLine{
				InventoryItemID: item.ID,
				QuantityChange:  -pl.ConsumedDelta,
				StockBefore:     before,
				StockAfter:      item.Stock,
			})
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE job_reservation_lines SET consumed_qty = $1, committed_qty = 0 WHERE id = $2`,
			pl.ActualConsumed, pl.LineID)
		if err != nil {
			return nil, fmt.Errorf("update reservation line: %w", err)
		}
	}

	var txnID *int64
	if len(txn.Lines) > 0 {
		if err := ledgerpg.InsertTransaction(ctx, tx, txn); err != nil {
			return nil, err
		}
		txnID = &txn.ID
	}

	res.Status = model.ReservationStatusFulfilled
	if err := updateStatus(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &dto.CompletionResult{
		JobNumber:     res.JobNumber,
		TotalConsumed: plan.TotalConsumed,
		TotalReleased: plan.TotalReleased,
		TransactionID: txnID,
	}, nil
}

func (r *PGRepository) Cancel(ctx context.Context, id int64) (*dto.CancellationResult, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := reservationForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := reservation.ValidateTransition(id, res.Status, model.ReservationStatusCancelled); err != nil {
		return nil, err
	}

	lines, err := linesForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		if line.CommittedQty > 0 {
			itemIDs = append(itemIDs, line.InventoryItemID)
		}
	}
	items, err := ledgerpg.ItemsForUpdate(ctx, tx, dedupeSorted(itemIDs))
	if err != nil {
		return nil, err
	}

	var totalReleased int64
	for _, line := range lines {
		if line.CommittedQty == 0 {
			continue
		}
		item := items[line.InventoryItemID]
		if err := ledgerpg.ApplyCommitDelta(ctx, tx, item, -line.CommittedQty); err != nil {
			return nil, err
		}
		totalReleased += line.CommittedQty

		_, err = tx.ExecContext(ctx,
			`UPDATE job_reservation_lines SET committed_qty = 0 WHERE id = $1`, line.ID)
		if err != nil {
			return nil, fmt.Errorf("update reservation line: %w", err)
		}
	}

	res.Status = model.ReservationStatusCancelled
	if err := updateStatus(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &dto.CancellationResult{JobNumber: res.JobNumber, TotalReleased: totalReleased}, nil
}

func reservationForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Reservation, error) {
	var res model.Reservation
	err := tx.GetContext(ctx, &res,
		`SELECT id, job_number, job_name, requested_by, needed_by, notes, status, created_at, updated_at
		FROM job_reservations WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

func linesForUpdate(ctx context.Context, tx *sqlx.Tx, reservationID int64) ([]model.ReservationLine, error) {
	var lines []model.ReservationLine
	err := tx.SelectContext(ctx, &lines,
		`SELECT id, reservation_id, inventory_item_id, requested_qty, committed_qty, consumed_qty
		FROM job_reservation_lines WHERE reservation_id = $1 ORDER BY id FOR UPDATE`, reservationID)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func updateStatus(ctx context.Context, tx *sqlx.Tx, res *model.Reservation) error {
	_, err := tx.NamedExecContext(ctx,
		`UPDATE job_reservations
		SET job_name = :job_name, requested_by = :requested_by, needed_by = :needed_by,
			notes = :notes, status = :status, updated_at = NOW()
		WHERE id = :id`, res)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

func patchHeader(res *model.Reservation, input *dto.EditInput) error {
	if input.JobName != nil {
		if *input.JobName == "" {
			return model.Invalid("job_name", "must not be empty")
		}
		res.JobName = *input.JobName
	}
	if input.RequestedBy != nil {
		if *input.RequestedBy == "" {
			return model.Invalid("requested_by", "must not be empty")
		}
		res.RequestedBy = *input.RequestedBy
	}
	if input.NeededBy != nil {
		if *input.NeededBy == "" {
			res.NeededBy = nil
		} else {
			parsed, err := time.Parse("2006-01-02", *input.NeededBy)
			if err != nil {
				return model.Invalid("needed_by", "must be formatted YYYY-MM-DD")
			}
			res.NeededBy = &parsed
		}
	}
	if input.Notes != nil {
		if *input.Notes == "" {
			res.Notes = nil
		} else {
			res.Notes = input.Notes
		}
	}
	return nil
}

func shortageWarning(item *model.InventoryItem, requested int64) model.ShortageWarning {
	return model.ShortageWarning{
		ItemID:       item.ID,
		SKU:          item.SKU,
		Item:         item.Item,
		Location:     item.Location,
		RequestedQty: requested,
		AvailableQty: item.AvailableQty(),
	}
}

func lineItemIDs(lines []dto.LineInput) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	return dedupeSorted(ids)
}

func dedupeSorted(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
