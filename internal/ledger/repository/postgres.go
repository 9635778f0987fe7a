package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/forgedesk/inventory-service/internal/ledger"
	"github.com/forgedesk/inventory-service/internal/ledger/dto"
	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const itemColumns = `id, item, sku, part_number, finish, location, stock, committed_qty, status,
	supplier_id, supplier_contact, supplier_sku, reorder_point, lead_time_days,
	safety_stock_qty, minimum_order_qty, order_multiple, pack_size,
	purchase_uom, stock_uom, discontinued, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetItem(ctx context.Context, id int64) (*model.InventoryItem, error) {
	var item model.InventoryItem
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1`
	if err := r.DB.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindItemBySKU(ctx context.Context, sku string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE sku = $1 LIMIT 1`
	if err := r.DB.GetContext(ctx, &item, query, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ResolveItemByIdentifier tries an exact SKU match, then the normalized
// part-number-plus-finish form, then an exact part number, then a name
// fragment.
func (r *PGRepository) ResolveItemByIdentifier(ctx context.Context, identifier string) (*model.InventoryItem, error) {
	item, err := r.FindItemBySKU(ctx, identifier)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, model.ErrItemNotFound) {
		return nil, err
	}

	// Legacy identifiers arrive with odd casing or stray dashes; recompose
	// them into canonical SKU form before falling back to looser matches.
	if part, finish := model.ParseSKU(identifier); part != "" {
		if composed := model.ComposeSKU(part, finish); composed != identifier {
			item, err = r.FindItemBySKU(ctx, composed)
			if err == nil {
				return item, nil
			}
			if !errors.Is(err, model.ErrItemNotFound) {
				return nil, err
			}
		}
	}

	var byPart model.InventoryItem
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE part_number = $1 ORDER BY id LIMIT 1`
	err = r.DB.GetContext(ctx, &byPart, query, identifier)
	if err == nil {
		return &byPart, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var byName model.InventoryItem
	query = `SELECT ` + itemColumns + ` FROM inventory_items WHERE item ILIKE '%' || $1 || '%' ORDER BY item LIMIT 1`
	err = r.DB.GetContext(ctx, &byName, query, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrItemNotFound
		}
		return nil, err
	}
	return &byName, nil
}

func (r *PGRepository) ListItems(ctx context.Context, f *dto.ItemFilters) ([]model.InventoryItem, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.Search != "" {
		conditions = append(conditions, "(item ILIKE :search OR sku ILIKE :search OR part_number ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM inventory_items" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT " + itemColumns + " FROM inventory_items" + whereClause + " ORDER BY item ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var items []model.InventoryItem
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) Summary(ctx context.Context) (*dto.StockSummary, error) {
	var s dto.StockSummary
	query := `SELECT count(*) AS item_count,
		COALESCE(SUM(stock), 0) AS total_stock,
		COALESCE(SUM(committed_qty), 0) AS total_committed,
		COALESCE(SUM(stock - committed_qty), 0) AS total_available
	FROM inventory_items`
	if err := r.DB.QueryRowxContext(ctx, query).Scan(&s.ItemCount, &s.TotalStock, &s.TotalCommitted, &s.TotalAvailable); err != nil {
		return nil, err
	}

	query = `SELECT count(*) FROM job_reservations WHERE status IN ('active', 'in_progress')`
	if err := r.DB.QueryRowxContext(ctx, query).Scan(&s.ActiveReservations); err != nil {
		return nil, err
	}
	return &s, nil
}

// AverageDailyUse is total issued quantity over the trailing window divided
// by the window length. Nil when the item has no issues in the window.
func (r *PGRepository) AverageDailyUse(ctx context.Context, itemID int64, windowDays int) (*float64, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	var avg sql.NullFloat64
	query := `SELECT (SUM(-tl.quantity_change)::float8 / $2)
	FROM inventory_transaction_lines tl
	JOIN inventory_transactions t ON t.id = tl.transaction_id
	WHERE tl.inventory_item_id = $1
	  AND tl.quantity_change < 0
	  AND t.created_at >= NOW() - make_interval(days => $2)`
	if err := r.DB.QueryRowxContext(ctx, query, itemID, windowDays).Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (r *PGRepository) ListTransactions(ctx context.Context, limit int) ([]dto.TransactionHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	var headers []model.InventoryTransaction
	query := `SELECT id, reference, notes, created_by, created_at
	FROM inventory_transactions ORDER BY created_at DESC, id DESC LIMIT $1`
	if err := r.DB.SelectContext(ctx, &headers, query, limit); err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return []dto.TransactionHistoryEntry{}, nil
	}

	ids := make([]int64, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}

	type lineRow struct {
		TransactionID   int64   `db:"transaction_id"`
		InventoryItemID int64   `db:"inventory_item_id"`
		SKU             string  `db:"sku"`
		Item            string  `db:"item"`
		QuantityChange  int64   `db:"quantity_change"`
		StockBefore     int64   `db:"stock_before"`
		StockAfter      int64   `db:"stock_after"`
		Note            *string `db:"note"`
	}

	lineQuery, args, err := sqlx.In(`SELECT tl.transaction_id, tl.inventory_item_id, i.sku, i.item,
		tl.quantity_change, tl.stock_before, tl.stock_after, tl.note
	FROM inventory_transaction_lines tl
	JOIN inventory_items i ON i.id = tl.inventory_item_id
	WHERE tl.transaction_id IN (?)
	ORDER BY tl.id ASC`, ids)
	if err != nil {
		return nil, err
	}
	lineQuery = r.DB.Rebind(lineQuery)

	var lineRows []lineRow
	if err := r.DB.SelectContext(ctx, &lineRows, lineQuery, args...); err != nil {
		return nil, err
	}

	byTxn := make(map[int64][]dto.TransactionHistoryLine, len(headers))
	for _, lr := range lineRows {
		byTxn[lr.TransactionID] = append(byTxn[lr.TransactionID], dto.TransactionHistoryLine{
			InventoryItemID: lr.InventoryItemID,
			SKU:             lr.SKU,
			Item:            lr.Item,
			QuantityChange:  lr.QuantityChange,
			StockBefore:     lr.StockBefore,
			StockAfter:      lr.StockAfter,
			Note:            lr.Note,
		})
	}

	entries := make([]dto.TransactionHistoryEntry, len(headers))
	for i, h := range headers {
		entries[i] = dto.TransactionHistoryEntry{
			ID:        h.ID,
			Reference: h.Reference,
			Notes:     h.Notes,
			CreatedBy: h.CreatedBy,
			CreatedAt: h.CreatedAt,
			Lines:     byTxn[h.ID],
		}
	}
	return entries, nil
}

func (r *PGRepository) RecordTransaction(ctx context.Context, txn *model.InventoryTransaction, lines []dto.TransactionLineInput) (*model.InventoryTransaction, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	seen := make(map[int64]bool, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ItemID] {
			seen[line.ItemID] = true
			ids = append(ids, line.ItemID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items, err := ItemsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	planned, err := ledger.PlanTransaction(items, lines)
	if err != nil {
		return nil, err
	}

	for _, p := range planned {
		if err := ApplyStockDelta(ctx, tx, items[p.ItemID], p.QuantityChange); err != nil {
			return nil, err
		}
	}

	txn.Lines = make([]model.InventoryTransactionLine, len(planned))
	for i, p := range planned {
		txn.Lines[i] = model.InventoryTransactionLine{
			InventoryItemID: p.ItemID,
			QuantityChange:  p.QuantityChange,
			StockBefore:     p.StockBefore,
			StockAfter:      p.StockAfter,
			Note:            p.Note,
		}
	}
	if err := InsertTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *PGRepository) AdjustCommitted(ctx context.Context, itemID int64, delta int64) (*model.InventoryItem, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	items, err := ItemsForUpdate(ctx, tx, []int64{itemID})
	if err != nil {
		return nil, err
	}
	item, ok := items[itemID]
	if !ok {
		return nil, model.ErrItemNotFound
	}

	if err := ApplyCommitDelta(ctx, tx, item, delta); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return item, nil
}

// ItemsForUpdate locks the given item rows in ascending id order and returns
// them keyed by id. Missing ids are simply absent from the map.
func ItemsForUpdate(ctx context.Context, tx *sqlx.Tx, ids []int64) (map[int64]*model.InventoryItem, error) {
	if len(ids) == 0 {
		return map[int64]*model.InventoryItem{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM inventory_items WHERE id IN (?) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	var rows []model.InventoryItem
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	items := make(map[int64]*model.InventoryItem, len(rows))
	for i := range rows {
		items[rows[i].ID] = &rows[i]
	}
	return items, nil
}

// ApplyStockDelta moves on-hand stock and refreshes the derived status. The
// caller must hold the row lock.
func ApplyStockDelta(ctx context.Context, tx *sqlx.Tx, item *model.InventoryItem, delta int64) error {
	item.Stock += delta
	item.Status = model.DeriveStatus(item.AvailableQty(), item.ReorderPoint, item.Discontinued)

	_, err := tx.ExecContext(ctx,
		`UPDATE inventory_items SET stock = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		item.Stock, item.Status, item.ID)
	if err != nil {
		return fmt.Errorf("apply stock delta to item %d: %w", item.ID, err)
	}
	return nil
}

// ApplyCommitDelta moves the commitment level and refreshes the derived
// status. Commitment never goes below zero.
func ApplyCommitDelta(ctx context.Context, tx *sqlx.Tx, item *model.InventoryItem, delta int64) error {
	item.CommittedQty += delta
	if item.CommittedQty < 0 {
		item.CommittedQty = 0
	}
	item.Status = model.DeriveStatus(item.AvailableQty(), item.ReorderPoint, item.Discontinued)

	_, err := tx.ExecContext(ctx,
		`UPDATE inventory_items SET committed_qty = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		item.CommittedQty, item.Status, item.ID)
	if err != nil {
		return fmt.Errorf("apply commit delta to item %d: %w", item.ID, err)
	}
	return nil
}

// InsertTransaction writes the immutable transaction header and its lines,
// filling generated ids and timestamps.
func InsertTransaction(ctx context.Context, tx *sqlx.Tx, txn *model.InventoryTransaction) error {
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO inventory_transactions (reference, notes, created_by)
		VALUES ($1, $2, $3) RETURNING id, created_at`,
		txn.Reference, txn.Notes, txn.CreatedBy).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	for i := range txn.Lines {
		line := &txn.Lines[i]
		line.TransactionID = txn.ID
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO inventory_transaction_lines
				(transaction_id, inventory_item_id, quantity_change, stock_before, stock_after, note)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			line.TransactionID, line.InventoryItemID, line.QuantityChange,
			line.StockBefore, line.StockAfter, line.Note).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("insert transaction line: %w", err)
		}
	}
	return nil
}
