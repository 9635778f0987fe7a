package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	ledgerpg "github.com/forgedesk/inventory-service/internal/ledger/repository"
	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/purchasing"
	"github.com/forgedesk/inventory-service/internal/purchasing/dto"
)

const lineColumns = `id, purchase_order_id, inventory_item_id, supplier_sku, description,
	quantity_ordered, quantity_received, quantity_cancelled, unit_cost, pack_size,
	purchase_uom, stock_uom, expected_date, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateSupplier(ctx context.Context, s *model.Supplier) error {
	err := r.DB.QueryRowxContext(ctx,
		`INSERT INTO suppliers (name, contact_name, contact_email, contact_phone, default_lead_time_days, notes)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		s.Name, s.ContactName, s.ContactEmail, s.ContactPhone, s.DefaultLeadTimeDays, s.Notes).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *PGRepository) GetSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	var s model.Supplier
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSupplierNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.DB.SelectContext(ctx, &suppliers, `SELECT * FROM suppliers ORDER BY name ASC`)
	return suppliers, err
}

func (r *PGRepository) CreatePurchaseOrder(ctx context.Context, po *model.PurchaseOrder, lines []dto.LineInput) (*model.PurchaseOrder, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO purchase_orders (order_number, supplier_id, status, order_date, expected_date, total_cost, notes)
		VALUES ($1, $2, $3, $4, $5, 0, $6) RETURNING id, created_at, updated_at`,
		po.OrderNumber, po.SupplierID, po.Status, po.OrderDate, po.ExpectedDate, po.Notes).
		Scan(&po.ID, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	for i, line := range lines {
		expected, err := parseDate(line.ExpectedDate, fmt.Sprintf("lines[%d].expected_date", i))
		if err != nil {
			return nil, err
		}
		if err := insertLine(ctx, tx, po.ID, &line, expected); err != nil {
			return nil, err
		}
	}

	if err := recomputeTotalCost(ctx, tx, po.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetPurchaseOrder(ctx, po.ID)
}

func (r *PGRepository) GetPurchaseOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.DB.GetContext(ctx, &po,
		`SELECT po.id, po.order_number, po.supplier_id, s.name AS supplier_name, po.status,
			po.order_date, po.expected_date, po.total_cost, po.notes, po.created_at, po.updated_at
		FROM purchase_orders po
		LEFT JOIN suppliers s ON s.id = po.supplier_id
		WHERE po.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPurchaseOrderNotFound
		}
		return nil, err
	}

	err = r.DB.SelectContext(ctx, &po.Lines,
		`SELECT `+lineColumns+` FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PGRepository) UpdatePurchaseOrder(ctx context.Context, id int64, input *dto.UpdateOrderInput) (*model.PurchaseOrder, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	po, err := orderForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if po.Status.Terminal() {
		return nil, &model.TerminalStateError{Entity: "purchase order", ID: id, Status: string(po.Status)}
	}

	if err := patchOrder(po, input); err != nil {
		return nil, err
	}
	_, err = tx.NamedExecContext(ctx,
		`UPDATE purchase_orders
		SET order_number = :order_number, supplier_id = :supplier_id, status = :status,
			order_date = :order_date, expected_date = :expected_date, notes = :notes, updated_at = NOW()
		WHERE id = :id`, po)
	if err != nil {
		return nil, fmt.Errorf("update purchase order: %w", err)
	}

	for i, line := range input.Lines {
		expected, err := parseDate(line.ExpectedDate, fmt.Sprintf("lines[%d].expected_date", i))
		if err != nil {
			return nil, err
		}
		if line.ID == 0 {
			if err := insertLine(ctx, tx, id, &line.LineInput, expected); err != nil {
				return nil, err
			}
			continue
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE purchase_order_lines
			SET inventory_item_id = $1, supplier_sku = $2, description = $3, quantity_ordered = $4,
				unit_cost = $5, pack_size = $6, purchase_uom = $7, stock_uom = $8,
				expected_date = $9, updated_at = NOW()
			WHERE id = $10 AND purchase_order_id = $11`,
			line.InventoryItemID, nullable(line.SupplierSKU), line.Description, line.QuantityOrdered,
			line.UnitCost, line.PackSize, nullable(line.PurchaseUOM), line.StockUOM,
			expected, line.ID, id)
		if err != nil {
			return nil, fmt.Errorf("update purchase order line: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, model.Invalid("lines", fmt.Sprintf("line %d is not on this purchase order", line.ID))
		}
	}

	if len(input.DeleteLines) > 0 {
		query, args, err := sqlx.In(
			`DELETE FROM purchase_order_lines
			WHERE purchase_order_id = ? AND id IN (?) AND quantity_received = 0 AND quantity_cancelled = 0`,
			id, input.DeleteLines)
		if err != nil {
			return nil, err
		}
		query = tx.Rebind(query)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("delete purchase order lines: %w", err)
		}
		if n, _ := res.RowsAffected(); n != int64(len(input.DeleteLines)) {
			return nil, model.Invalid("delete_lines", "lines with receipts recorded cannot be deleted")
		}
	}

	if err := recomputeTotalCost(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetPurchaseOrder(ctx, id)
}

func (r *PGRepository) ListOpen(ctx context.Context) ([]dto.OpenOrderSummary, error) {
	var orders []dto.OpenOrderSummary
	err := r.DB.SelectContext(ctx, &orders,
		`SELECT po.id, po.order_number, s.name AS supplier_name, po.status, po.expected_date, po.total_cost,
			COUNT(pol.id) AS line_count,
			COALESCE(SUM(GREATEST(pol.quantity_ordered - pol.quantity_received - pol.quantity_cancelled, 0)), 0) AS outstanding
		FROM purchase_orders po
		LEFT JOIN suppliers s ON s.id = po.supplier_id
		LEFT JOIN purchase_order_lines pol ON pol.purchase_order_id = po.id
		WHERE po.status IN ('sent', 'partially_received')
		GROUP BY po.id, s.name
		HAVING COALESCE(SUM(GREATEST(pol.quantity_ordered - pol.quantity_received - pol.quantity_cancelled, 0)), 0) > 0
		ORDER BY po.expected_date ASC NULLS LAST, po.id ASC`)
	return orders, err
}

func (r *PGRepository) RecordReceipt(ctx context.Context, poID int64, changes map[int64]purchasing.ReceiptChange, meta purchasing.ReceiptMeta) (*dto.ReceiptResult, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	po, err := orderForUpdate(ctx, tx, poID)
	if err != nil {
		return nil, err
	}
	if po.Status.Terminal() {
		return nil, &model.TerminalStateError{Entity: "purchase order", ID: poID, Status: string(po.Status)}
	}

	var lines []model.PurchaseOrderLine
	err = tx.SelectContext(ctx, &lines,
		`SELECT `+lineColumns+` FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY id FOR UPDATE`, poID)
	if err != nil {
		return nil, err
	}

	plan, err := purchasing.PlanReceipt(lines, changes)
	if err != nil {
		return nil, err
	}

	for _, pl := range plan.Lines {
		_, err = tx.ExecContext(ctx,
			`UPDATE purchase_order_lines SET quantity_received = $1, quantity_cancelled = $2, updated_at = NOW() WHERE id = $3`,
			pl.NewReceived, pl.NewCancelled, pl.LineID)
		if err != nil {
			return nil, fmt.Errorf("update purchase order line: %w", err)
		}
	}

	// Stock movements aggregate per item in eaches.
	stockByItem := map[int64]int64{}
	for _, pl := range plan.Lines {
		if pl.ItemID != nil && pl.StockQtyEach > 0 {
			stockByItem[*pl.ItemID] += pl.StockQtyEach
		}
	}

	var txnID *int64
	if len(stockByItem) > 0 {
		itemIDs := make([]int64, 0, len(stockByItem))
		for id := range stockByItem {
			itemIDs = append(itemIDs, id)
		}
		sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

		items, err := ledgerpg.ItemsForUpdate(ctx, tx, itemIDs)
		if err != nil {
			return nil, err
		}

		txn := &model.InventoryTransaction{Reference: meta.Reference}
		if meta.Notes != "" {
			txn.Notes = &meta.Notes
		}
		if meta.ReceivedBy != "" {
			txn.CreatedBy = &meta.ReceivedBy
		}
		for _, itemID := range itemIDs {
			item, ok := items[itemID]
			if !ok {
				return nil, fmt.Errorf("item %d: %w", itemID, model.ErrItemNotFound)
			}
			qty := stockByItem[itemID]
			before := item.Stock
			if err := ledgerpg.ApplyStockDelta(ctx, tx, item, qty); err != nil {
				return nil, err
			}
			txn.Lines = append(txn.Lines, model.InventoryTransactionLine{
				InventoryItemID: itemID,
				QuantityChange:  qty,
				StockBefore:     before,
				StockAfter:      item.Stock,
			})
		}
		if err := ledgerpg.InsertTransaction(ctx, tx, txn); err != nil {
			return nil, err
		}
		txnID = &txn.ID
	}

	receipt := &model.Receipt{
		PurchaseOrderID:        poID,
		InventoryTransactionID: txnID,
		Reference:              meta.Reference,
	}
	if meta.Notes != "" {
		receipt.Notes = &meta.Notes
	}
	if meta.ReceivedBy != "" {
		receipt.ReceivedBy = &meta.ReceivedBy
	}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO purchase_order_receipts (purchase_order_id, inventory_transaction_id, reference, notes, received_by)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		receipt.PurchaseOrderID, receipt.InventoryTransactionID, receipt.Reference, receipt.Notes, receipt.ReceivedBy).
		Scan(&receipt.ID, &receipt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert receipt: %w", err)
	}

	result := &dto.ReceiptResult{
		ReceiptID:              receipt.ID,
		InventoryTransactionID: txnID,
		Reference:              receipt.Reference,
		TotalReceived:          plan.TotalReceived,
		TotalCancelled:         plan.TotalCancelled,
		Status:                 po.Status,
	}
	for _, pl := range plan.Lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO purchase_order_receipt_lines (receipt_id, purchase_order_line_id, quantity_received, quantity_cancelled)
			VALUES ($1, $2, $3, $4)`,
			receipt.ID, pl.LineID, pl.Receive, pl.Cancel)
		if err != nil {
			return nil, fmt.Errorf("insert receipt line: %w", err)
		}
		result.Lines = append(result.Lines, dto.ReceiptResultLine{
			LineID:       pl.LineID,
			Description:  pl.Description,
			Received:     pl.Receive,
			Cancelled:    pl.Cancel,
			NewReceived:  pl.NewReceived,
			NewCancelled: pl.NewCancelled,
			StockQtyEach: pl.StockQtyEach,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PGRepository) RecalculateStatus(ctx context.Context, poID int64) (model.PurchaseOrderStatus, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	po, err := orderForUpdate(ctx, tx, poID)
	if err != nil {
		return "", err
	}

	var totals struct {
		Outstanding    decimal.Decimal `db:"outstanding"`
		TotalReceived  decimal.Decimal `db:"total_received"`
		TotalOrdered   decimal.Decimal `db:"total_ordered"`
		TotalCancelled decimal.Decimal `db:"total_cancelled"`
	}
	err = tx.GetContext(ctx, &totals,
		`SELECT
			COALESCE(SUM(GREATEST(quantity_ordered - quantity_received - quantity_cancelled, 0)), 0) AS outstanding,
			COALESCE(SUM(quantity_received), 0) AS total_received,
			COALESCE(SUM(quantity_ordered), 0) AS total_ordered,
			COALESCE(SUM(quantity_cancelled), 0) AS total_cancelled
		FROM purchase_order_lines WHERE purchase_order_id = $1`, poID)
	if err != nil {
		return "", err
	}

	status := purchasing.DeriveOrderStatus(totals.TotalOrdered, totals.TotalReceived, totals.TotalCancelled, totals.Outstanding)
	if status != po.Status {
		_, err = tx.ExecContext(ctx,
			`UPDATE purchase_orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, poID)
		if err != nil {
			return "", fmt.Errorf("update purchase order status: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return status, nil
}

func (r *PGRepository) ReceiptHistory(ctx context.Context, poID int64) ([]model.Receipt, error) {
	var receipts []model.Receipt
	err := r.DB.SelectContext(ctx, &receipts,
		`SELECT id, purchase_order_id, inventory_transaction_id, reference, notes, received_by, created_at
		FROM purchase_order_receipts WHERE purchase_order_id = $1 ORDER BY created_at DESC, id DESC`, poID)
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return receipts, nil
	}

	ids := make([]int64, len(receipts))
	byID := make(map[int64]*model.Receipt, len(receipts))
	for i := range receipts {
		ids[i] = receipts[i].ID
		byID[receipts[i].ID] = &receipts[i]
	}

	query, args, err := sqlx.In(
		`SELECT id, receipt_id, purchase_order_line_id, quantity_received, quantity_cancelled
		FROM purchase_order_receipt_lines WHERE receipt_id IN (?) ORDER BY id ASC`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var lines []model.ReceiptLine
	if err := r.DB.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, err
	}
	for _, line := range lines {
		receipt := byID[line.ReceiptID]
		receipt.Lines = append(receipt.Lines, line)
	}
	return receipts, nil
}

func (r *PGRepository) RecentReceipts(ctx context.Context, limit int) ([]dto.ReceiptSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	var summaries []dto.ReceiptSummary
	err := r.DB.SelectContext(ctx, &summaries,
		`SELECT rc.id, rc.purchase_order_id, po.order_number, rc.reference, rc.received_by, rc.created_at,
			COUNT(rcl.id) AS line_count,
			COALESCE(SUM(rcl.quantity_received), 0) AS total_received
		FROM purchase_order_receipts rc
		JOIN purchase_orders po ON po.id = rc.purchase_order_id
		LEFT JOIN purchase_order_receipt_lines rcl ON rcl.receipt_id = rc.id
		GROUP BY rc.id, po.order_number
		ORDER BY rc.created_at DESC, rc.id DESC
		LIMIT $1`, limit)
	return summaries, err
}

func (r *PGRepository) OutstandingByItem(ctx context.Context) (map[int64]decimal.Decimal, error) {
	type row struct {
		InventoryItemID int64           `db:"inventory_item_id"`
		OnOrder         decimal.Decimal `db:"on_order"`
	}
	var rows []row
	err := r.DB.SelectContext(ctx, &rows,
		`SELECT pol.inventory_item_id,
			COALESCE(SUM(GREATEST(pol.quantity_ordered - pol.quantity_received - pol.quantity_cancelled, 0)
				* CASE WHEN pol.pack_size > 0 THEN pol.pack_size ELSE 1 END), 0) AS on_order
		FROM purchase_order_lines pol
		JOIN purchase_orders po ON po.id = pol.purchase_order_id
		WHERE po.status IN ('draft', 'sent', 'partially_received')
		  AND pol.inventory_item_id IS NOT NULL
		GROUP BY pol.inventory_item_id`)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.InventoryItemID] = r.OnOrder
	}
	return out, nil
}

func orderForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := tx.GetContext(ctx, &po,
		`SELECT id, order_number, supplier_id, status, order_date, expected_date, total_cost, notes, created_at, updated_at
		FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPurchaseOrderNotFound
		}
		return nil, err
	}
	return &po, nil
}

func insertLine(ctx context.Context, tx *sqlx.Tx, poID int64, line *dto.LineInput, expected *time.Time) error {
	if line.Description == "" {
		return model.Invalid("description", "is required on every line")
	}
	if line.QuantityOrdered.IsNegative() {
		return model.Invalid("quantity_ordered", "must not be negative")
	}

	stockUOM := line.StockUOM
	if stockUOM == "" {
		stockUOM = "each"
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO purchase_order_lines
			(purchase_order_id, inventory_item_id, supplier_sku, description, quantity_ordered,
			quantity_received, quantity_cancelled, unit_cost, pack_size, purchase_uom, stock_uom, expected_date)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7, $8, $9, $10)`,
		poID, line.InventoryItemID, nullable(line.SupplierSKU), line.Description, line.QuantityOrdered,
		line.UnitCost, line.PackSize, nullable(line.PurchaseUOM), stockUOM, expected)
	if err != nil {
		return fmt.Errorf("insert purchase order line: %w", err)
	}
	return nil
}

func recomputeTotalCost(ctx context.Context, tx *sqlx.Tx, poID int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE purchase_orders
		SET total_cost = COALESCE((
			SELECT SUM(quantity_ordered * unit_cost) FROM purchase_order_lines WHERE purchase_order_id = $1
		), 0), updated_at = NOW()
		WHERE id = $1`, poID)
	if err != nil {
		return fmt.Errorf("recompute total cost: %w", err)
	}
	return nil
}

func patchOrder(po *model.PurchaseOrder, input *dto.UpdateOrderInput) error {
	if input.OrderNumber != nil {
		if *input.OrderNumber == "" {
			po.OrderNumber = nil
		} else {
			po.OrderNumber = input.OrderNumber
		}
	}
	if input.SupplierID != nil {
		if *input.SupplierID == 0 {
			po.SupplierID = nil
		} else {
			po.SupplierID = input.SupplierID
		}
	}
	if input.Status != nil {
		status := model.PurchaseOrderStatus(*input.Status)
		if !status.Valid() {
			return model.Invalid("status", fmt.Sprintf("unknown status %q", *input.Status))
		}
		po.Status = status
	}
	if input.OrderDate != nil {
		parsed, err := parseDate(*input.OrderDate, "order_date")
		if err != nil {
			return err
		}
		po.OrderDate = parsed
	}
	if input.ExpectedDate != nil {
		parsed, err := parseDate(*input.ExpectedDate, "expected_date")
		if err != nil {
			return err
		}
		po.ExpectedDate = parsed
	}
	if input.Notes != nil {
		if *input.Notes == "" {
			po.Notes = nil
		} else {
			po.Notes = input.Notes
		}
	}
	return nil
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

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
