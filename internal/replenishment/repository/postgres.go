package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/replenishment"
)

// OnOrderSource reports outstanding open purchase order quantity per item,
// in stock eaches.
type OnOrderSource interface {
	OutstandingByItem(ctx context.Context) (map[int64]decimal.Decimal, error)
}

type PGRepository struct {
	DB      *sqlx.DB
	onOrder OnOrderSource
}

func NewPGRepository(db *sqlx.DB, onOrder OnOrderSource) *PGRepository {
	return &PGRepository{DB: db, onOrder: onOrder}
}

type snapshotRow struct {
	ItemID          int64            `db:"item_id"`
	SKU             string           `db:"sku"`
	Item            string           `db:"item"`
	Location        string           `db:"location"`
	Status          model.ItemStatus `db:"status"`
	Stock           int64            `db:"stock"`
	CommittedQty    int64            `db:"committed_qty"`
	ReorderPoint    int64            `db:"reorder_point"`
	SupplierID      *int64           `db:"supplier_id"`
	SupplierName    *string          `db:"supplier_name"`
	SupplierSKU     *string          `db:"supplier_sku"`
	AverageDailyUse sql.NullFloat64  `db:"average_daily_use"`
	LeadTimeDays    int              `db:"lead_time_days"`
	SafetyStockQty  float64          `db:"safety_stock_qty"`
	MinimumOrderQty float64          `db:"minimum_order_qty"`
	OrderMultiple   float64          `db:"order_multiple"`
	PackSize        float64          `db:"pack_size"`
}

// Snapshot joins the ledger, supplier and trailing usage state into one read
// and folds in open purchase order coverage. Discontinued items are excluded;
// they are never reordered.
func (r *PGRepository) Snapshot(ctx context.Context, windowDays int) ([]replenishment.ItemPlan, error) {
	if windowDays <= 0 {
		windowDays = 30
	}

	query := `SELECT
		i.id AS item_id,
		i.sku,
		i.item,
		i.location,
		i.status,
		i.stock,
		i.committed_qty,
		i.reorder_point,
		i.supplier_id,
		COALESCE(s.name, i.supplier_contact) AS supplier_name,
		i.supplier_sku,
		u.average_daily_use,
		i.lead_time_days,
		i.safety_stock_qty,
		i.minimum_order_qty,
		i.order_multiple,
		i.pack_size
	FROM inventory_items i
	LEFT JOIN suppliers s ON s.id = i.supplier_id
	LEFT JOIN LATERAL (
		SELECT (SUM(-tl.quantity_change)::float8 / $1) AS average_daily_use
		FROM inventory_transaction_lines tl
		JOIN inventory_transactions t ON t.id = tl.transaction_id
		WHERE tl.inventory_item_id = i.id
		  AND tl.quantity_change < 0
		  AND t.created_at >= NOW() - make_interval(days => $1)
	) u ON TRUE
	WHERE NOT i.discontinued
	ORDER BY i.sku ASC`

	var rows []snapshotRow
	if err := r.DB.SelectContext(ctx, &rows, query, windowDays); err != nil {
		return nil, err
	}

	onOrder, err := r.onOrder.OutstandingByItem(ctx)
	if err != nil {
		return nil, err
	}

	plans := make([]replenishment.ItemPlan, 0, len(rows))
	for _, row := range rows {
		plan := replenishment.ItemPlan{
			ItemID:          row.ItemID,
			SKU:             row.SKU,
			Item:            row.Item,
			Location:        row.Location,
			Status:          row.Status,
			Stock:           row.Stock,
			CommittedQty:    row.CommittedQty,
			AvailableQty:    row.Stock - row.CommittedQty,
			ReorderPoint:    row.ReorderPoint,
			SupplierID:      row.SupplierID,
			SupplierName:    row.SupplierName,
			SupplierSKU:     row.SupplierSKU,
			LeadTimeDays:    row.LeadTimeDays,
			SafetyStockQty:  row.SafetyStockQty,
			MinimumOrderQty: row.MinimumOrderQty,
			OrderMultiple:   row.OrderMultiple,
			PackSize:        row.PackSize,
		}
		if row.AverageDailyUse.Valid {
			adu := row.AverageDailyUse.Float64
			plan.AverageDailyUse = &adu
		}
		if qty, ok := onOrder[row.ItemID]; ok {
			plan.OnOrderQty, _ = qty.Float64()
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
