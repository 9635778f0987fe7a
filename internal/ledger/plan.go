package ledger

import (
	"fmt"

	"github.com/forgedesk/inventory-service/internal/ledger/dto"
	"github.com/forgedesk/inventory-service/internal/model"
)

// PlannedLine is one validated stock change with its projected before/after
// levels, ready to apply.
type PlannedLine struct {
	ItemID         int64
	QuantityChange int64
	StockBefore    int64
	StockAfter     int64
	Note           *string
}

// PlanTransaction validates every line against projected stock before
// anything is applied. Lines touching the same item accumulate: each line
// sees the stock left by the lines before it. Any failure discards the whole
// plan.
func PlanTransaction(items map[int64]*model.InventoryItem, lines []dto.TransactionLineInput) ([]PlannedLine, error) {
	if len(lines) == 0 {
		return nil, model.Invalid("lines", "at least one line is required")
	}

	pending := make(map[int64]int64, len(lines))
	planned := make([]PlannedLine, 0, len(lines))

	for i, line := range lines {
		if line.QuantityChange == 0 {
			return nil, model.Invalid(fmt.Sprintf("lines[%d].quantity_change", i), "must be non-zero")
		}
		item, ok := items[line.ItemID]
		if !ok {
			return nil, fmt.Errorf("lines[%d] item %d: %w", i, line.ItemID, model.ErrItemNotFound)
		}

		before := item.Stock + pending[line.ItemID]
		after := before + line.QuantityChange
		if after < 0 {
			return nil, &model.InsufficientStockError{
				ItemID:    item.ID,
				SKU:       item.SKU,
				Projected: after,
				Requested: line.QuantityChange,
			}
		}
		pending[line.ItemID] = pending[line.ItemID] + line.QuantityChange

		var note *string
		if line.Note != "" {
			n := line.Note
			note = &n
		}
		planned = append(planned, PlannedLine{
			ItemID:         item.ID,
			QuantityChange: line.QuantityChange,
			StockBefore:    before,
			StockAfter:     after,
			Note:           note,
		})
	}

	return planned, nil
}
