package purchasing

import (
	"fmt"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

// statusEpsilon absorbs NUMERIC rounding noise when judging a line fully
// settled.
var statusEpsilon = decimal.New(1, -6)

// ReceiptChange is the requested movement against one purchase order line.
type ReceiptChange struct {
	Receive decimal.Decimal
	Cancel  decimal.Decimal
}

type PlannedReceiptLine struct {
	LineID       int64
	ItemID       *int64
	Description  string
	PackSize     decimal.Decimal
	Receive      decimal.Decimal
	Cancel       decimal.Decimal
	NewReceived  decimal.Decimal
	NewCancelled decimal.Decimal
	// StockQtyEach is the received quantity converted to stock eaches.
	StockQtyEach int64
}

type ReceiptPlan struct {
	Lines          []PlannedReceiptLine
	TotalReceived  decimal.Decimal
	TotalCancelled decimal.Decimal
}

// PlanReceipt validates every requested change against the outstanding
// balances before anything is written. A single over-receipt rejects the
// whole call.
func PlanReceipt(lines []model.PurchaseOrderLine, changes map[int64]ReceiptChange) (*ReceiptPlan, error) {
	if len(changes) == 0 {
		return nil, model.Invalid("lines", "at least one receipt line is required")
	}

	byID := make(map[int64]*model.PurchaseOrderLine, len(lines))
	for i := range lines {
		byID[lines[i].ID] = &lines[i]
	}

	plan := &ReceiptPlan{}
	for _, line := range lines {
		change, ok := changes[line.ID]
		if !ok {
			continue
		}
		if change.Receive.IsNegative() || change.Cancel.IsNegative() {
			return nil, model.Invalid(fmt.Sprintf("lines[%d]", line.ID), "receive and cancel must not be negative")
		}

		total := change.Receive.Add(change.Cancel)
		if total.IsZero() {
			continue
		}

		outstanding := line.Outstanding()
		if total.GreaterThan(outstanding) {
			return nil, &model.OverReceiptError{
				LineID:      line.ID,
				Outstanding: outstanding,
				Requested:   total,
			}
		}

		packSize := line.PackSize
		if packSize.LessThanOrEqual(decimal.Zero) {
			packSize = decimal.NewFromInt(1)
		}

		plan.Lines = append(plan.Lines, PlannedReceiptLine{
			LineID:       line.ID,
			ItemID:       line.InventoryItemID,
			Description:  line.Description,
			PackSize:     packSize,
			Receive:      change.Receive,
			Cancel:       change.Cancel,
			NewReceived:  line.QuantityReceived.Add(change.Receive),
			NewCancelled: line.QuantityCancelled.Add(change.Cancel),
			StockQtyEach: change.Receive.Mul(packSize).Round(0).IntPart(),
		})
		plan.TotalReceived = plan.TotalReceived.Add(change.Receive)
		plan.TotalCancelled = plan.TotalCancelled.Add(change.Cancel)
	}

	for lineID := range changes {
		if _, ok := byID[lineID]; !ok {
			return nil, model.Invalid("lines", fmt.Sprintf("line %d is not on this purchase order", lineID))
		}
	}
	if len(plan.Lines) == 0 {
		return nil, model.Invalid("lines", "no receivable quantities supplied")
	}
	return plan, nil
}

// DeriveOrderStatus maps line totals onto the order lifecycle. Fully settled
// orders close, unless everything was cancelled outright.
func DeriveOrderStatus(totalOrdered, totalReceived, totalCancelled, outstanding decimal.Decimal) model.PurchaseOrderStatus {
	switch {
	case totalOrdered.LessThanOrEqual(decimal.Zero):
		return model.POStatusDraft
	case outstanding.LessThanOrEqual(statusEpsilon):
		if totalReceived.GreaterThan(statusEpsilon) {
			return model.POStatusClosed
		}
		if totalCancelled.GreaterThan(statusEpsilon) {
			return model.POStatusCancelled
		}
		return model.POStatusClosed
	case totalReceived.GreaterThan(decimal.Zero):
		return model.POStatusPartiallyReceived
	default:
		return model.POStatusSent
	}
}
