package reservation

import (
	"fmt"

	"github.com/forgedesk/inventory-service/internal/model"
)

// CompletionLine carries the per-line outcome of completing a job.
type CompletionLine struct {
	LineID          int64
	ItemID          int64
	CommittedBefore int64
	ActualConsumed  int64
	ConsumedDelta   int64
	Released        int64
}

type CompletionPlan struct {
	Lines         []CompletionLine
	TotalConsumed int64
	TotalReleased int64
}

// PlanCompletion reconciles actual consumption against the outstanding
// commitments. Each line conserves quantity: released plus newly consumed
// equals the commitment held before completion. Lines absent from actuals
// consume their full outstanding commitment.
func PlanCompletion(lines []model.ReservationLine, actuals map[int64]int64) (*CompletionPlan, error) {
	known := make(map[int64]bool, len(lines))
	for _, line := range lines {
		known[line.ID] = true
	}
	for lineID := range actuals {
		if !known[lineID] {
			return nil, model.Invalid("actual_consumed", fmt.Sprintf("line %d is not on this reservation", lineID))
		}
	}

	plan := &CompletionPlan{Lines: make([]CompletionLine, 0, len(lines))}
	for _, line := range lines {
		actual, ok := actuals[line.ID]
		if !ok {
			actual = line.ConsumedQty + line.CommittedQty
		}

		field := fmt.Sprintf("actual_consumed[%d]", line.ID)
		if actual < 0 {
			return nil, model.Invalid(field, "must not be negative")
		}
		if actual < line.ConsumedQty {
			return nil, model.Invalid(field, fmt.Sprintf("cannot be below the %d already consumed", line.ConsumedQty))
		}
		max := line.ConsumedQty + line.CommittedQty
		if actual > max {
			return nil, model.Invalid(field, fmt.Sprintf("exceeds the committed maximum of %d", max))
		}

		delta := actual - line.ConsumedQty
		released := line.CommittedQty - delta
		plan.Lines = append(plan.Lines, CompletionLine{
			LineID:          line.ID,
			ItemID:          line.InventoryItemID,
			CommittedBefore: line.CommittedQty,
			ActualConsumed:  actual,
			ConsumedDelta:   delta,
			Released:        released,
		})
		plan.TotalConsumed += delta
		plan.TotalReleased += released
	}
	return plan, nil
}
