package replenishment

import "context"

type Repository interface {
	// Snapshot loads every active item with its supplier, trailing usage
	// rate over windowDays and outstanding open order quantity. The
	// recommendation fields come back zeroed.
	Snapshot(ctx context.Context, windowDays int) ([]ItemPlan, error)
}
