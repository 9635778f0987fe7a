package replenishment

import "context"

type UseCase interface {
	// Plan computes the replenishment recommendation for every item.
	Plan(ctx context.Context) ([]ItemPlan, error)
	// PlanBySupplier groups the plan for purchasing review.
	PlanBySupplier(ctx context.Context) ([]SupplierGroup, error)
}
