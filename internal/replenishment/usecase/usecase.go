package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/forgedesk/inventory-service/internal/replenishment"
)

type replenishmentUseCase struct {
	repo       replenishment.Repository
	windowDays int
	logger     logger.ZapLogger
}

func NewReplenishmentUseCase(repo replenishment.Repository, windowDays int, logger logger.ZapLogger) replenishment.UseCase {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &replenishmentUseCase{
		repo:       repo,
		windowDays: windowDays,
		logger:     logger,
	}
}

func (uc *replenishmentUseCase) Plan(ctx context.Context) ([]replenishment.ItemPlan, error) {
	plans, err := uc.repo.Snapshot(ctx, uc.windowDays)
	if err != nil {
		uc.logger.Error("failed to load replenishment snapshot", zap.Error(err))
		return nil, err
	}

	needsOrder := 0
	for i := range plans {
		plan := &plans[i]
		plan.RecommendedQty = replenishment.RecommendedOrderQuantity(
			float64(plan.AvailableQty),
			plan.AverageDailyUse,
			plan.LeadTimeDays,
			plan.SafetyStockQty,
			plan.MinimumOrderQty,
			plan.OrderMultiple,
			plan.PackSize,
		)
		plan.RecommendedUnits = replenishment.EachToUnit(plan.RecommendedQty, plan.PackSize)
		plan.ProjectedAvailable = float64(plan.AvailableQty) + plan.OnOrderQty
		plan.DaysOfSupply = replenishment.DaysOfSupply(plan.AvailableQty, plan.AverageDailyUse)
		if plan.RecommendedQty > 0 {
			needsOrder++
		}
	}

	uc.logger.Debug("computed replenishment plan",
		zap.Int("items", len(plans)),
		zap.Int("needs_order", needsOrder))
	return plans, nil
}

func (uc *replenishmentUseCase) PlanBySupplier(ctx context.Context) ([]replenishment.SupplierGroup, error) {
	plans, err := uc.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return replenishment.GroupBySupplier(plans), nil
}
