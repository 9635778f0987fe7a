package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/forgedesk/inventory-service/internal/replenishment"
)

type fakeRepo struct {
	plans []replenishment.ItemPlan
}

func (f *fakeRepo) Snapshot(ctx context.Context, windowDays int) ([]replenishment.ItemPlan, error) {
	out := make([]replenishment.ItemPlan, len(f.plans))
	copy(out, f.plans)
	return out, nil
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "error", DisableStacktrace: true})
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
func str(s string) *string   { return &s }

func TestPlanFillsRecommendations(t *testing.T) {
	repo := &fakeRepo{plans: []replenishment.ItemPlan{
		{
			ItemID: 1, SKU: "1020-BL",
			Stock: 12, CommittedQty: 2, AvailableQty: 10,
			AverageDailyUse: f64(2), LeadTimeDays: 5,
			SafetyStockQty: 5, MinimumOrderQty: 20,
			OnOrderQty: 40,
		},
		{
			ItemID: 2, SKU: "4040-DB",
			Stock: 120, AvailableQty: 120,
			AverageDailyUse: f64(4), LeadTimeDays: 5, SafetyStockQty: 20,
		},
	}}
	uc := NewReplenishmentUseCase(repo, 30, testLogger())

	plans, err := uc.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, 20.0, plans[0].RecommendedQty)
	assert.Equal(t, 50.0, plans[0].ProjectedAvailable)
	if assert.NotNil(t, plans[0].DaysOfSupply) {
		assert.Equal(t, 5.0, *plans[0].DaysOfSupply)
	}

	assert.Equal(t, 0.0, plans[1].RecommendedQty)
	assert.Equal(t, 120.0, plans[1].ProjectedAvailable)
}

func TestPlanConvertsRecommendationToPurchaseUnits(t *testing.T) {
	repo := &fakeRepo{plans: []replenishment.ItemPlan{
		{
			ItemID: 1, SKU: "1020-BL",
			AverageDailyUse: f64(2), LeadTimeDays: 5, SafetyStockQty: 3,
			OrderMultiple: 5, PackSize: 12,
		},
	}}
	uc := NewReplenishmentUseCase(repo, 30, testLogger())

	plans, err := uc.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)

	assert.Equal(t, 24.0, plans[0].RecommendedQty)
	assert.Equal(t, 2.0, plans[0].RecommendedUnits)
}

func TestPlanBySupplierGroupsComputedPlans(t *testing.T) {
	repo := &fakeRepo{plans: []replenishment.ItemPlan{
		{ItemID: 1, SKU: "A", SupplierID: i64(7), SupplierName: str("Metro Steel"),
			SafetyStockQty: 10},
		{ItemID: 2, SKU: "B", SupplierID: i64(7), SupplierName: str("Metro Steel"),
			Stock: 100, AvailableQty: 100},
	}}
	uc := NewReplenishmentUseCase(repo, 30, testLogger())

	groups, err := uc.PlanBySupplier(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.Equal(t, "supplier-7", groups[0].Key)
	assert.Equal(t, 2, groups[0].Totals.ItemCount)
	assert.Equal(t, 1, groups[0].Totals.NeedsOrder)
	assert.Equal(t, 10.0, groups[0].Totals.TotalRecommended)
}
