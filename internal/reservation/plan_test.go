package reservation

import (
	"testing"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionLines() []model.ReservationLine {
	return []model.ReservationLine{
		{ID: 1, InventoryItemID: 10, RequestedQty: 6, CommittedQty: 6},
		{ID: 2, InventoryItemID: 11, RequestedQty: 4, CommittedQty: 3, ConsumedQty: 1},
	}
}

func TestPlanCompletionConservesCommitment(t *testing.T) {
	plan, err := PlanCompletion(completionLines(), map[int64]int64{1: 4, 2: 2})
	require.NoError(t, err)
	require.Len(t, plan.Lines, 2)

	// Line 1: consumed 4 of 6, released 2.
	assert.Equal(t, int64(4), plan.Lines[0].ConsumedDelta)
	assert.Equal(t, int64(2), plan.Lines[0].Released)

	// Line 2: already consumed 1, actual total 2, so 1 more from stock and
	// the remaining 2 of commitment released.
	assert.Equal(t, int64(1), plan.Lines[1].ConsumedDelta)
	assert.Equal(t, int64(2), plan.Lines[1].Released)

	for _, pl := range plan.Lines {
		assert.Equal(t, pl.CommittedBefore, pl.Released+pl.ConsumedDelta)
	}
	assert.Equal(t, int64(5), plan.TotalConsumed)
	assert.Equal(t, int64(4), plan.TotalReleased)
}

func TestPlanCompletionDefaultsToFullConsumption(t *testing.T) {
	plan, err := PlanCompletion(completionLines(), nil)
	require.NoError(t, err)

	assert.Equal(t, int64(6), plan.Lines[0].ConsumedDelta)
	assert.Equal(t, int64(0), plan.Lines[0].Released)
	assert.Equal(t, int64(4), plan.Lines[1].ActualConsumed)
	assert.Equal(t, int64(3), plan.Lines[1].ConsumedDelta)
}

func TestPlanCompletionRejectsOverAndUnderConsumption(t *testing.T) {
	var vErr *model.ValidationError

	// More than committed+consumed.
	_, err := PlanCompletion(completionLines(), map[int64]int64{1: 7})
	require.ErrorAs(t, err, &vErr)

	// Below what was already consumed.
	_, err = PlanCompletion(completionLines(), map[int64]int64{2: 0})
	require.ErrorAs(t, err, &vErr)

	// Negative.
	_, err = PlanCompletion(completionLines(), map[int64]int64{1: -1})
	require.ErrorAs(t, err, &vErr)

	// Unknown line id.
	_, err = PlanCompletion(completionLines(), map[int64]int64{99: 1})
	require.ErrorAs(t, err, &vErr)
}

func TestPlanCompletionAllowsZeroNewConsumption(t *testing.T) {
	plan, err := PlanCompletion(completionLines(), map[int64]int64{1: 0, 2: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(0), plan.Lines[0].ConsumedDelta)
	assert.Equal(t, int64(6), plan.Lines[0].Released)
	assert.Equal(t, int64(0), plan.Lines[1].ConsumedDelta)
	assert.Equal(t, int64(3), plan.Lines[1].Released)
}
