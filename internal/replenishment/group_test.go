package replenishment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }
func id(v int64) *int64    { return &v }

func TestGroupBySupplierBucketsAndTotals(t *testing.T) {
	plans := []ItemPlan{
		{ItemID: 1, SKU: "1020-BL", SupplierID: id(7), SupplierName: str("Metro Steel"),
			Stock: 10, CommittedQty: 4, OnOrderQty: 25, RecommendedQty: 12},
		{ItemID: 2, SKU: "1020-C2", SupplierID: id(7), SupplierName: str("Metro Steel"),
			Stock: 50, CommittedQty: 0, RecommendedQty: 0},
		{ItemID: 3, SKU: "4040-DB", SupplierName: str("Ace Fasteners Ltd.")},
		{ItemID: 4, SKU: "9999"},
	}

	groups := GroupBySupplier(plans)
	require.Len(t, groups, 3)

	assert.Equal(t, "legacy-ace-fasteners-ltd", groups[0].Key)
	assert.Equal(t, "Ace Fasteners Ltd.", groups[0].Name)
	assert.Nil(t, groups[0].SupplierID)

	metro := groups[1]
	assert.Equal(t, "supplier-7", metro.Key)
	assert.Equal(t, "Metro Steel", metro.Name)
	assert.Equal(t, 2, metro.Totals.ItemCount)
	assert.Equal(t, 1, metro.Totals.NeedsOrder)
	assert.Equal(t, int64(60), metro.Totals.TotalStock)
	assert.Equal(t, int64(4), metro.Totals.TotalCommitted)
	assert.Equal(t, 25.0, metro.Totals.TotalOnOrder)
	assert.Equal(t, 12.0, metro.Totals.TotalRecommended)
	assert.Equal(t, []string{"1020-BL", "1020-C2"}, []string{metro.Items[0].SKU, metro.Items[1].SKU})

	assert.Equal(t, "unassigned", groups[2].Key)
	assert.Equal(t, "Unassigned", groups[2].Name)
}

func TestGroupBySupplierNamedSupplierBeatsContactText(t *testing.T) {
	plans := []ItemPlan{
		{ItemID: 1, SKU: "A", SupplierID: id(3)},
	}
	groups := GroupBySupplier(plans)
	require.Len(t, groups, 1)
	assert.Equal(t, "supplier-3", groups[0].Key)
	assert.Equal(t, "Supplier 3", groups[0].Name)
}

func TestGroupBySupplierEmpty(t *testing.T) {
	assert.Empty(t, GroupBySupplier(nil))
}
