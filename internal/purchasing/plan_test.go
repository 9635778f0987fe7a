package purchasing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgedesk/inventory-service/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func i64(v int64) *int64 { return &v }

func poLine(id int64, itemID *int64, ordered, received, cancelled, pack string) model.PurchaseOrderLine {
	return model.PurchaseOrderLine{
		ID:                id,
		InventoryItemID:   itemID,
		Description:       "line",
		QuantityOrdered:   dec(ordered),
		QuantityReceived:  dec(received),
		QuantityCancelled: dec(cancelled),
		PackSize:          dec(pack),
	}
}

func TestPlanReceiptConvertsPacksToEaches(t *testing.T) {
	lines := []model.PurchaseOrderLine{
		poLine(1, i64(10), "5", "0", "0", "25"),
	}
	plan, err := PlanReceipt(lines, map[int64]ReceiptChange{
		1: {Receive: dec("2")},
	})
	require.NoError(t, err)
	require.Len(t, plan.Lines, 1)

	assert.Equal(t, int64(50), plan.Lines[0].StockQtyEach)
	assert.True(t, plan.Lines[0].NewReceived.Equal(dec("2")))
	assert.True(t, plan.TotalReceived.Equal(dec("2")))
	assert.True(t, plan.TotalCancelled.IsZero())
}

func TestPlanReceiptDefaultsPackSizeToOne(t *testing.T) {
	lines := []model.PurchaseOrderLine{
		poLine(1, i64(10), "8", "0", "0", "0"),
	}
	plan, err := PlanReceipt(lines, map[int64]ReceiptChange{
		1: {Receive: dec("3")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), plan.Lines[0].StockQtyEach)
}

func TestPlanReceiptRejectsOverReceipt(t *testing.T) {
	lines := []model.PurchaseOrderLine{
		poLine(1, i64(10), "10", "4", "0", "1"),
	}
	_, err := PlanReceipt(lines, map[int64]ReceiptChange{
		1: {Receive: dec("5"), Cancel: dec("2")},
	})
	require.Error(t, err)

	var orErr *model.OverReceiptError
	require.ErrorAs(t, err, &orErr)
	assert.Equal(t, int64(1), orErr.LineID)
	assert.True(t, orErr.Outstanding.Equal(dec("6")))
	assert.True(t, orErr.Requested.Equal(dec("7")))
}

func TestPlanReceiptRejectsWholeCallOnOneBadLine(t *testing.T) {
	lines := []model.PurchaseOrderLine{
		poLine(1, i64(10), "10", "0", "0", "1"),
		poLine(2, i64(11), "4", "0", "0", "1"),
	}
	_, err := PlanReceipt(lines, map[int64]ReceiptChange{
		1: {Receive: dec("3")},
		2: {Receive: dec("5")},
	})
	var orErr *model.OverReceiptError
	require.ErrorAs(t, err, &orErr)
	assert.Equal(t, int64(2), orErr.LineID)
}

func TestPlanReceiptRejectsNegativeQuantities(t *testing.T) {
	lines := []model.PurchaseOrderLine{
		poLine(1, i64(10), "10", "0", "0", "1"),
	}
	_, err := PlanReceipt(lines, map[int64]ReceiptChange{
		1: {Receive: dec("-1")},
	})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestPlanReceiptRejectsUnknownLine(t *testing.T) {
	lines := []model.PurchaseOrderLine{
		poLine(1, i64(10), "10", "0", "0", "1"),
	}
	_, err := PlanReceipt(lines, map[int64]ReceiptChange{
		99: {Receive: dec("1")},
	})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestPlanReceiptSkipsZeroLinesButNeedsOneEffective(t *testing.T) {
	lines := []model.PurchaseOrderLine{
		poLine(1, i64(10), "10", "0", "0", "1"),
		poLine(2, i64(11), "4", "0", "0", "1"),
	}

	plan, err := PlanReceipt(lines, map[int64]ReceiptChange{
		1: {},
		2: {Receive: dec("1")},
	})
	require.NoError(t, err)
	require.Len(t, plan.Lines, 1)
	assert.Equal(t, int64(2), plan.Lines[0].LineID)

	_, err = PlanReceipt(lines, map[int64]ReceiptChange{1: {}})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestPlanReceiptCancellationOnly(t *testing.T) {
	lines := []model.PurchaseOrderLine{
		poLine(1, i64(10), "10", "2", "0", "4"),
	}
	plan, err := PlanReceipt(lines, map[int64]ReceiptChange{
		1: {Cancel: dec("8")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), plan.Lines[0].StockQtyEach)
	assert.True(t, plan.Lines[0].NewCancelled.Equal(dec("8")))
	assert.True(t, plan.TotalCancelled.Equal(dec("8")))
}

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name        string
		ordered     string
		received    string
		cancelled   string
		outstanding string
		want        model.PurchaseOrderStatus
	}{
		{"no lines", "0", "0", "0", "0", model.POStatusDraft},
		{"nothing moved", "10", "0", "0", "10", model.POStatusSent},
		{"partial receipt", "10", "4", "0", "6", model.POStatusPartiallyReceived},
		{"fully received", "10", "10", "0", "0", model.POStatusClosed},
		{"fully cancelled", "10", "0", "10", "0", model.POStatusCancelled},
		{"mixed settle closes", "10", "6", "4", "0", model.POStatusClosed},
		{"rounding dust closes", "10", "9.9999995", "0", "0.0000005", model.POStatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveOrderStatus(dec(tt.ordered), dec(tt.received), dec(tt.cancelled), dec(tt.outstanding))
			assert.Equal(t, tt.want, got)
		})
	}
}
