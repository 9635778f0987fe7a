package replenishment

import (
	"github.com/shopspring/decimal"
)

// RecommendedOrderQuantity computes how much of an item to order right now,
// in stock units, rounded to three decimal places.
//
// Demand over the lead time plus safety stock sets the target level. The gap
// between target and what is available today is raised to the minimum order
// quantity, then rounded up to the order multiple, then again to the pack
// size. Multiple and pack rounding compose in that order.
func RecommendedOrderQuantity(availableNow float64, averageDailyUse *float64, leadTimeDays int, safetyStockQty, minimumOrderQty, orderMultiple, packSize float64) float64 {
	adu := decimal.Zero
	if averageDailyUse != nil {
		adu = decimal.NewFromFloat(*averageDailyUse)
	}

	demand := adu.Mul(decimal.NewFromInt(int64(leadTimeDays)))
	target := demand.Add(decimal.NewFromFloat(safetyStockQty))

	shortfall := target.Sub(decimal.NewFromFloat(availableNow))
	if shortfall.IsNegative() {
		shortfall = decimal.Zero
	}

	minimum := decimal.NewFromFloat(minimumOrderQty)
	if shortfall.LessThan(minimum) {
		shortfall = minimum
	}

	shortfall = roundUpTo(shortfall, decimal.NewFromFloat(orderMultiple))
	shortfall = roundUpTo(shortfall, decimal.NewFromFloat(packSize))

	out, _ := shortfall.Round(3).Float64()
	return out
}

// roundUpTo rounds qty up to the next whole multiple of step. A step of zero
// or less leaves qty untouched.
func roundUpTo(qty, step decimal.Decimal) decimal.Decimal {
	if step.LessThanOrEqual(decimal.Zero) || qty.LessThanOrEqual(decimal.Zero) {
		return qty
	}
	return qty.Div(step).Ceil().Mul(step)
}

// DaysOfSupply estimates how long the available quantity lasts at the
// trailing consumption rate. Nil when there is no usage data or no
// consumption.
func DaysOfSupply(availableQty int64, averageDailyUse *float64) *float64 {
	if averageDailyUse == nil || *averageDailyUse <= 0 {
		return nil
	}
	if availableQty <= 0 {
		zero := 0.0
		return &zero
	}
	days, _ := decimal.NewFromInt(availableQty).
		Div(decimal.NewFromFloat(*averageDailyUse)).
		Round(1).Float64()
	return &days
}

// QuantityToEach converts a purchase-unit quantity to stock eaches. Items
// without a pack size are bought in eaches already.
func QuantityToEach(qty, packSize float64) float64 {
	if packSize <= 0 {
		return qty
	}
	out, _ := decimal.NewFromFloat(qty).
		Mul(decimal.NewFromFloat(packSize)).
		Round(3).Float64()
	return out
}

// EachToUnit converts stock eaches back to purchase units.
func EachToUnit(qty, packSize float64) float64 {
	if packSize <= 0 {
		return qty
	}
	out, _ := decimal.NewFromFloat(qty).
		Div(decimal.NewFromFloat(packSize)).
		Round(3).Float64()
	return out
}
