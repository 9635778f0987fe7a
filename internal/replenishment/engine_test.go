package replenishment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestRecommendedOrderQuantity(t *testing.T) {
	tests := []struct {
		name      string
		available float64
		adu       *float64
		leadTime  int
		safety    float64
		minimum   float64
		multiple  float64
		pack      float64
		want      float64
	}{
		{"well stocked", 120, f64(4), 5, 20, 0, 0, 0, 0},
		{"minimum raises small shortfall", 10, f64(2), 5, 5, 20, 0, 0, 20},
		{"rounded up to multiple", 0, f64(3), 4, 5, 0, 10, 0, 20},
		{"multiple then pack compose", 0, f64(2), 5, 3, 0, 5, 12, 24},
		{"no usage data", 2, nil, 5, 10, 0, 0, 0, 8},
		{"exact coverage orders nothing", 40, f64(4), 5, 20, 0, 0, 0, 0},
		{"negative availability deepens the gap", -5, f64(1), 3, 0, 0, 0, 0, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecommendedOrderQuantity(tt.available, tt.adu, tt.leadTime,
				tt.safety, tt.minimum, tt.multiple, tt.pack)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommendedOrderQuantityRoundsToThreeDecimals(t *testing.T) {
	got := RecommendedOrderQuantity(0, f64(1), 3, 0.3333, 0, 0, 0)
	assert.InDelta(t, 3.333, got, 0.0005)
}

func TestDaysOfSupply(t *testing.T) {
	assert.Nil(t, DaysOfSupply(10, nil))
	assert.Nil(t, DaysOfSupply(10, f64(0)))

	got := DaysOfSupply(10, f64(4))
	if assert.NotNil(t, got) {
		assert.Equal(t, 2.5, *got)
	}

	got = DaysOfSupply(-3, f64(4))
	if assert.NotNil(t, got) {
		assert.Equal(t, 0.0, *got)
	}
}

func TestUnitConversions(t *testing.T) {
	assert.Equal(t, 50.0, QuantityToEach(2, 25))
	assert.Equal(t, 2.0, EachToUnit(50, 25))
	assert.Equal(t, 7.0, QuantityToEach(7, 0))
	assert.Equal(t, 7.0, EachToUnit(7, -1))
	assert.Equal(t, 0.667, EachToUnit(2, 3))
}
