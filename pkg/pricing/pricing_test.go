package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyPercentageDiscount(t *testing.T) {
	tests := []struct {
		name           string
		amount         int
		percent        int
		wantDiscounted int
		wantDiscount   int
	}{
		{"ten percent", 10000, 10, 9000, 1000},
		{"zero percent", 10000, 0, 10000, 0},
		{"full discount", 10000, 100, 0, 10000},
		{"truncates fraction", 999, 10, 900, 99},
		{"zero amount", 0, 50, 0, 0},
		{"negative percent ignored", 10000, -5, 10000, 0},
		{"percent above hundred clamped", 10000, 150, 0, 10000},
		{"single kopek", 1, 50, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discounted, discount := ApplyPercentageDiscount(tt.amount, tt.percent)
			assert.Equal(t, tt.wantDiscounted, discounted)
			assert.Equal(t, tt.wantDiscount, discount)
		})
	}
}

func TestApplyPercentageDiscountRoundTrip(t *testing.T) {
	// discounted + discount must always reassemble the original amount
	for amount := 0; amount <= 5000; amount += 37 {
		for percent := 0; percent <= 100; percent += 7 {
			discounted, discount := ApplyPercentageDiscount(amount, percent)
			assert.Equal(t, amount, discounted+discount)
			assert.Equal(t, amount*percent/100, discount)
		}
	}
}

func TestCalculateMonthsFromDays(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{14, 1},
		{30, 1},
		{44, 1},
		{45, 2}, // half-up on ties
		{60, 2},
		{90, 3},
		{180, 6},
		{360, 12},
		{1, 1},
		{0, 1},
		{-10, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateMonthsFromDays(tt.days), "days=%d", tt.days)
	}
}

func TestCalculateMonthsFromDaysMonotonic(t *testing.T) {
	prev := CalculateMonthsFromDays(1)
	for days := 2; days <= 720; days++ {
		cur := CalculateMonthsFromDays(days)
		assert.GreaterOrEqual(t, cur, prev, "days=%d", days)
		prev = cur
	}
}

func TestRemainingMonths(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, RemainingMonths(now.Add(-24*time.Hour), now), "expired subscription still charges one month")
	assert.Equal(t, 1, RemainingMonths(now.AddDate(0, 0, 25), now))
	assert.Equal(t, 3, RemainingMonths(now.AddDate(0, 0, 90), now))
}

func TestCalculateProratedPrice(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	endDate := now.AddDate(0, 0, 60)

	total, months := CalculateProratedPrice(2000, endDate, now, 1)
	assert.Equal(t, 2, months)
	assert.Equal(t, 4000, total)

	total, months = CalculateProratedPrice(2000, now.Add(-time.Hour), now, 1)
	assert.Equal(t, 1, months)
	assert.Equal(t, 2000, total)
}

func TestValidateCalculation(t *testing.T) {
	assert.True(t, ValidateCalculation(9000, 4300, 1, 13300))
	assert.True(t, ValidateCalculation(9000, 4300, 3, 21900))
	assert.True(t, ValidateCalculation(0, 0, 1, 0))

	// a corrupted category total must fail the check
	assert.False(t, ValidateCalculation(9000, 4300, 1, 13301))
	assert.False(t, ValidateCalculation(9000, 4200, 1, 13300))
}
