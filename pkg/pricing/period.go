package pricing

import "time"

// baseMonthDays is the billing month used to scale monthly add-on prices
// (servers, devices, traffic) to a full period.
const baseMonthDays = 30

// CalculateMonthsFromDays converts a billing period in days to a whole number
// of billing months, never less than 1. Periods that do not divide evenly are
// rounded half-up: 30→1, 45→2, 44→1. Callers in the purchase, renewal and
// preview flows rely on this being deterministic for the same input.
func CalculateMonthsFromDays(days int) int {
	if days <= 0 {
		return 1
	}

	months := (days + baseMonthDays/2) / baseMonthDays
	if months < 1 {
		return 1
	}
	return months
}

// RemainingMonths returns the number of billing months left until endDate,
// never less than 1. A subscription that already ended still charges one month.
func RemainingMonths(endDate, now time.Time) int {
	if !endDate.After(now) {
		return 1
	}

	remainingDays := int(endDate.Sub(now).Hours() / 24)
	return CalculateMonthsFromDays(remainingDays)
}

// CalculateProratedPrice charges a monthly component over the remaining life of
// a subscription, with a floor of minChargeMonths.
func CalculateProratedPrice(monthlyPriceKopeks int, endDate, now time.Time, minChargeMonths int) (total, months int) {
	months = RemainingMonths(endDate, now)
	if months < minChargeMonths {
		months = minChargeMonths
	}

	return monthlyPriceKopeks * months, months
}
