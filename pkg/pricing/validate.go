package pricing

// ValidateCalculation cross-checks a computed subscription total against its
// parts: basePrice plus discounted monthly additions scaled by months must equal
// the claimed total exactly. All figures are integer kopeks, so there is no
// tolerance. A false result means a category was miscalculated and the purchase
// must be aborted before any balance is touched.
func ValidateCalculation(basePrice, monthlyAdditions, months, totalCalculated int) bool {
	expected := basePrice + monthlyAdditions*months
	return expected == totalCalculated
}
