package pricing

// ApplyPercentageDiscount applies an integer percent discount to an amount in
// kopeks. Returns the discounted amount and the discount value. The discount is
// truncated by integer division, so discounted+discount always equals amount.
func ApplyPercentageDiscount(amountKopeks, percent int) (discounted, discount int) {
	if amountKopeks <= 0 || percent <= 0 {
		return amountKopeks, 0
	}

	if percent > 100 {
		percent = 100
	}

	discount = amountKopeks * percent / 100
	discounted = amountKopeks - discount
	return discounted, discount
}
