package model

import (
	"testing"

	"vpn_billing/pkg/pricing"

	"github.com/stretchr/testify/assert"
)

func TestGetDiscountPercentFlat(t *testing.T) {
	group := &PromoGroup{
		PeriodDiscountPercent:  10,
		ServerDiscountPercent:  5,
		TrafficDiscountPercent: 20,
		DeviceDiscountPercent:  0,
	}

	assert.Equal(t, 10, group.GetDiscountPercent(pricing.CategoryPeriod, 30))
	assert.Equal(t, 5, group.GetDiscountPercent(pricing.CategoryServers, 30))
	assert.Equal(t, 20, group.GetDiscountPercent(pricing.CategoryTraffic, 30))
	assert.Equal(t, 0, group.GetDiscountPercent(pricing.CategoryDevices, 30))
	assert.Equal(t, 0, group.GetDiscountPercent("unknown", 30))
}

func TestGetDiscountPercentPeriodOverride(t *testing.T) {
	group := &PromoGroup{
		PeriodDiscountPercent: 10,
		ServerDiscountPercent: 5,
		PeriodDiscounts: PeriodDiscounts{
			pricing.CategoryPeriod:  {90: 25, 180: 35},
			pricing.CategoryServers: {180: 15},
		},
	}

	// override wins for the configured period only
	assert.Equal(t, 25, group.GetDiscountPercent(pricing.CategoryPeriod, 90))
	assert.Equal(t, 35, group.GetDiscountPercent(pricing.CategoryPeriod, 180))
	assert.Equal(t, 10, group.GetDiscountPercent(pricing.CategoryPeriod, 30))
	assert.Equal(t, 15, group.GetDiscountPercent(pricing.CategoryServers, 180))
	assert.Equal(t, 5, group.GetDiscountPercent(pricing.CategoryServers, 30))
}

func TestGetDiscountPercentClamped(t *testing.T) {
	group := &PromoGroup{
		PeriodDiscountPercent: 150,
		ServerDiscountPercent: -10,
	}

	assert.Equal(t, 100, group.GetDiscountPercent(pricing.CategoryPeriod, 30))
	assert.Equal(t, 0, group.GetDiscountPercent(pricing.CategoryServers, 30))
}

func TestGetPromoDiscountWithoutGroup(t *testing.T) {
	user := &User{}
	assert.Equal(t, 0, user.GetPromoDiscount(pricing.CategoryPeriod, 30))

	var nilGroup *PromoGroup
	assert.Equal(t, 0, nilGroup.GetDiscountPercent(pricing.CategoryPeriod, 30))
}

func TestPeriodDiscountsRoundTrip(t *testing.T) {
	src := PeriodDiscounts{
		pricing.CategoryPeriod: {90: 25},
	}

	value, err := src.Value()
	assert.NoError(t, err)

	var dst PeriodDiscounts
	assert.NoError(t, dst.Scan(value))
	assert.Equal(t, 25, dst[pricing.CategoryPeriod][90])
}
