package service

import (
	"errors"
	"fmt"

	"vpn_billing/internal/domain/pricing/model"
	"vpn_billing/pkg/metrics"
	"vpn_billing/pkg/pricing"

	"go.uber.org/zap"
)

var (
	// ErrPeriodPriceNotFound means the requested period has no configured
	// price. This is an operator configuration error, never defaulted over.
	ErrPeriodPriceNotFound = errors.New("no price configured for period")

	// ErrTrafficPriceNotFound means the requested traffic package has no
	// configured monthly price.
	ErrTrafficPriceNotFound = errors.New("no price configured for traffic limit")

	// ErrValidationFailed means the computed breakdown failed the internal
	// consistency check and must not be charged.
	ErrValidationFailed = errors.New("price calculation validation failed")
)

// DiscountSource resolves the discount percent per pricing category for a
// billing period. *user.User satisfies it via its promo group.
type DiscountSource interface {
	GetPromoDiscount(category string, periodDays int) int
}

// Calculator computes itemized subscription prices from an injected price
// table. It is pure computation and safe for concurrent use.
type Calculator struct {
	tables model.Tables
	logger *zap.Logger
}

func NewCalculator(tables model.Tables, logger *zap.Logger) *Calculator {
	return &Calculator{tables: tables, logger: logger}
}

// Calculate prices a subscription selection for the given discount source.
// Discounts on monthly components are applied per month before scaling by the
// period's month count, and the result is cross-checked before being returned.
func (c *Calculator) Calculate(source DiscountSource, sel model.Selection) (*model.Breakdown, error) {
	months := pricing.CalculateMonthsFromDays(sel.PeriodDays)

	basePriceOriginal, ok := c.tables.PeriodPrices[sel.PeriodDays]
	if !ok {
		c.logger.Error("period has no configured price",
			zap.Int("period_days", sel.PeriodDays))
		metrics.Default().PricingCalculation("config_error")
		return nil, fmt.Errorf("%w: %d days", ErrPeriodPriceNotFound, sel.PeriodDays)
	}

	baseDiscountPercent := source.GetPromoDiscount(pricing.CategoryPeriod, sel.PeriodDays)
	basePrice, baseDiscountTotal := pricing.ApplyPercentageDiscount(basePriceOriginal, baseDiscountPercent)

	breakdown := &model.Breakdown{
		PeriodDays:          sel.PeriodDays,
		Months:              months,
		BasePriceOriginal:   basePriceOriginal,
		BaseDiscountPercent: baseDiscountPercent,
		BaseDiscountTotal:   baseDiscountTotal,
		BasePrice:           basePrice,
	}

	// Traffic: 0 GB means unlimited traffic is included in the base price.
	trafficPerMonth := 0
	if sel.TrafficLimitGB > 0 {
		trafficPerMonth, ok = c.tables.TrafficPrices[sel.TrafficLimitGB]
		if !ok {
			c.logger.Error("traffic limit has no configured price",
				zap.Int("traffic_gb", sel.TrafficLimitGB))
			metrics.Default().PricingCalculation("config_error")
			return nil, fmt.Errorf("%w: %d GB", ErrTrafficPriceNotFound, sel.TrafficLimitGB)
		}
	}
	trafficPercent := source.GetPromoDiscount(pricing.CategoryTraffic, sel.PeriodDays)
	breakdown.TrafficPricePerMonth = trafficPerMonth
	breakdown.TrafficDiscountPercent = trafficPercent
	breakdown.TrafficDiscountedPerMonth, breakdown.TrafficDiscountTotal,
		breakdown.TotalTrafficPrice = monthlyComponent(trafficPerMonth, trafficPercent, months)

	// Servers: the discount is applied per server per month so a single
	// server's contribution stays recoverable for later proration.
	serversPercent := source.GetPromoDiscount(pricing.CategoryServers, sel.PeriodDays)
	breakdown.ServersDiscountPercent = serversPercent
	for _, server := range sel.Servers {
		if !server.Available {
			c.logger.Warn("selected server excluded from pricing",
				zap.String("squad_uuid", server.SquadUUID))
			breakdown.ServerComponents = append(breakdown.ServerComponents, model.ServerComponent{
				SquadUUID: server.SquadUUID,
				Name:      server.Name,
			})
			continue
		}

		discountedPerMonth, discountPerMonth := pricing.ApplyPercentageDiscount(server.PriceKopeks, serversPercent)
		component := model.ServerComponent{
			SquadUUID:          server.SquadUUID,
			Name:               server.Name,
			Available:          true,
			PerMonthOriginal:   server.PriceKopeks,
			DiscountPerMonth:   discountPerMonth,
			PerMonthDiscounted: discountedPerMonth,
			TotalForPeriod:     discountedPerMonth * months,
		}
		breakdown.ServerComponents = append(breakdown.ServerComponents, component)

		breakdown.ServersPricePerMonth += server.PriceKopeks
		breakdown.ServersDiscountedPerMonth += discountedPerMonth
		breakdown.ServersDiscountTotal += discountPerMonth * months
		breakdown.TotalServersPrice += component.TotalForPeriod
	}

	// Devices over the default limit are a monthly add-on.
	additionalDevices := sel.DeviceCount - c.tables.DefaultDeviceLimit
	if additionalDevices < 0 {
		additionalDevices = 0
	}
	devicesPerMonth := additionalDevices * c.tables.PricePerDevice
	devicesPercent := source.GetPromoDiscount(pricing.CategoryDevices, sel.PeriodDays)
	breakdown.DevicesPricePerMonth = devicesPerMonth
	breakdown.DevicesDiscountPercent = devicesPercent
	breakdown.DevicesDiscountedPerMonth, breakdown.DevicesDiscountTotal,
		breakdown.TotalDevicesPrice = monthlyComponent(devicesPerMonth, devicesPercent, months)

	breakdown.DiscountedMonthlyAdditions = breakdown.TrafficDiscountedPerMonth +
		breakdown.ServersDiscountedPerMonth +
		breakdown.DevicesDiscountedPerMonth
	breakdown.TotalPrice = breakdown.BasePrice +
		breakdown.TotalTrafficPrice +
		breakdown.TotalServersPrice +
		breakdown.TotalDevicesPrice

	if !pricing.ValidateCalculation(breakdown.BasePrice, breakdown.DiscountedMonthlyAdditions, months, breakdown.TotalPrice) {
		c.logger.Error("price breakdown failed consistency check",
			zap.Int("base_price", breakdown.BasePrice),
			zap.Int("monthly_additions", breakdown.DiscountedMonthlyAdditions),
			zap.Int("months", months),
			zap.Int("total_price", breakdown.TotalPrice),
			zap.Int("total_traffic", breakdown.TotalTrafficPrice),
			zap.Int("total_servers", breakdown.TotalServersPrice),
			zap.Int("total_devices", breakdown.TotalDevicesPrice))
		metrics.Default().ValidationFailure()
		return nil, ErrValidationFailed
	}

	metrics.Default().PricingCalculation("ok")
	return breakdown, nil
}

// ApplyPromoOffer overlays a promo-offer percent once on top of the
// already-discounted total. Percent 0 leaves the total untouched.
func (c *Calculator) ApplyPromoOffer(totalKopeks, percent int) model.OfferComponent {
	discounted, discount := pricing.ApplyPercentageDiscount(totalKopeks, percent)
	return model.OfferComponent{
		Percent:    percent,
		Discount:   discount,
		Discounted: discounted,
	}
}

// monthlyComponent discounts a per-month amount and scales it to the period.
func monthlyComponent(perMonth, percent, months int) (discountedPerMonth, discountTotal, total int) {
	discountedPerMonth, discountPerMonth := pricing.ApplyPercentageDiscount(perMonth, percent)
	return discountedPerMonth, discountPerMonth * months, discountedPerMonth * months
}
