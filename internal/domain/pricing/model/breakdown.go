package model

import (
	"strconv"

	"vpn_billing/internal/pkg/config"
)

// Tables is the injected pricing configuration the calculator works from.
// Passing it explicitly keeps the engine deterministic and testable.
type Tables struct {
	PeriodPrices       map[int]int // period days -> flat price in kopeks
	TrafficPrices      map[int]int // traffic GB -> monthly price in kopeks
	DefaultDeviceLimit int
	PricePerDevice     int // kopeks per additional device per month
}

// TablesFromConfig converts the string-keyed config maps into the int-keyed
// tables the calculator consumes. Keys were validated at config load.
func TablesFromConfig(cfg config.PricingConfig) Tables {
	tables := Tables{
		PeriodPrices:       make(map[int]int, len(cfg.PeriodPrices)),
		TrafficPrices:      make(map[int]int, len(cfg.TrafficPrices)),
		DefaultDeviceLimit: cfg.DefaultDeviceLimit,
		PricePerDevice:     cfg.PricePerDevice,
	}
	for key, price := range cfg.PeriodPrices {
		if days, err := strconv.Atoi(key); err == nil {
			tables.PeriodPrices[days] = price
		}
	}
	for key, price := range cfg.TrafficPrices {
		if gb, err := strconv.Atoi(key); err == nil {
			tables.TrafficPrices[gb] = price
		}
	}
	return tables
}

// ServerPrice is one selected server's per-month price as resolved by the
// server repository.
type ServerPrice struct {
	SquadUUID   string
	Name        string
	PriceKopeks int
	Available   bool
}

// Selection is everything the user picked for a subscription.
type Selection struct {
	PeriodDays     int
	Servers        []ServerPrice
	DeviceCount    int
	TrafficLimitGB int // 0 means unlimited traffic is included
}

// ServerComponent is the per-server slice of a breakdown. Discounts are applied
// per month before scaling so one server's contribution can later be prorated
// on its own (renewal with a subset of servers).
type ServerComponent struct {
	SquadUUID          string `json:"squadUuid"`
	Name               string `json:"name"`
	Available          bool   `json:"available"`
	PerMonthOriginal   int    `json:"perMonthOriginal"`
	DiscountPerMonth   int    `json:"discountPerMonth"`
	PerMonthDiscounted int    `json:"perMonthDiscounted"`
	TotalForPeriod     int    `json:"totalForPeriod"`
}

// Breakdown is the fully itemized price of a subscription selection, before
// any promo-offer overlay. All amounts are kopeks.
type Breakdown struct {
	PeriodDays int `json:"periodDays"`
	Months     int `json:"months"`

	BasePriceOriginal   int `json:"basePriceOriginal"`
	BaseDiscountPercent int `json:"baseDiscountPercent"`
	BaseDiscountTotal   int `json:"baseDiscountTotal"`
	BasePrice           int `json:"basePrice"`

	TrafficPricePerMonth      int `json:"trafficPricePerMonth"`
	TrafficDiscountPercent    int `json:"trafficDiscountPercent"`
	TrafficDiscountTotal      int `json:"trafficDiscountTotal"`
	TrafficDiscountedPerMonth int `json:"trafficDiscountedPerMonth"`
	TotalTrafficPrice         int `json:"totalTrafficPrice"`

	ServersPricePerMonth      int               `json:"serversPricePerMonth"`
	ServersDiscountPercent    int               `json:"serversDiscountPercent"`
	ServersDiscountTotal      int               `json:"serversDiscountTotal"`
	ServersDiscountedPerMonth int               `json:"serversDiscountedPerMonth"`
	TotalServersPrice         int               `json:"totalServersPrice"`
	ServerComponents          []ServerComponent `json:"serverComponents"`

	DevicesPricePerMonth      int `json:"devicesPricePerMonth"`
	DevicesDiscountPercent    int `json:"devicesDiscountPercent"`
	DevicesDiscountTotal      int `json:"devicesDiscountTotal"`
	DevicesDiscountedPerMonth int `json:"devicesDiscountedPerMonth"`
	TotalDevicesPrice         int `json:"totalDevicesPrice"`

	// DiscountedMonthlyAdditions is the per-month sum of all discounted add-on
	// components, the figure the consistency check scales by Months.
	DiscountedMonthlyAdditions int `json:"discountedMonthlyAdditions"`
	TotalPrice                 int `json:"totalPrice"`
}

// OfferComponent is the result of applying a promo-offer percent on top of an
// already-discounted total.
type OfferComponent struct {
	Percent    int `json:"percent"`
	Discount   int `json:"discount"`
	Discounted int `json:"discounted"`
}
