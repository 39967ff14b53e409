package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	baseModel "vpn_billing/pkg/model"
	"vpn_billing/pkg/pricing"
)

// PeriodDiscounts maps a pricing category to period-length (days) keyed percent
// overrides, stored as a JSONB column. An override wins over the group's flat
// percent for that category.
type PeriodDiscounts map[string]map[int]int

// Value implements driver.Valuer for JSONB storage.
func (p PeriodDiscounts) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for JSONB storage.
func (p *PeriodDiscounts) Scan(value interface{}) error {
	if value == nil {
		*p = PeriodDiscounts{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for PeriodDiscounts")
	}

	if len(data) == 0 {
		*p = PeriodDiscounts{}
		return nil
	}
	return json.Unmarshal(data, p)
}

// PromoGroup groups users sharing the same discount configuration. Flat
// per-category percents apply to any period; PeriodDiscounts holds optional
// period-specific overrides per category.
type PromoGroup struct {
	baseModel.BaseModel
	Name                   string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	PeriodDiscountPercent  int             `gorm:"not null;default:0" json:"periodDiscountPercent"`
	ServerDiscountPercent  int             `gorm:"not null;default:0" json:"serverDiscountPercent"`
	TrafficDiscountPercent int             `gorm:"not null;default:0" json:"trafficDiscountPercent"`
	DeviceDiscountPercent  int             `gorm:"not null;default:0" json:"deviceDiscountPercent"`
	PeriodDiscounts        PeriodDiscounts `gorm:"type:jsonb" json:"periodDiscounts"`
}

// GetDiscountPercent resolves the discount percent for a pricing category and
// billing period. A period-keyed override wins over the flat percent; absent
// configuration resolves to 0. Results are clamped to [0,100] and the method
// never errors.
func (g *PromoGroup) GetDiscountPercent(category string, periodDays int) int {
	if g == nil {
		return 0
	}

	if overrides, ok := g.PeriodDiscounts[category]; ok {
		if percent, ok := overrides[periodDays]; ok {
			return clampPercent(percent)
		}
	}

	switch category {
	case pricing.CategoryPeriod:
		return clampPercent(g.PeriodDiscountPercent)
	case pricing.CategoryServers:
		return clampPercent(g.ServerDiscountPercent)
	case pricing.CategoryTraffic:
		return clampPercent(g.TrafficDiscountPercent)
	case pricing.CategoryDevices:
		return clampPercent(g.DeviceDiscountPercent)
	}
	return 0
}

func clampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
