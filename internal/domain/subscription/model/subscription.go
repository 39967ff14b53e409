package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	baseModel "vpn_billing/pkg/model"
)

// Subscription statuses
const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// SquadList is a JSONB-stored list of connected server squad UUIDs.
type SquadList []string

func (s SquadList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *SquadList) Scan(value interface{}) error {
	if value == nil {
		*s = SquadList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for SquadList")
	}

	if len(data) == 0 {
		*s = SquadList{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// Subscription is a user's VPN plan: the purchased period, traffic and device
// allowances, and the connected server squads. PaidPriceKopeks records what the
// user actually paid after every discount.
type Subscription struct {
	baseModel.BaseModel
	UserID          string    `gorm:"type:uuid;index;not null" json:"userId"`
	Status          string    `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	StartDate       time.Time `gorm:"not null" json:"startDate"`
	EndDate         time.Time `gorm:"not null;index" json:"endDate"`
	PeriodDays      int       `gorm:"not null" json:"periodDays"`
	TrafficLimitGB  int       `gorm:"not null;default:0" json:"trafficLimitGb"`
	DeviceLimit     int       `gorm:"not null;default:1" json:"deviceLimit"`
	ConnectedSquads SquadList `gorm:"type:jsonb" json:"connectedSquads"`
	PaidPriceKopeks int       `gorm:"not null;default:0" json:"paidPriceKopeks"`
}

// IsActive reports whether the subscription is live at the given instant.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == StatusActive && s.EndDate.After(now)
}
