package model

import (
	baseModel "vpn_billing/pkg/model"
)

// ServerSquad is a sellable server location with a per-month price. Squads that
// are unavailable or full are excluded from pricing.
type ServerSquad struct {
	baseModel.BaseModel
	SquadUUID   string `gorm:"type:uuid;uniqueIndex;not null" json:"squadUuid"`
	DisplayName string `gorm:"type:varchar(120);not null" json:"displayName"`
	CountryCode string `gorm:"type:varchar(2)" json:"countryCode"`
	PriceKopeks int    `gorm:"not null;default:0" json:"priceKopeks"`
	IsAvailable bool   `gorm:"not null;default:true" json:"isAvailable"`
	IsFull      bool   `gorm:"not null;default:false" json:"isFull"`
}
