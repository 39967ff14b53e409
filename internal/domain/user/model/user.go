package model

import (
	baseModel "vpn_billing/pkg/model"
)

// User is a Telegram-identified account holding a kopek balance and an optional
// promo-group assignment.
type User struct {
	baseModel.BaseModel
	TelegramID    int64       `gorm:"uniqueIndex;not null" json:"telegramId"`
	Username      string      `gorm:"type:varchar(100)" json:"username"`
	Language      string      `gorm:"type:varchar(8);default:'ru'" json:"language"`
	BalanceKopeks int         `gorm:"not null;default:0" json:"balanceKopeks"`
	PromoGroupID  *string     `gorm:"type:uuid;index" json:"promoGroupId,omitempty"`
	PromoGroup    *PromoGroup `gorm:"foreignKey:PromoGroupID" json:"promoGroup,omitempty"`
}

// GetPromoDiscount resolves the user's promo-group discount percent for the
// given pricing category and billing period. Users without a promo group get 0.
func (u *User) GetPromoDiscount(category string, periodDays int) int {
	if u == nil || u.PromoGroup == nil {
		return 0
	}
	return u.PromoGroup.GetDiscountPercent(category, periodDays)
}
