package model

import (
	baseModel "vpn_billing/pkg/model"
)

// Balance transaction types
const (
	TransactionPurchase  = "subscription_purchase"
	TransactionRenewal   = "subscription_renewal"
	TransactionServerAdd = "server_add"
)

// Transaction records one balance movement. Charges store negative amounts so
// the ledger sums to the user's balance history.
type Transaction struct {
	baseModel.BaseModel
	UserID         string  `gorm:"type:uuid;index;not null" json:"userId"`
	SubscriptionID *string `gorm:"type:uuid" json:"subscriptionId,omitempty"`
	Type           string  `gorm:"type:varchar(32);not null" json:"type"`
	AmountKopeks   int     `gorm:"not null" json:"amountKopeks"`
	Description    string  `gorm:"type:varchar(255)" json:"description"`
}
