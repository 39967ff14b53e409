package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	baseModel "vpn_billing/pkg/model"
)

// Effect types a discount offer can carry. Historical balance_bonus rows are
// migrated to percent_discount; new offers are percent-discount only.
const (
	EffectPercentDiscount = "percent_discount"
	EffectBalanceBonus    = "balance_bonus"
)

// SchemaVersion tags the extra-data payload shape. Rows without it (legacy
// offers) are never honored by the pending lookup.
const SchemaVersion = "percent_discount_v1"

// ExtraData is the offer's versioned sub-protocol, stored as JSONB. Unknown
// fields in legacy rows are dropped on scan; such rows fail the version check
// instead of crashing the lookup.
type ExtraData struct {
	Version    string `json:"version,omitempty"`
	OfferType  string `json:"offer_type,omitempty"`
	Consumed   bool   `json:"consumed,omitempty"`
	ConsumedAt string `json:"consumed_at,omitempty"`
}

// Value implements driver.Valuer for JSONB storage.
func (e ExtraData) Value() (driver.Value, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for JSONB storage.
func (e *ExtraData) Scan(value interface{}) error {
	if value == nil {
		*e = ExtraData{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for ExtraData")
	}

	if len(data) == 0 {
		*e = ExtraData{}
		return nil
	}
	return json.Unmarshal(data, e)
}

// DiscountOffer is a time-limited promotional discount extended to one user.
// Its lifecycle: upserted by a marketing trigger, claimed by the user, matched
// by the pending lookup at purchase time, consumed exactly once after a
// successful charge, and swept once expired.
type DiscountOffer struct {
	baseModel.BaseModel
	UserID           string     `gorm:"type:uuid;index;not null" json:"userId"`
	SubscriptionID   *string    `gorm:"type:uuid" json:"subscriptionId,omitempty"`
	NotificationType string     `gorm:"type:varchar(100);index;not null" json:"notificationType"`
	DiscountPercent  int        `gorm:"not null;default:0" json:"discountPercent"`
	// BonusAmountKopeks is retained for backward compatibility and is always
	// forced to 0 at the lifecycle boundary.
	BonusAmountKopeks int        `gorm:"not null;default:0" json:"bonusAmountKopeks"`
	EffectType        string     `gorm:"type:varchar(32);not null;default:'percent_discount'" json:"effectType"`
	ExpiresAt         time.Time  `gorm:"not null;index" json:"expiresAt"`
	ClaimedAt         *time.Time `json:"claimedAt,omitempty"`
	IsActive          bool       `gorm:"not null;default:true;index" json:"isActive"`
	ExtraData         ExtraData  `gorm:"type:jsonb" json:"extraData"`
}

// IsExpired reports whether the offer is inert at the given instant, regardless
// of the persisted IsActive value.
func (o *DiscountOffer) IsExpired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

// MatchesPending reports whether a claimed offer is still usable by the pricing
// overlay: unexpired, carrying the current schema tag, not consumed, and — when
// an allow-list is given — of a permitted offer type.
func (o *DiscountOffer) MatchesPending(now time.Time, allowedOfferTypes []string) bool {
	if o.IsExpired(now) {
		return false
	}
	if o.ExtraData.Version != SchemaVersion {
		return false
	}
	if o.ExtraData.Consumed {
		return false
	}
	if len(allowedOfferTypes) > 0 {
		for _, offerType := range allowedOfferTypes {
			if o.ExtraData.OfferType == offerType {
				return true
			}
		}
		return false
	}
	return true
}
