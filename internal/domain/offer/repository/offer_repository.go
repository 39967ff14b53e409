package repository

import (
	"errors"
	"time"

	"vpn_billing/internal/domain/offer/model"

	"gorm.io/gorm"
)

type OfferRepository interface {
	Create(offer *model.DiscountOffer) error
	Save(offer *model.DiscountOffer) error
	GetByID(id string) (*model.DiscountOffer, error)
	// FindActiveByUserAndType returns the newest active offer for the upsert
	// key, or nil when there is none.
	FindActiveByUserAndType(userID, notificationType string) (*model.DiscountOffer, error)
	// ListClaimedPercentOffers returns the user's claimed percent-discount
	// offers, most recently claimed first.
	ListClaimedPercentOffers(userID string) ([]model.DiscountOffer, error)
	ListActiveByUser(userID string) ([]model.DiscountOffer, error)
	// DeactivateExpired flips is_active off for every active offer already past
	// its expiry and returns the number of rows affected.
	DeactivateExpired(now time.Time) (int64, error)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(offer *model.DiscountOffer) error {
	return r.db.Create(offer).Error
}

func (r *offerRepository) Save(offer *model.DiscountOffer) error {
	return r.db.Save(offer).Error
}

func (r *offerRepository) GetByID(id string) (*model.DiscountOffer, error) {
	var offer model.DiscountOffer
	if err := r.db.First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) FindActiveByUserAndType(userID, notificationType string) (*model.DiscountOffer, error) {
	var offer model.DiscountOffer
	err := r.db.
		Where("user_id = ? AND notification_type = ? AND is_active = ?", userID, notificationType, true).
		Order("created_at DESC").
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepository) ListClaimedPercentOffers(userID string) ([]model.DiscountOffer, error) {
	var offers []model.DiscountOffer
	err := r.db.
		Where("user_id = ? AND effect_type = ? AND claimed_at IS NOT NULL", userID, model.EffectPercentDiscount).
		Order("claimed_at DESC, created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) ListActiveByUser(userID string) ([]model.DiscountOffer, error) {
	var offers []model.DiscountOffer
	err := r.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.DiscountOffer{}).
		Where("is_active = ? AND expires_at < ?", true, now).
		UpdateColumn("is_active", false)
	return result.RowsAffected, result.Error
}
