package service

import (
	"context"
	"errors"
	"time"

	"vpn_billing/internal/domain/offer/model"
	"vpn_billing/internal/domain/offer/repository"
	"vpn_billing/pkg/database"
	"vpn_billing/pkg/metrics"

	"go.uber.org/zap"
)

var (
	ErrOfferNotFound  = errors.New("discount offer not found")
	ErrAlreadyClaimed = errors.New("discount offer already claimed")
	ErrOfferExpired   = errors.New("discount offer expired")
)

const claimLockTTL = 10 * time.Second

// UpsertParams carries everything a marketing trigger provides when extending
// an offer to a user.
type UpsertParams struct {
	UserID           string
	SubscriptionID   *string
	NotificationType string
	DiscountPercent  int
	ValidHours       int
	EffectType       string
	OfferType        string
}

type OfferService interface {
	Upsert(params UpsertParams) (*model.DiscountOffer, error)
	Claim(ctx context.Context, offerID, userID string, deactivate bool) (*model.DiscountOffer, error)
	PendingPercentDiscount(userID string, allowedOfferTypes []string) (*model.DiscountOffer, error)
	Consume(offer *model.DiscountOffer) error
	ListActive(userID string) ([]model.DiscountOffer, error)
	DeactivateExpired() (int64, error)
}

type offerService struct {
	repo   repository.OfferRepository
	locker database.Locker
	logger *zap.Logger
}

func NewOfferService(repo repository.OfferRepository, locker database.Locker, logger *zap.Logger) OfferService {
	return &offerService{repo: repo, locker: locker, logger: logger}
}

// Upsert creates or refreshes the offer keyed by (user, notification type). An
// existing unclaimed active offer is re-extended in place; a claimed one is
// immutable, so a fresh row is inserted instead. Balance-bonus effects were
// retired: the effect type is normalized and the bonus amount forced to zero.
func (s *offerService) Upsert(params UpsertParams) (*model.DiscountOffer, error) {
	expiresAt := time.Now().UTC().Add(time.Duration(params.ValidHours) * time.Hour)

	effectType := params.EffectType
	if effectType == "" || effectType == model.EffectBalanceBonus {
		effectType = model.EffectPercentDiscount
	}

	extraData := model.ExtraData{
		Version:   model.SchemaVersion,
		OfferType: params.OfferType,
	}

	offer, err := s.repo.FindActiveByUserAndType(params.UserID, params.NotificationType)
	if err != nil {
		return nil, err
	}

	if offer != nil && offer.ClaimedAt == nil {
		offer.DiscountPercent = params.DiscountPercent
		offer.BonusAmountKopeks = 0
		offer.ExpiresAt = expiresAt
		offer.SubscriptionID = params.SubscriptionID
		offer.EffectType = effectType
		offer.ExtraData = extraData
		if err := s.repo.Save(offer); err != nil {
			return nil, err
		}
	} else {
		offer = &model.DiscountOffer{
			UserID:            params.UserID,
			SubscriptionID:    params.SubscriptionID,
			NotificationType:  params.NotificationType,
			DiscountPercent:   params.DiscountPercent,
			BonusAmountKopeks: 0,
			EffectType:        effectType,
			ExpiresAt:         expiresAt,
			IsActive:          true,
			ExtraData:         extraData,
		}
		if err := s.repo.Create(offer); err != nil {
			return nil, err
		}
	}

	metrics.Default().OfferUpserted()
	s.logger.Info("discount offer upserted",
		zap.String("user_id", params.UserID),
		zap.String("notification_type", params.NotificationType),
		zap.Int("discount_percent", params.DiscountPercent),
		zap.Time("expires_at", expiresAt))
	return offer, nil
}

// Claim finalizes the offer's terms for the user. Claiming removes the offer
// from the refreshable pool; its discount stays usable until expiry through the
// pending lookup, which matches on claimed_at rather than is_active. Offers
// belonging to a different user are reported as not found, so an offer ID
// alone reveals nothing and cannot be claimed on the owner's behalf.
func (s *offerService) Claim(ctx context.Context, offerID, userID string, deactivate bool) (*model.DiscountOffer, error) {
	lockKey := "offer:claim:" + offerID
	acquired, err := s.locker.Acquire(ctx, lockKey, claimLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrAlreadyClaimed
	}
	defer func() { _ = s.locker.Release(ctx, lockKey) }()

	offer, err := s.repo.GetByID(offerID)
	if err != nil {
		return nil, ErrOfferNotFound
	}
	if offer.UserID != userID {
		return nil, ErrOfferNotFound
	}
	if offer.ClaimedAt != nil {
		return nil, ErrAlreadyClaimed
	}
	if offer.IsExpired(time.Now().UTC()) {
		return nil, ErrOfferExpired
	}

	now := time.Now().UTC()
	offer.ClaimedAt = &now
	if deactivate {
		offer.IsActive = false
	}
	if err := s.repo.Save(offer); err != nil {
		return nil, err
	}

	metrics.Default().OfferClaimed()
	s.logger.Info("discount offer claimed",
		zap.String("offer_id", offer.ID),
		zap.String("user_id", offer.UserID))
	return offer, nil
}

// PendingPercentDiscount returns the newest claimed, unexpired, unconsumed
// percent-discount offer for the user, or nil when none qualifies. Absence is
// expected, not an error: the purchase simply proceeds at full price.
func (s *offerService) PendingPercentDiscount(userID string, allowedOfferTypes []string) (*model.DiscountOffer, error) {
	offers, err := s.repo.ListClaimedPercentOffers(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range offers {
		if offers[i].MatchesPending(now, allowedOfferTypes) {
			return &offers[i], nil
		}
	}
	return nil, nil
}

// Consume flips the bookkeeping flags after a successful charge. Consuming an
// already-consumed offer is harmless.
func (s *offerService) Consume(offer *model.DiscountOffer) error {
	if offer.ExtraData.Consumed {
		return nil
	}

	offer.ExtraData.Consumed = true
	offer.ExtraData.ConsumedAt = time.Now().UTC().Format(time.RFC3339)
	offer.IsActive = false
	if err := s.repo.Save(offer); err != nil {
		return err
	}

	metrics.Default().OfferConsumed()
	s.logger.Info("discount offer consumed",
		zap.String("offer_id", offer.ID),
		zap.String("user_id", offer.UserID),
		zap.Int("discount_percent", offer.DiscountPercent))
	return nil
}

func (s *offerService) ListActive(userID string) ([]model.DiscountOffer, error) {
	return s.repo.ListActiveByUser(userID)
}

// DeactivateExpired sweeps every active offer past its expiry. claimed_at and
// extra_data are left untouched.
func (s *offerService) DeactivateExpired() (int64, error) {
	count, err := s.repo.DeactivateExpired(time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		metrics.Default().OffersSwept(int(count))
		s.logger.Info("expired discount offers deactivated", zap.Int64("count", count))
	}
	return count, nil
}
