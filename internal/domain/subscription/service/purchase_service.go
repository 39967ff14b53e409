package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	offerModel "vpn_billing/internal/domain/offer/model"
	offerService "vpn_billing/internal/domain/offer/service"
	pricingModel "vpn_billing/internal/domain/pricing/model"
	pricingService "vpn_billing/internal/domain/pricing/service"
	serverRepo "vpn_billing/internal/domain/server/repository"
	"vpn_billing/internal/domain/subscription/model"
	"vpn_billing/internal/domain/subscription/repository"
	userRepo "vpn_billing/internal/domain/user/repository"
	"vpn_billing/pkg/database"
	"vpn_billing/pkg/metrics"
	"vpn_billing/pkg/pricing"

	"go.uber.org/zap"
)

var (
	ErrPurchaseInProgress   = errors.New("another purchase is already in progress")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrServerNotFound       = errors.New("server not found")
)

const purchaseLockTTL = 30 * time.Second

// PurchaseRequest is the user's subscription selection.
type PurchaseRequest struct {
	PeriodDays       int
	ServerSquadUUIDs []string
	DeviceCount      int
	TrafficLimitGB   int
}

// Quote is a fully priced selection: the itemized breakdown, the promo-offer
// overlay when one applies, and the final chargeable price.
type Quote struct {
	Breakdown  *pricingModel.Breakdown      `json:"breakdown"`
	PromoOffer *pricingModel.OfferComponent `json:"promoOffer,omitempty"`
	Offer      *offerModel.DiscountOffer    `json:"-"`
	FinalPrice int                          `json:"finalPrice"`
}

type PurchaseService interface {
	// Preview prices a selection without charging. Advisory only: the percent
	// resolved at charge time is authoritative.
	Preview(userID string, req PurchaseRequest) (*Quote, error)
	Purchase(ctx context.Context, userID string, req PurchaseRequest) (*model.Subscription, *Quote, error)
	// Renew re-purchases the stored selection of the active subscription.
	Renew(ctx context.Context, userID string, periodDays int) (*model.Subscription, *Quote, error)
	// AddServer connects one more squad to the active subscription, charging
	// its discounted monthly price prorated over the remaining months.
	AddServer(ctx context.Context, userID string, squadUUID string) (*model.Subscription, int, error)
}

type purchaseService struct {
	calc    *pricingService.Calculator
	users   userRepo.UserRepository
	servers serverRepo.ServerRepository
	subs    repository.SubscriptionRepository
	offers  offerService.OfferService
	locker  database.Locker
	logger  *zap.Logger
}

func NewPurchaseService(
	calc *pricingService.Calculator,
	users userRepo.UserRepository,
	servers serverRepo.ServerRepository,
	subs repository.SubscriptionRepository,
	offers offerService.OfferService,
	locker database.Locker,
	logger *zap.Logger,
) PurchaseService {
	return &purchaseService{
		calc:    calc,
		users:   users,
		servers: servers,
		subs:    subs,
		offers:  offers,
		locker:  locker,
		logger:  logger,
	}
}

func (s *purchaseService) Preview(userID string, req PurchaseRequest) (*Quote, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	selection, err := s.buildSelection(req)
	if err != nil {
		return nil, err
	}

	return s.quote(user, userID, selection)
}

func (s *purchaseService) Purchase(ctx context.Context, userID string, req PurchaseRequest) (*model.Subscription, *Quote, error) {
	lockKey := purchaseLockKey(userID)
	acquired, err := s.locker.Acquire(ctx, lockKey, purchaseLockTTL)
	if err != nil {
		return nil, nil, err
	}
	if !acquired {
		return nil, nil, ErrPurchaseInProgress
	}
	defer func() { _ = s.locker.Release(ctx, lockKey) }()

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}

	selection, err := s.buildSelection(req)
	if err != nil {
		return nil, nil, err
	}

	// Charge-time quote: the pending offer resolved here is authoritative,
	// whatever an earlier preview showed.
	quote, err := s.quote(user, userID, selection)
	if err != nil {
		metrics.Default().Purchase("pricing_error")
		return nil, nil, err
	}

	now := time.Now().UTC()
	subscription, err := s.subs.GetActiveByUserID(userID, now)
	if err != nil {
		return nil, nil, err
	}

	transactionType := model.TransactionPurchase
	if subscription == nil {
		subscription = &model.Subscription{
			UserID:    userID,
			Status:    model.StatusActive,
			StartDate: now,
		}
		subscription.EndDate = now.AddDate(0, 0, req.PeriodDays)
	} else {
		transactionType = model.TransactionRenewal
		subscription.EndDate = subscription.EndDate.AddDate(0, 0, req.PeriodDays)
	}
	subscription.PeriodDays = req.PeriodDays
	subscription.TrafficLimitGB = req.TrafficLimitGB
	subscription.DeviceLimit = req.DeviceCount
	subscription.ConnectedSquads = append(model.SquadList{}, req.ServerSquadUUIDs...)
	subscription.PaidPriceKopeks = quote.FinalPrice

	transaction := &model.Transaction{
		UserID:       userID,
		Type:         transactionType,
		AmountKopeks: -quote.FinalPrice,
		Description:  fmt.Sprintf("%d days subscription", req.PeriodDays),
	}

	if err := s.subs.ChargeAndApply(userID, quote.FinalPrice, subscription, transaction); err != nil {
		if errors.Is(err, userRepo.ErrInsufficientBalance) {
			metrics.Default().Purchase("insufficient_balance")
		} else {
			metrics.Default().Purchase("charge_error")
		}
		return nil, nil, err
	}

	// The offer is consumed only after the charge succeeded.
	if quote.Offer != nil && quote.PromoOffer != nil {
		if err := s.offers.Consume(quote.Offer); err != nil {
			s.logger.Error("failed to consume promo offer after charge",
				zap.String("offer_id", quote.Offer.ID),
				zap.Error(err))
		}
	}

	metrics.Default().Purchase("ok")
	s.logger.Info("subscription purchased",
		zap.String("user_id", userID),
		zap.String("subscription_id", subscription.ID),
		zap.Int("period_days", req.PeriodDays),
		zap.Int("final_price", quote.FinalPrice))
	return subscription, quote, nil
}

func (s *purchaseService) Renew(ctx context.Context, userID string, periodDays int) (*model.Subscription, *Quote, error) {
	subscription, err := s.subs.GetActiveByUserID(userID, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}
	if subscription == nil {
		return nil, nil, ErrNoActiveSubscription
	}

	return s.Purchase(ctx, userID, PurchaseRequest{
		PeriodDays:       periodDays,
		ServerSquadUUIDs: subscription.ConnectedSquads,
		DeviceCount:      subscription.DeviceLimit,
		TrafficLimitGB:   subscription.TrafficLimitGB,
	})
}

func (s *purchaseService) AddServer(ctx context.Context, userID string, squadUUID string) (*model.Subscription, int, error) {
	lockKey := purchaseLockKey(userID)
	acquired, err := s.locker.Acquire(ctx, lockKey, purchaseLockTTL)
	if err != nil {
		return nil, 0, err
	}
	if !acquired {
		return nil, 0, ErrPurchaseInProgress
	}
	defer func() { _ = s.locker.Release(ctx, lockKey) }()

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	subscription, err := s.subs.GetActiveByUserID(userID, now)
	if err != nil {
		return nil, 0, err
	}
	if subscription == nil {
		return nil, 0, ErrNoActiveSubscription
	}

	squad, err := s.servers.GetByUUID(squadUUID)
	if err != nil || !squad.IsAvailable || squad.IsFull {
		return nil, 0, ErrServerNotFound
	}

	// One server's per-month price, discounted, then prorated over the months
	// the subscription has left.
	percent := user.GetPromoDiscount(pricing.CategoryServers, subscription.PeriodDays)
	discountedPerMonth, _ := pricing.ApplyPercentageDiscount(squad.PriceKopeks, percent)
	price, months := pricing.CalculateProratedPrice(discountedPerMonth, subscription.EndDate, now, 1)

	finalPrice, offer, component, err := s.applyPendingOffer(userID, price)
	if err != nil {
		return nil, 0, err
	}

	subscription.ConnectedSquads = append(subscription.ConnectedSquads, squadUUID)
	transaction := &model.Transaction{
		UserID:       userID,
		Type:         model.TransactionServerAdd,
		AmountKopeks: -finalPrice,
		Description:  fmt.Sprintf("%s for %d months", squad.DisplayName, months),
	}

	if err := s.subs.ChargeAndApply(userID, finalPrice, subscription, transaction); err != nil {
		return nil, 0, err
	}

	if offer != nil && component != nil {
		if err := s.offers.Consume(offer); err != nil {
			s.logger.Error("failed to consume promo offer after charge",
				zap.String("offer_id", offer.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("server added to subscription",
		zap.String("user_id", userID),
		zap.String("squad_uuid", squadUUID),
		zap.Int("price", finalPrice))
	return subscription, finalPrice, nil
}

// buildSelection resolves the selected squads into per-month prices. Unknown
// squads are priced as unavailable rather than failing the whole quote.
func (s *purchaseService) buildSelection(req PurchaseRequest) (pricingModel.Selection, error) {
	selection := pricingModel.Selection{
		PeriodDays:     req.PeriodDays,
		DeviceCount:    req.DeviceCount,
		TrafficLimitGB: req.TrafficLimitGB,
	}

	if len(req.ServerSquadUUIDs) == 0 {
		return selection, nil
	}

	squads, err := s.servers.GetByUUIDs(req.ServerSquadUUIDs)
	if err != nil {
		return selection, err
	}

	byUUID := make(map[string]int, len(squads))
	for i := range squads {
		byUUID[squads[i].SquadUUID] = i
	}

	for _, uuid := range req.ServerSquadUUIDs {
		i, ok := byUUID[uuid]
		if !ok {
			s.logger.Warn("selected squad not found", zap.String("squad_uuid", uuid))
			selection.Servers = append(selection.Servers, pricingModel.ServerPrice{SquadUUID: uuid})
			continue
		}
		selection.Servers = append(selection.Servers, pricingModel.ServerPrice{
			SquadUUID:   squads[i].SquadUUID,
			Name:        squads[i].DisplayName,
			PriceKopeks: squads[i].PriceKopeks,
			Available:   squads[i].IsAvailable && !squads[i].IsFull,
		})
	}

	return selection, nil
}

func (s *purchaseService) quote(source pricingService.DiscountSource, userID string, selection pricingModel.Selection) (*Quote, error) {
	breakdown, err := s.calc.Calculate(source, selection)
	if err != nil {
		return nil, err
	}

	quote := &Quote{
		Breakdown:  breakdown,
		FinalPrice: breakdown.TotalPrice,
	}

	finalPrice, offer, component, err := s.applyPendingOffer(userID, breakdown.TotalPrice)
	if err != nil {
		return nil, err
	}
	quote.FinalPrice = finalPrice
	quote.Offer = offer
	quote.PromoOffer = component

	return quote, nil
}

// applyPendingOffer overlays the user's pending promo-offer percent, if any,
// once on top of an already-discounted total.
func (s *purchaseService) applyPendingOffer(userID string, total int) (int, *offerModel.DiscountOffer, *pricingModel.OfferComponent, error) {
	offer, err := s.offers.PendingPercentDiscount(userID, nil)
	if err != nil {
		return 0, nil, nil, err
	}
	if offer == nil {
		return total, nil, nil, nil
	}

	component := s.calc.ApplyPromoOffer(total, offer.DiscountPercent)
	if component.Discount == 0 {
		return total, nil, nil, nil
	}
	return component.Discounted, offer, &component, nil
}

func purchaseLockKey(userID string) string {
	return "purchase:lock:" + userID
}
