package service

import (
	"context"
	"testing"
	"time"

	offerModel "vpn_billing/internal/domain/offer/model"
	offerService "vpn_billing/internal/domain/offer/service"
	pricingModel "vpn_billing/internal/domain/pricing/model"
	pricingService "vpn_billing/internal/domain/pricing/service"
	serverModel "vpn_billing/internal/domain/server/model"
	"vpn_billing/internal/domain/subscription/model"
	userModel "vpn_billing/internal/domain/user/model"
	userRepo "vpn_billing/internal/domain/user/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock of user repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *userModel.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*userModel.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userModel.User), args.Error(1)
}

func (m *MockUserRepository) GetByTelegramID(telegramID int64) (*userModel.User, error) {
	args := m.Called(telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userModel.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *userModel.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) AssignPromoGroup(userID, promoGroupID string) error {
	args := m.Called(userID, promoGroupID)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(userID string, amountKopeks int) error {
	args := m.Called(userID, amountKopeks)
	return args.Error(0)
}

func (m *MockUserRepository) AddBalance(userID string, amountKopeks int) error {
	args := m.Called(userID, amountKopeks)
	return args.Error(0)
}

// MockServerRepository is a mock of server repository.ServerRepository
type MockServerRepository struct {
	mock.Mock
}

func (m *MockServerRepository) Create(squad *serverModel.ServerSquad) error {
	args := m.Called(squad)
	return args.Error(0)
}

func (m *MockServerRepository) GetByUUID(squadUUID string) (*serverModel.ServerSquad, error) {
	args := m.Called(squadUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*serverModel.ServerSquad), args.Error(1)
}

func (m *MockServerRepository) GetByUUIDs(squadUUIDs []string) ([]serverModel.ServerSquad, error) {
	args := m.Called(squadUUIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]serverModel.ServerSquad), args.Error(1)
}

func (m *MockServerRepository) ListAvailable() ([]serverModel.ServerSquad, error) {
	args := m.Called()
	return args.Get(0).([]serverModel.ServerSquad), args.Error(1)
}

func (m *MockServerRepository) Update(squad *serverModel.ServerSquad) error {
	args := m.Called(squad)
	return args.Error(0)
}

// MockSubscriptionRepository is a mock of SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(subscription *model.Subscription) error {
	args := m.Called(subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Save(subscription *model.Subscription) error {
	args := m.Called(subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetByID(id string) (*model.Subscription, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetActiveByUserID(userID string, now time.Time) (*model.Subscription, error) {
	args := m.Called(userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) CreateTransaction(transaction *model.Transaction) error {
	args := m.Called(transaction)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ListTransactions(userID string, offset, limit int) ([]model.Transaction, int64, error) {
	args := m.Called(userID, offset, limit)
	return args.Get(0).([]model.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubscriptionRepository) ChargeAndApply(userID string, amountKopeks int, subscription *model.Subscription, transaction *model.Transaction) error {
	args := m.Called(userID, amountKopeks, subscription, transaction)
	if args.Error(0) == nil && subscription.ID == "" {
		subscription.ID = "sub-1"
	}
	return args.Error(0)
}

// MockOfferService is a mock of offer service.OfferService
type MockOfferService struct {
	mock.Mock
}

func (m *MockOfferService) Upsert(params offerService.UpsertParams) (*offerModel.DiscountOffer, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offerModel.DiscountOffer), args.Error(1)
}

func (m *MockOfferService) Claim(ctx context.Context, offerID, userID string, deactivate bool) (*offerModel.DiscountOffer, error) {
	args := m.Called(ctx, offerID, userID, deactivate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offerModel.DiscountOffer), args.Error(1)
}

func (m *MockOfferService) ListActive(userID string) ([]offerModel.DiscountOffer, error) {
	args := m.Called(userID)
	return args.Get(0).([]offerModel.DiscountOffer), args.Error(1)
}

func (m *MockOfferService) DeactivateExpired() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOfferService) PendingPercentDiscount(userID string, allowedOfferTypes []string) (*offerModel.DiscountOffer, error) {
	args := m.Called(userID, allowedOfferTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offerModel.DiscountOffer), args.Error(1)
}

func (m *MockOfferService) Consume(offer *offerModel.DiscountOffer) error {
	args := m.Called(offer)
	return args.Error(0)
}

// fakeLocker always grants or denies the lock.
type fakeLocker struct {
	denied bool
}

func (f *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return !f.denied, nil
}

func (f *fakeLocker) Release(ctx context.Context, key string) error {
	return nil
}

func newTestCalculator() *pricingService.Calculator {
	return pricingService.NewCalculator(pricingModel.Tables{
		PeriodPrices:       map[int]int{30: 10000},
		TrafficPrices:      map[int]int{50: 3000},
		DefaultDeviceLimit: 1,
		PricePerDevice:     1500,
	}, zap.NewNop())
}

func testUser() *userModel.User {
	user := &userModel.User{
		TelegramID:    100500,
		BalanceKopeks: 50000,
		PromoGroup: &userModel.PromoGroup{
			PeriodDiscountPercent:  10,
			ServerDiscountPercent:  5,
			TrafficDiscountPercent: 20,
		},
	}
	user.ID = "user-1"
	return user
}

func testRequest() PurchaseRequest {
	return PurchaseRequest{
		PeriodDays:       30,
		ServerSquadUUIDs: []string{"squad-1"},
		DeviceCount:      1,
		TrafficLimitGB:   50,
	}
}

func testSquads() []serverModel.ServerSquad {
	squad := serverModel.ServerSquad{
		SquadUUID:   "squad-1",
		DisplayName: "Amsterdam",
		PriceKopeks: 2000,
		IsAvailable: true,
	}
	squad.ID = "srv-1"
	return []serverModel.ServerSquad{squad}
}

func claimedOffer(percent int) *offerModel.DiscountOffer {
	claimedAt := time.Now().UTC().Add(-time.Hour)
	offer := &offerModel.DiscountOffer{
		UserID:          "user-1",
		EffectType:      offerModel.EffectPercentDiscount,
		DiscountPercent: percent,
		ClaimedAt:       &claimedAt,
		ExpiresAt:       time.Now().UTC().Add(time.Hour),
		ExtraData:       offerModel.ExtraData{Version: offerModel.SchemaVersion},
	}
	offer.ID = "offer-1"
	return offer
}

func TestPreviewWithoutOffer(t *testing.T) {
	users := new(MockUserRepository)
	servers := new(MockServerRepository)
	subs := new(MockSubscriptionRepository)
	offers := new(MockOfferService)

	users.On("GetByID", "user-1").Return(testUser(), nil)
	servers.On("GetByUUIDs", []string{"squad-1"}).Return(testSquads(), nil)
	offers.On("PendingPercentDiscount", "user-1", []string(nil)).Return(nil, nil)

	svc := NewPurchaseService(newTestCalculator(), users, servers, subs, offers, &fakeLocker{}, zap.NewNop())
	quote, err := svc.Preview("user-1", testRequest())

	require.NoError(t, err)
	assert.Equal(t, 13300, quote.Breakdown.TotalPrice)
	assert.Equal(t, 13300, quote.FinalPrice)
	assert.Nil(t, quote.PromoOffer)
}

func TestPurchaseAppliesAndConsumesOffer(t *testing.T) {
	users := new(MockUserRepository)
	servers := new(MockServerRepository)
	subs := new(MockSubscriptionRepository)
	offers := new(MockOfferService)

	users.On("GetByID", "user-1").Return(testUser(), nil)
	servers.On("GetByUUIDs", []string{"squad-1"}).Return(testSquads(), nil)
	offers.On("PendingPercentDiscount", "user-1", []string(nil)).Return(claimedOffer(10), nil)
	offers.On("Consume", mock.AnythingOfType("*model.DiscountOffer")).Return(nil)
	subs.On("GetActiveByUserID", "user-1", mock.AnythingOfType("time.Time")).Return(nil, nil)
	subs.On("ChargeAndApply", "user-1", 11970, mock.AnythingOfType("*model.Subscription"), mock.AnythingOfType("*model.Transaction")).Return(nil)

	svc := NewPurchaseService(newTestCalculator(), users, servers, subs, offers, &fakeLocker{}, zap.NewNop())
	subscription, quote, err := svc.Purchase(context.Background(), "user-1", testRequest())

	require.NoError(t, err)
	assert.Equal(t, 13300, quote.Breakdown.TotalPrice)
	assert.Equal(t, 11970, quote.FinalPrice)
	assert.Equal(t, 1330, quote.PromoOffer.Discount)
	assert.Equal(t, model.StatusActive, subscription.Status)
	offers.AssertCalled(t, "Consume", mock.AnythingOfType("*model.DiscountOffer"))
}

func TestPurchaseWithoutOfferSkipsConsume(t *testing.T) {
	users := new(MockUserRepository)
	servers := new(MockServerRepository)
	subs := new(MockSubscriptionRepository)
	offers := new(MockOfferService)

	users.On("GetByID", "user-1").Return(testUser(), nil)
	servers.On("GetByUUIDs", []string{"squad-1"}).Return(testSquads(), nil)
	offers.On("PendingPercentDiscount", "user-1", []string(nil)).Return(nil, nil)
	subs.On("GetActiveByUserID", "user-1", mock.AnythingOfType("time.Time")).Return(nil, nil)
	subs.On("ChargeAndApply", "user-1", 13300, mock.AnythingOfType("*model.Subscription"), mock.AnythingOfType("*model.Transaction")).Return(nil)

	svc := NewPurchaseService(newTestCalculator(), users, servers, subs, offers, &fakeLocker{}, zap.NewNop())
	_, quote, err := svc.Purchase(context.Background(), "user-1", testRequest())

	require.NoError(t, err)
	assert.Equal(t, 13300, quote.FinalPrice)
	offers.AssertNotCalled(t, "Consume", mock.Anything)
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	users := new(MockUserRepository)
	servers := new(MockServerRepository)
	subs := new(MockSubscriptionRepository)
	offers := new(MockOfferService)

	users.On("GetByID", "user-1").Return(testUser(), nil)
	servers.On("GetByUUIDs", []string{"squad-1"}).Return(testSquads(), nil)
	offers.On("PendingPercentDiscount", "user-1", []string(nil)).Return(nil, nil)
	subs.On("GetActiveByUserID", "user-1", mock.AnythingOfType("time.Time")).Return(nil, nil)
	subs.On("ChargeAndApply", "user-1", 13300, mock.Anything, mock.Anything).Return(userRepo.ErrInsufficientBalance)

	svc := NewPurchaseService(newTestCalculator(), users, servers, subs, offers, &fakeLocker{}, zap.NewNop())
	_, _, err := svc.Purchase(context.Background(), "user-1", testRequest())

	assert.ErrorIs(t, err, userRepo.ErrInsufficientBalance)
	offers.AssertNotCalled(t, "Consume", mock.Anything)
}

func TestPurchaseLockContention(t *testing.T) {
	svc := NewPurchaseService(newTestCalculator(), new(MockUserRepository), new(MockServerRepository),
		new(MockSubscriptionRepository), new(MockOfferService), &fakeLocker{denied: true}, zap.NewNop())

	_, _, err := svc.Purchase(context.Background(), "user-1", testRequest())
	assert.ErrorIs(t, err, ErrPurchaseInProgress)
}

func TestAddServerProratesRemainingMonths(t *testing.T) {
	users := new(MockUserRepository)
	servers := new(MockServerRepository)
	subs := new(MockSubscriptionRepository)
	offers := new(MockOfferService)

	users.On("GetByID", "user-1").Return(testUser(), nil)

	subscription := &model.Subscription{
		UserID:          "user-1",
		Status:          model.StatusActive,
		PeriodDays:      90,
		EndDate:         time.Now().UTC().AddDate(0, 0, 60),
		ConnectedSquads: model.SquadList{"squad-1"},
	}
	subscription.ID = "sub-1"
	subs.On("GetActiveByUserID", "user-1", mock.AnythingOfType("time.Time")).Return(subscription, nil)

	squad := &serverModel.ServerSquad{
		SquadUUID:   "squad-2",
		DisplayName: "Frankfurt",
		PriceKopeks: 2000,
		IsAvailable: true,
	}
	servers.On("GetByUUID", "squad-2").Return(squad, nil)
	offers.On("PendingPercentDiscount", "user-1", []string(nil)).Return(nil, nil)

	// 5% server discount -> 1900/month, 2 months remaining -> 3800
	subs.On("ChargeAndApply", "user-1", 3800, subscription, mock.AnythingOfType("*model.Transaction")).Return(nil)

	svc := NewPurchaseService(newTestCalculator(), users, servers, subs, offers, &fakeLocker{}, zap.NewNop())
	updated, price, err := svc.AddServer(context.Background(), "user-1", "squad-2")

	require.NoError(t, err)
	assert.Equal(t, 3800, price)
	assert.Contains(t, updated.ConnectedSquads, "squad-2")
}
