package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vpn_billing/internal/domain/offer/model"
	"vpn_billing/internal/domain/offer/service"
	"vpn_billing/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOfferService is a mock of service.OfferService
type MockOfferService struct {
	mock.Mock
}

func (m *MockOfferService) Upsert(params service.UpsertParams) (*model.DiscountOffer, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountOffer), args.Error(1)
}

func (m *MockOfferService) Claim(ctx context.Context, offerID, userID string, deactivate bool) (*model.DiscountOffer, error) {
	args := m.Called(ctx, offerID, userID, deactivate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountOffer), args.Error(1)
}

func (m *MockOfferService) PendingPercentDiscount(userID string, allowedOfferTypes []string) (*model.DiscountOffer, error) {
	args := m.Called(userID, allowedOfferTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountOffer), args.Error(1)
}

func (m *MockOfferService) Consume(offer *model.DiscountOffer) error {
	args := m.Called(offer)
	return args.Error(0)
}

func (m *MockOfferService) ListActive(userID string) ([]model.DiscountOffer, error) {
	args := m.Called(userID)
	return args.Get(0).([]model.DiscountOffer), args.Error(1)
}

func (m *MockOfferService) DeactivateExpired() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func claimRouter(svc service.OfferService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
	})
	h := NewOfferHandler(svc, nil)
	r.POST("/miniapp/promo-offers/:id/claim", h.ClaimOffer)
	return r
}

func TestClaimOfferPassesCallerIdentity(t *testing.T) {
	svc := new(MockOfferService)
	svc.On("Claim", mock.Anything, "offer-1", "attacker", false).
		Return(nil, service.ErrOfferNotFound)

	r := claimRouter(svc, "attacker")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/miniapp/promo-offers/offer-1/claim", nil)
	r.ServeHTTP(w, req)

	var body response.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, response.ErrOfferNotFound, body.Code,
		"an offer owned by someone else is indistinguishable from a missing one")
	svc.AssertExpectations(t)
}

func TestClaimOfferReturnsClaimedOffer(t *testing.T) {
	offer := &model.DiscountOffer{
		UserID:          "user-1",
		DiscountPercent: 20,
	}
	offer.ID = "offer-1"

	svc := new(MockOfferService)
	svc.On("Claim", mock.Anything, "offer-1", "user-1", false).Return(offer, nil)

	r := claimRouter(svc, "user-1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/miniapp/promo-offers/offer-1/claim", nil)
	r.ServeHTTP(w, req)

	var body response.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, response.CodeSuccess, body.Code)
	svc.AssertExpectations(t)
}
