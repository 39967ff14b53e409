package handler

import (
	"errors"
	"net/http"

	"vpn_billing/internal/domain/subscription/repository"
	"vpn_billing/internal/domain/subscription/service"
	userRepo "vpn_billing/internal/domain/user/repository"
	"vpn_billing/pkg/response"
	"vpn_billing/pkg/utils"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	purchases service.PurchaseService
	subs      repository.SubscriptionRepository
}

func NewSubscriptionHandler(purchases service.PurchaseService, subs repository.SubscriptionRepository) *SubscriptionHandler {
	return &SubscriptionHandler{purchases: purchases, subs: subs}
}

type PurchaseInput struct {
	PeriodDays       int      `json:"periodDays" binding:"required,min=1"`
	ServerSquadUUIDs []string `json:"serverSquadUuids"`
	DeviceCount      int      `json:"deviceCount" binding:"min=0"`
	TrafficLimitGB   int      `json:"trafficLimitGb" binding:"min=0"`
}

func (i PurchaseInput) toRequest() service.PurchaseRequest {
	return service.PurchaseRequest{
		PeriodDays:       i.PeriodDays,
		ServerSquadUUIDs: i.ServerSquadUUIDs,
		DeviceCount:      i.DeviceCount,
		TrafficLimitGB:   i.TrafficLimitGB,
	}
}

// Preview prices a selection without charging.
func (h *SubscriptionHandler) Preview(c *gin.Context) {
	var input PurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := c.GetString("userID")
	quote, err := h.purchases.Preview(userID, input.toRequest())
	if err != nil {
		response.Fail(c, response.ErrPricingUnavailable, err.Error())
		return
	}

	response.Success(c, quote)
}

// Purchase charges the user's balance and applies the subscription.
func (h *SubscriptionHandler) Purchase(c *gin.Context) {
	var input PurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := c.GetString("userID")
	sub, quote, err := h.purchases.Purchase(c.Request.Context(), userID, input.toRequest())
	if err != nil {
		h.failPurchase(c, err)
		return
	}

	response.Success(c, gin.H{"subscription": sub, "quote": quote})
}

type RenewInput struct {
	PeriodDays int `json:"periodDays" binding:"required,min=1"`
}

func (h *SubscriptionHandler) Renew(c *gin.Context) {
	var input RenewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := c.GetString("userID")
	sub, quote, err := h.purchases.Renew(c.Request.Context(), userID, input.PeriodDays)
	if err != nil {
		h.failPurchase(c, err)
		return
	}

	response.Success(c, gin.H{"subscription": sub, "quote": quote})
}

type AddServerInput struct {
	SquadUUID string `json:"squadUuid" binding:"required"`
}

func (h *SubscriptionHandler) AddServer(c *gin.Context) {
	var input AddServerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := c.GetString("userID")
	sub, charged, err := h.purchases.AddServer(c.Request.Context(), userID, input.SquadUUID)
	if err != nil {
		h.failPurchase(c, err)
		return
	}

	response.Success(c, gin.H{"subscription": sub, "chargedKopeks": charged})
}

// ListTransactions returns the caller's billing ledger, newest first.
func (h *SubscriptionHandler) ListTransactions(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	userID := c.GetString("userID")
	offset, limit := p.GetPageOffset()
	transactions, total, err := h.subs.ListTransactions(userID, offset, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  transactions,
		Total: total,
		Page:  p.Page,
		Limit: limit,
	})
}

func (h *SubscriptionHandler) failPurchase(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPurchaseInProgress):
		response.Fail(c, response.ErrPurchaseInProgress, "Another purchase is in progress")
	case errors.Is(err, userRepo.ErrInsufficientBalance):
		response.Fail(c, response.ErrInsufficientBalance, "Insufficient balance")
	case errors.Is(err, service.ErrNoActiveSubscription):
		response.Fail(c, response.ErrSubscriptionNotFound, "No active subscription")
	case errors.Is(err, service.ErrServerNotFound):
		response.Fail(c, response.ErrInvalidParam, "Server is not available")
	default:
		response.Fail(c, response.ErrPricingUnavailable, err.Error())
	}
}
