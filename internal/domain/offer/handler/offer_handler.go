package handler

import (
	"errors"
	"net/http"

	"vpn_billing/internal/domain/offer/service"
	"vpn_billing/internal/pkg/worker"
	"vpn_billing/pkg/response"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	service service.OfferService
	pool    *worker.WorkerPool
}

func NewOfferHandler(service service.OfferService, pool *worker.WorkerPool) *OfferHandler {
	return &OfferHandler{service: service, pool: pool}
}

// ListOffers returns the caller's active discount offers.
func (h *OfferHandler) ListOffers(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	offers, err := h.service.ListActive(userID.(string))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, offers)
}

// ClaimOffer marks an offer as claimed so it applies to the next purchase.
func (h *OfferHandler) ClaimOffer(c *gin.Context) {
	offerID := c.Param("id")

	userID, exists := c.Get("userID")
	if !exists {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	// Ownership is enforced inside Claim; a foreign offer is never touched.
	offer, err := h.service.Claim(c.Request.Context(), offerID, userID.(string), false)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferNotFound):
			response.Fail(c, response.ErrOfferNotFound, "Offer not found")
		case errors.Is(err, service.ErrAlreadyClaimed):
			response.Fail(c, response.ErrOfferAlreadyClaimed, "Offer already claimed")
		case errors.Is(err, service.ErrOfferExpired):
			response.Fail(c, response.ErrOfferExpired, "Offer expired")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}

	response.Success(c, offer)
}

type TriggerInput struct {
	UserID           string `json:"userId" binding:"required"`
	SubscriptionID   string `json:"subscriptionId"`
	NotificationType string `json:"notificationType" binding:"required"`
	DiscountPercent  int    `json:"discountPercent" binding:"required,min=1,max=100"`
	ValidHours       int    `json:"validHours" binding:"required,min=1"`
	OfferType        string `json:"offerType"`
}

// IngestTrigger accepts a marketing trigger and queues offer creation.
func (h *OfferHandler) IngestTrigger(c *gin.Context) {
	var input TriggerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	queued := h.pool.AddTask(worker.OfferTask{
		UserID:           input.UserID,
		SubscriptionID:   input.SubscriptionID,
		NotificationType: input.NotificationType,
		DiscountPercent:  input.DiscountPercent,
		ValidHours:       input.ValidHours,
		OfferType:        input.OfferType,
	})
	if !queued {
		response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "Trigger queue is full")
		return
	}

	response.Success(c, "Trigger accepted")
}
