package handler

import (
	"net/http"

	"vpn_billing/internal/domain/server/model"
	"vpn_billing/internal/domain/server/repository"
	"vpn_billing/pkg/response"

	"github.com/gin-gonic/gin"
)

type ServerHandler struct {
	repo repository.ServerRepository
}

func NewServerHandler(repo repository.ServerRepository) *ServerHandler {
	return &ServerHandler{repo: repo}
}

// ListAvailable returns squads that can be added to a subscription.
func (h *ServerHandler) ListAvailable(c *gin.Context) {
	squads, err := h.repo.ListAvailable()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, squads)
}

type SquadInput struct {
	SquadUUID   string `json:"squadUuid" binding:"required,uuid"`
	DisplayName string `json:"displayName" binding:"required"`
	CountryCode string `json:"countryCode"`
	PriceKopeks int    `json:"priceKopeks" binding:"min=0"`
	IsAvailable bool   `json:"isAvailable"`
	IsFull      bool   `json:"isFull"`
}

// CreateSquad registers a sellable squad. Admin only.
func (h *ServerHandler) CreateSquad(c *gin.Context) {
	var input SquadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	squad := &model.ServerSquad{
		SquadUUID:   input.SquadUUID,
		DisplayName: input.DisplayName,
		CountryCode: input.CountryCode,
		PriceKopeks: input.PriceKopeks,
		IsAvailable: input.IsAvailable,
		IsFull:      input.IsFull,
	}
	if err := h.repo.Create(squad); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, squad)
}

// UpdateSquad changes price or availability of a squad. Admin only.
func (h *ServerHandler) UpdateSquad(c *gin.Context) {
	squadUUID := c.Param("uuid")

	squad, err := h.repo.GetByUUID(squadUUID)
	if err != nil {
		response.Fail(c, response.ErrInvalidParam, "Squad not found")
		return
	}

	var input SquadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	squad.DisplayName = input.DisplayName
	squad.CountryCode = input.CountryCode
	squad.PriceKopeks = input.PriceKopeks
	squad.IsAvailable = input.IsAvailable
	squad.IsFull = input.IsFull

	if err := h.repo.Update(squad); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, squad)
}
