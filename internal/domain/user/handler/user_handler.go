package handler

import (
	"net/http"

	"vpn_billing/internal/domain/user/service"
	"vpn_billing/pkg/response"
	"vpn_billing/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type AuthInput struct {
	TelegramID int64  `json:"telegramId" binding:"required"`
	Username   string `json:"username"`
	Language   string `json:"language"`
}

// Auth exchanges a Telegram identity for a mini-app access token, creating
// the user on first contact.
func (h *UserHandler) Auth(c *gin.Context) {
	var input AuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, err := h.service.EnsureUser(input.TelegramID, input.Username, input.Language)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	token, expiresAt, err := utils.GenerateToken(user.ID, utils.RoleUser)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, gin.H{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      user,
	})
}

// Profile returns the caller's account with balance and promo group.
func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := h.service.GetByID(userID)
	if err != nil {
		response.Fail(c, response.ErrUserNotFound, "User not found")
		return
	}

	response.Success(c, user)
}

type AssignGroupInput struct {
	UserID    string `json:"userId" binding:"required"`
	GroupName string `json:"groupName" binding:"required"`
}

// AssignGroup moves a user into a promo group. Admin only.
func (h *UserHandler) AssignGroup(c *gin.Context) {
	var input AssignGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.AssignPromoGroup(input.UserID, input.GroupName); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, "Promo group assigned")
}
