package service

import (
	"errors"

	"vpn_billing/internal/domain/user/model"
	"vpn_billing/internal/domain/user/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultPromoGroupName is assigned to users created through the mini-app.
const DefaultPromoGroupName = "default"

type UserService interface {
	// EnsureUser returns the user for a Telegram identity, creating it with
	// the default promo group when it does not exist yet.
	EnsureUser(telegramID int64, username, language string) (*model.User, error)
	GetByID(id string) (*model.User, error)
	AssignPromoGroup(userID, groupName string) error
}

type userService struct {
	users  repository.UserRepository
	groups repository.PromoGroupRepository
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, groups repository.PromoGroupRepository, logger *zap.Logger) UserService {
	return &userService{users: users, groups: groups, logger: logger}
}

func (s *userService) EnsureUser(telegramID int64, username, language string) (*model.User, error) {
	user, err := s.users.GetByTelegramID(telegramID)
	if err == nil {
		if username != "" && user.Username != username {
			user.Username = username
			if err := s.users.Update(user); err != nil {
				s.logger.Warn("username refresh failed", zap.String("user_id", user.ID), zap.Error(err))
			}
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if language == "" {
		language = "ru"
	}
	user = &model.User{
		TelegramID: telegramID,
		Username:   username,
		Language:   language,
	}

	if group, gErr := s.groups.GetByName(DefaultPromoGroupName); gErr == nil {
		user.PromoGroupID = &group.ID
		user.PromoGroup = group
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.Int64("telegram_id", telegramID))
	return user, nil
}

func (s *userService) GetByID(id string) (*model.User, error) {
	return s.users.GetByID(id)
}

func (s *userService) AssignPromoGroup(userID, groupName string) error {
	group, err := s.groups.GetByName(groupName)
	if err != nil {
		return err
	}
	return s.users.AssignPromoGroup(userID, group.ID)
}
