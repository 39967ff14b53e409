package repository

import (
	"errors"

	"vpn_billing/internal/domain/user/model"

	"gorm.io/gorm"
)

// ErrInsufficientBalance is returned when an atomic deduction finds less
// balance than requested.
var ErrInsufficientBalance = errors.New("insufficient balance")

type UserRepository interface {
	Create(user *model.User) error
	GetByID(id string) (*model.User, error)
	GetByTelegramID(telegramID int64) (*model.User, error)
	Update(user *model.User) error
	AssignPromoGroup(userID, promoGroupID string) error
	DeductBalance(userID string, amountKopeks int) error
	AddBalance(userID string, amountKopeks int) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("PromoGroup").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByTelegramID(telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("PromoGroup").First(&user, "telegram_id = ?", telegramID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) AssignPromoGroup(userID, promoGroupID string) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("promo_group_id", promoGroupID).Error
}

// DeductBalance performs a guarded decrement so two concurrent charges can
// never drive the balance negative.
func (r *userRepository) DeductBalance(userID string, amountKopeks int) error {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND balance_kopeks >= ?", userID, amountKopeks).
		UpdateColumn("balance_kopeks", gorm.Expr("balance_kopeks - ?", amountKopeks))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (r *userRepository) AddBalance(userID string, amountKopeks int) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("balance_kopeks", gorm.Expr("balance_kopeks + ?", amountKopeks)).Error
}
