package repository

import (
	"errors"
	"time"

	"vpn_billing/internal/domain/subscription/model"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(subscription *model.Subscription) error
	Save(subscription *model.Subscription) error
	GetByID(id string) (*model.Subscription, error)
	// GetActiveByUserID returns the user's live subscription, or nil when there
	// is none.
	GetActiveByUserID(userID string, now time.Time) (*model.Subscription, error)
	CreateTransaction(transaction *model.Transaction) error
	ListTransactions(userID string, offset, limit int) ([]model.Transaction, int64, error)
	// ChargeAndApply deducts the balance, persists the subscription and writes
	// the ledger entry in one database transaction.
	ChargeAndApply(userID string, amountKopeks int, subscription *model.Subscription, transaction *model.Transaction) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(subscription *model.Subscription) error {
	return r.db.Create(subscription).Error
}

func (r *subscriptionRepository) Save(subscription *model.Subscription) error {
	return r.db.Save(subscription).Error
}

func (r *subscriptionRepository) GetByID(id string) (*model.Subscription, error) {
	var subscription model.Subscription
	if err := r.db.First(&subscription, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) GetActiveByUserID(userID string, now time.Time) (*model.Subscription, error) {
	var subscription model.Subscription
	err := r.db.
		Where("user_id = ? AND status = ? AND end_date > ?", userID, model.StatusActive, now).
		Order("end_date DESC").
		First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) CreateTransaction(transaction *model.Transaction) error {
	return r.db.Create(transaction).Error
}

func (r *subscriptionRepository) ListTransactions(userID string, offset, limit int) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64

	query := r.db.Model(&model.Transaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&transactions).Error
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}
