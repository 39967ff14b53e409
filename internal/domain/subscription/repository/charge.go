package repository

import (
	"vpn_billing/internal/domain/subscription/model"
	userModel "vpn_billing/internal/domain/user/model"
	userRepo "vpn_billing/internal/domain/user/repository"

	"gorm.io/gorm"
)

// ChargeAndApply atomically deducts the user's balance, records the ledger
// entry, and persists the subscription (insert or update). Everything rolls
// back together, so a failed write never leaves a paid-for subscription
// missing or a free one granted.
func (r *subscriptionRepository) ChargeAndApply(userID string, amountKopeks int, subscription *model.Subscription, transaction *model.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if amountKopeks > 0 {
			result := tx.Model(&userModel.User{}).
				Where("id = ? AND balance_kopeks >= ?", userID, amountKopeks).
				UpdateColumn("balance_kopeks", gorm.Expr("balance_kopeks - ?", amountKopeks))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return userRepo.ErrInsufficientBalance
			}
		}

		if subscription.ID == "" {
			if err := tx.Create(subscription).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Save(subscription).Error; err != nil {
				return err
			}
		}

		transaction.SubscriptionID = &subscription.ID
		return tx.Create(transaction).Error
	})
}
