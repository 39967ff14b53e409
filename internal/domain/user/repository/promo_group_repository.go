package repository

import (
	"vpn_billing/internal/domain/user/model"

	"gorm.io/gorm"
)

type PromoGroupRepository interface {
	Create(group *model.PromoGroup) error
	GetByID(id string) (*model.PromoGroup, error)
	GetByName(name string) (*model.PromoGroup, error)
	Update(group *model.PromoGroup) error
	List() ([]model.PromoGroup, error)
}

type promoGroupRepository struct {
	db *gorm.DB
}

func NewPromoGroupRepository(db *gorm.DB) PromoGroupRepository {
	return &promoGroupRepository{db: db}
}

func (r *promoGroupRepository) Create(group *model.PromoGroup) error {
	return r.db.Create(group).Error
}

func (r *promoGroupRepository) GetByID(id string) (*model.PromoGroup, error) {
	var group model.PromoGroup
	if err := r.db.First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *promoGroupRepository) GetByName(name string) (*model.PromoGroup, error) {
	var group model.PromoGroup
	if err := r.db.First(&group, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *promoGroupRepository) Update(group *model.PromoGroup) error {
	return r.db.Save(group).Error
}

func (r *promoGroupRepository) List() ([]model.PromoGroup, error) {
	var groups []model.PromoGroup
	if err := r.db.Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
