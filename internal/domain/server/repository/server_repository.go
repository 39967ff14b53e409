package repository

import (
	"vpn_billing/internal/domain/server/model"

	"gorm.io/gorm"
)

type ServerRepository interface {
	Create(squad *model.ServerSquad) error
	GetByUUID(squadUUID string) (*model.ServerSquad, error)
	GetByUUIDs(squadUUIDs []string) ([]model.ServerSquad, error)
	ListAvailable() ([]model.ServerSquad, error)
	Update(squad *model.ServerSquad) error
}

type serverRepository struct {
	db *gorm.DB
}

func NewServerRepository(db *gorm.DB) ServerRepository {
	return &serverRepository{db: db}
}

func (r *serverRepository) Create(squad *model.ServerSquad) error {
	return r.db.Create(squad).Error
}

func (r *serverRepository) GetByUUID(squadUUID string) (*model.ServerSquad, error) {
	var squad model.ServerSquad
	if err := r.db.First(&squad, "squad_uuid = ?", squadUUID).Error; err != nil {
		return nil, err
	}
	return &squad, nil
}

func (r *serverRepository) GetByUUIDs(squadUUIDs []string) ([]model.ServerSquad, error) {
	if len(squadUUIDs) == 0 {
		return nil, nil
	}
	var squads []model.ServerSquad
	if err := r.db.Where("squad_uuid IN ?", squadUUIDs).Find(&squads).Error; err != nil {
		return nil, err
	}
	return squads, nil
}

func (r *serverRepository) ListAvailable() ([]model.ServerSquad, error) {
	var squads []model.ServerSquad
	err := r.db.Where("is_available = ? AND is_full = ?", true, false).
		Order("display_name").
		Find(&squads).Error
	if err != nil {
		return nil, err
	}
	return squads, nil
}

func (r *serverRepository) Update(squad *model.ServerSquad) error {
	return r.db.Save(squad).Error
}
