package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type DeliveryTypeGormRepository struct {
	db *gorm.DB
}

func NewDeliveryTypeGormRepository(db *gorm.DB) *DeliveryTypeGormRepository {
	return &DeliveryTypeGormRepository{db: db}
}

func (r *DeliveryTypeGormRepository) FindByCode(ctx context.Context, code model.DeliveryTypeCode) (model.DeliveryType, error) {
	var dt model.DeliveryType
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&dt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DeliveryType{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DeliveryType{}, err
	}
	return dt, nil
}
