package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type CityGormRepository struct {
	db *gorm.DB
}

func NewCityGormRepository(db *gorm.DB) *CityGormRepository {
	return &CityGormRepository{db: db}
}

func (r *CityGormRepository) FindByID(ctx context.Context, cityID int64) (model.City, error) {
	var c model.City
	err := r.db.WithContext(ctx).First(&c, cityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.City{}, repo.ErrNotFound
	}
	if err != nil {
		return model.City{}, err
	}
	return c, nil
}

func (r *CityGormRepository) List(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	if err := r.db.WithContext(ctx).Order("name asc").Find(&cities).Error; err != nil {
		return []model.City{}, err
	}
	return cities, nil
}
