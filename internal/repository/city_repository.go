package repository

import (
	"context"

	"app/internal/domain/model"
)

type CityRepository interface {
	FindByID(ctx context.Context, cityID int64) (model.City, error)
	List(ctx context.Context) ([]model.City, error)
}
