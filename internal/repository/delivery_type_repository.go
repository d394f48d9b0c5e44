package repository

import (
	"context"

	"app/internal/domain/model"
)

type DeliveryTypeRepository interface {
	FindByCode(ctx context.Context, code model.DeliveryTypeCode) (model.DeliveryType, error)
}
