package contract

import (
	"context"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/repository/specification"

	"github.com/google/uuid"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Order, error)

	// FindLatestByAsset returns the user's most recent order for the
	// canonical (site, external id) pair, nil if none.
	FindLatestByAsset(ctx context.Context, userId uuid.UUID, site, externalId string) (*entity.Order, error)
}
