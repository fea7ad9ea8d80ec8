package contract

import (
	"context"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *entity.Plan) error
	Update(ctx context.Context, plan *entity.Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Plan, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error)
}
