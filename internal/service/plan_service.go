// FILE: internal/service/plan_service.go
// Service for the purchasable plan catalog.
package service

import (
	"context"

	"stockpoints-be/internal/dto"
	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/pkg/apperror"
	"stockpoints-be/internal/pkg/logger"
	"stockpoints-be/internal/repository/specification"
	"stockpoints-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type PlanService interface {
	// Public
	ListMonthlyPlans(ctx context.Context) ([]*dto.PlanResponse, error)

	// Internal: resolves a plan the user may subscribe to.
	LoadPurchasablePlan(ctx context.Context, planId uuid.UUID) (*entity.Plan, error)
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) PlanService {
	return &planService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// ListMonthlyPlans returns active month-interval plans ordered cheapest
// first. A read failure degrades to an empty catalog instead of breaking
// the pricing page.
func (s *planService) ListMonthlyPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plans, err := uow.PlanRepository().FindAll(ctx,
		specification.ActiveMonthlyPlans{},
		specification.OrderBy{Field: "price_cents"},
	)
	if err != nil {
		s.logger.Warn("plan", "failed to load plan catalog, serving empty list", map[string]interface{}{
			"error": err.Error(),
		})
		return []*dto.PlanResponse{}, nil
	}

	result := make([]*dto.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		result = append(result, &dto.PlanResponse{
			Id:            plan.Id,
			Name:          plan.Name,
			PriceCents:    plan.PriceCents,
			Currency:      plan.Currency,
			MonthlyPoints: plan.MonthlyPoints,
			SortOrder:     plan.SortOrder,
		})
	}
	return result, nil
}

// LoadPurchasablePlan fetches a plan and verifies it is still active and
// monthly. Inactive or one-time plans behave as if they do not exist.
func (s *planService) LoadPurchasablePlan(ctx context.Context, planId uuid.UUID) (*entity.Plan, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: planId})
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive || plan.BillingInterval != entity.BillingIntervalMonth {
		return nil, apperror.NotFound("plan not found")
	}
	return plan, nil
}
