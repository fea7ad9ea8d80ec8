// FILE: internal/service/subscription_service.go
// Service for the subscription lifecycle. A user's current subscription
// is the most recently created row; subscribing again reuses that row,
// and plan changes are deferred to the next renewal.
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

type SubscriptionService interface {
	// Subscribe starts (or restarts) a subscription, charges the first
	// invoice and grants its points, all in one transaction. An existing
	// row is reset in place rather than superseded.
	Subscribe(ctx context.Context, userId uuid.UUID, planId uuid.UUID) (*dto.SubscriptionResponse, error)

	// ChangePlan switches the plan reference only. Nothing is billed and
	// the period is untouched; the new price and grant take effect at the
	// next renewal. Changing to the currently held plan is a no-op.
	ChangePlan(ctx context.Context, userId uuid.UUID, planId uuid.UUID) (*dto.SubscriptionResponse, error)

	// SetCancelAtPeriodEnd flags (or unflags) the subscription for
	// cancellation. The subscription stays usable until the period ends.
	SetCancelAtPeriodEnd(ctx context.Context, userId uuid.UUID, cancel bool) (*dto.SubscriptionResponse, error)

	GetCurrent(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	uowFactory         unitofwork.RepositoryFactory
	planService        PlanService
	invoiceService     InvoiceService
	entitlementService EntitlementService
	logger             logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	planService PlanService,
	invoiceService InvoiceService,
	entitlementService EntitlementService,
	logger logger.ILogger,
) SubscriptionService {
	return &subscriptionService{
		uowFactory:         uowFactory,
		planService:        planService,
		invoiceService:     invoiceService,
		entitlementService: entitlementService,
		logger:             logger,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userId uuid.UUID, planId uuid.UUID) (*dto.SubscriptionResponse, error) {
	plan, err := s.planService.LoadPurchasablePlan(ctx, planId)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// The row lock on the current subscription serializes concurrent
	// subscribe/change/cancel calls for the same user.
	current, err := uow.SubscriptionRepository().FindCurrentForUpdate(ctx, userId)
	if err != nil {
		return nil, err
	}

	periodStart := nowUTC()
	periodEnd := addCalendarMonth(periodStart)

	var sub *entity.Subscription
	if current != nil {
		// Re-subscribe resets the existing row to a fresh active period.
		current.PlanId = plan.Id
		current.Status = entity.SubscriptionStatusActive
		current.CancelAtPeriodEnd = false
		current.CurrentPeriodStart = periodStart
		current.CurrentPeriodEnd = periodEnd
		current.TrialEnd = nil
		if err := uow.SubscriptionRepository().Update(ctx, current); err != nil {
			return nil, err
		}
		sub = current
	} else {
		sub = &entity.Subscription{
			Id:                 uuid.New(),
			UserId:             userId,
			PlanId:             plan.Id,
			Status:             entity.SubscriptionStatusActive,
			CurrentPeriodStart: periodStart,
			CurrentPeriodEnd:   periodEnd,
		}
		if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
			return nil, err
		}
	}

	invoice, err := s.invoiceService.CreateInvoice(ctx, uow, sub, plan, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if err := s.entitlementService.ApplyPaidInvoiceInTx(ctx, uow, invoice.Id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("subscription", "subscription started", map[string]interface{}{
		"user_id":         userId.String(),
		"subscription_id": sub.Id.String(),
		"plan_id":         plan.Id.String(),
	})
	// Re-read so the response carries last_invoice_id set during apply.
	return s.GetCurrent(ctx, userId)
}

func (s *subscriptionService) ChangePlan(ctx context.Context, userId uuid.UUID, planId uuid.UUID) (*dto.SubscriptionResponse, error) {
	plan, err := s.planService.LoadPurchasablePlan(ctx, planId)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	current, err := uow.SubscriptionRepository().FindCurrentForUpdate(ctx, userId)
	if err != nil {
		return nil, err
	}
	if current == nil || !current.Renewable() {
		return nil, apperror.NotFound("no active subscription")
	}
	if current.PlanId == plan.Id {
		// Same plan: nothing to change.
		return s.GetCurrent(ctx, userId)
	}

	// Deferred billing: only the plan reference moves. The current period
	// keeps running on the old grant; the next renewal invoices the new
	// plan. No proration.
	oldPlanId := current.PlanId
	current.PlanId = plan.Id
	if err := uow.SubscriptionRepository().Update(ctx, current); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("subscription", "plan changed", map[string]interface{}{
		"user_id":         userId.String(),
		"subscription_id": current.Id.String(),
		"old_plan_id":     oldPlanId.String(),
		"new_plan_id":     plan.Id.String(),
	})
	return s.GetCurrent(ctx, userId)
}

func (s *subscriptionService) SetCancelAtPeriodEnd(ctx context.Context, userId uuid.UUID, cancel bool) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	current, err := uow.SubscriptionRepository().FindCurrentForUpdate(ctx, userId)
	if err != nil {
		return nil, err
	}
	if current == nil || !current.Renewable() {
		return nil, apperror.NotFound("no active subscription")
	}

	current.CancelAtPeriodEnd = cancel
	if err := uow.SubscriptionRepository().Update(ctx, current); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return s.GetCurrent(ctx, userId)
}

func (s *subscriptionService) GetCurrent(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: 1},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.NotFound("no subscription")
	}

	resp := &dto.SubscriptionResponse{
		Id:                 sub.Id,
		PlanId:             sub.PlanId,
		Status:             string(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		TrialEnd:           sub.TrialEnd,
		LastInvoiceId:      sub.LastInvoiceId,
		CreatedAt:          sub.CreatedAt,
	}
	if plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: sub.PlanId}); err == nil && plan != nil {
		resp.PlanName = plan.Name
	}
	return resp, nil
}
