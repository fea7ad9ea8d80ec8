// FILE: internal/service/renewal_service.go
// Batch renewal of subscriptions whose billing period has elapsed. Each
// subscription is processed in its own transaction so one failure never
// poisons the rest of the batch.
package service

import (
	"context"
	"time"

	"stockpoints-be/internal/dto"
	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/pkg/apperror"
	"stockpoints-be/internal/pkg/logger"
	"stockpoints-be/internal/repository/specification"
	"stockpoints-be/internal/repository/unitofwork"
	"stockpoints-be/pkg/events"
	"stockpoints-be/pkg/nats"
)

type RenewalService interface {
	// RunDueRenewals charges every subscription whose period has ended.
	// Failed items are reported as skipped and retried on the next run.
	RunDueRenewals(ctx context.Context) (*dto.RenewalRunResponse, error)
}

type renewalService struct {
	uowFactory         unitofwork.RepositoryFactory
	invoiceService     InvoiceService
	entitlementService EntitlementService
	publisher          *nats.Publisher
	itemTimeout        time.Duration
	logger             logger.ILogger
}

func NewRenewalService(
	uowFactory unitofwork.RepositoryFactory,
	invoiceService InvoiceService,
	entitlementService EntitlementService,
	publisher *nats.Publisher,
	itemTimeout time.Duration,
	logger logger.ILogger,
) RenewalService {
	if itemTimeout <= 0 {
		itemTimeout = 30 * time.Second
	}
	return &renewalService{
		uowFactory:         uowFactory,
		invoiceService:     invoiceService,
		entitlementService: entitlementService,
		publisher:          publisher,
		itemTimeout:        itemTimeout,
		logger:             logger,
	}
}

func (s *renewalService) RunDueRenewals(ctx context.Context) (*dto.RenewalRunResponse, error) {
	now := nowUTC()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	due, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.DueForRenewal{Now: now},
		specification.OrderBy{Field: "current_period_end"},
	)
	if err != nil {
		return nil, err
	}

	result := &dto.RenewalRunResponse{
		Processed: []dto.RenewalProcessedItem{},
		Skipped:   []dto.RenewalSkippedItem{},
	}

	for _, sub := range due {
		itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
		invoice, err := s.renewOne(itemCtx, sub)
		cancel()

		if err != nil {
			s.logger.Warn("renewal", "subscription renewal failed, will retry next run", map[string]interface{}{
				"subscription_id": sub.Id.String(),
				"error":           err.Error(),
			})
			result.Skipped = append(result.Skipped, dto.RenewalSkippedItem{
				SubscriptionId: sub.Id,
				Reason:         err.Error(),
			})
			continue
		}
		if invoice == nil {
			// Another run advanced this subscription first.
			result.Skipped = append(result.Skipped, dto.RenewalSkippedItem{
				SubscriptionId: sub.Id,
				Reason:         "already processed",
			})
			continue
		}

		result.Processed = append(result.Processed, dto.RenewalProcessedItem{
			SubscriptionId: sub.Id,
			InvoiceId:      invoice.Id,
		})
		if s.publisher != nil {
			event := events.NewSubscriptionRenewed(sub.UserId, sub.Id, invoice.Id)
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.logger.Warn("renewal", "failed to publish renewal event", map[string]interface{}{
					"subscription_id": sub.Id.String(),
					"error":           err.Error(),
				})
			}
		}
	}

	s.logger.Info("renewal", "renewal run finished", map[string]interface{}{
		"due":       len(due),
		"processed": len(result.Processed),
		"skipped":   len(result.Skipped),
	})
	return result, nil
}

// renewOne advances one subscription by one calendar month and charges it.
// Returns (nil, nil) when the subscription no longer qualifies, e.g. a
// concurrent run already advanced it or the user canceled meanwhile.
func (s *renewalService) renewOne(ctx context.Context, due *entity.Subscription) (*entity.Invoice, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Re-read inside the transaction: the snapshot from the due query may
	// be stale by the time this item's turn comes.
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: due.Id})
	if err != nil {
		return nil, err
	}
	if sub == nil || !sub.Renewable() || sub.CancelAtPeriodEnd || sub.CurrentPeriodEnd.After(nowUTC()) {
		return nil, nil
	}

	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: sub.PlanId})
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.BillingInterval != entity.BillingIntervalMonth {
		// Skipped with an explicit reason; the dangling reference needs
		// operator attention, unlike the benign already-processed case.
		return nil, apperror.NotFound("subscription plan cannot be resolved")
	}

	// The new period is anchored on the old period end, not on the batch
	// run time, so late runs never drift the billing anchor.
	newStart := sub.CurrentPeriodEnd
	newEnd := addCalendarMonth(newStart)

	advanced, err := uow.SubscriptionRepository().AdvancePeriod(ctx, sub.Id, sub.CurrentPeriodEnd, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	if !advanced {
		return nil, nil
	}

	sub.CurrentPeriodStart = newStart
	sub.CurrentPeriodEnd = newEnd
	invoice, err := s.invoiceService.CreateInvoice(ctx, uow, sub, plan, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	if err := s.entitlementService.ApplyPaidInvoiceInTx(ctx, uow, invoice.Id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return invoice, nil
}
