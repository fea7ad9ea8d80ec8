// FILE: internal/service/entitlement_service.go
// Applies paid invoices to user entitlements: the only code path that
// grants subscription points.
package service

import (
	"context"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/pkg/apperror"
	"stockpoints-be/internal/pkg/logger"
	"stockpoints-be/internal/pkg/mailer"
	"stockpoints-be/internal/repository/specification"
	"stockpoints-be/internal/repository/unitofwork"
	"stockpoints-be/pkg/events"
	"stockpoints-be/pkg/nats"

	"github.com/google/uuid"
)

type EntitlementService interface {
	// ApplyPaidInvoice credits the invoice's snapshot points and marks the
	// invoice paid in one transaction. Applying an already-paid invoice is
	// a silent no-op, so retries and races never double-credit.
	ApplyPaidInvoice(ctx context.Context, invoiceId uuid.UUID) error

	// ApplyPaidInvoiceInTx is the same transition running inside the
	// caller's already-begun unit of work (subscribe, renewal).
	ApplyPaidInvoiceInTx(ctx context.Context, uow unitofwork.UnitOfWork, invoiceId uuid.UUID) error
}

type entitlementService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	publisher    *nats.Publisher
	logger       logger.ILogger
}

func NewEntitlementService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	publisher *nats.Publisher,
	logger logger.ILogger,
) EntitlementService {
	return &entitlementService{
		uowFactory:   uowFactory,
		emailService: emailService,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *entitlementService) ApplyPaidInvoice(ctx context.Context, invoiceId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	applied, invoice, err := s.applyLocked(ctx, uow, invoiceId)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if applied {
		s.afterApply(ctx, invoice)
	}
	return nil
}

func (s *entitlementService) ApplyPaidInvoiceInTx(ctx context.Context, uow unitofwork.UnitOfWork, invoiceId uuid.UUID) error {
	applied, invoice, err := s.applyLocked(ctx, uow, invoiceId)
	if err != nil {
		return err
	}
	// Side effects fire even though the outer transaction has not
	// committed yet; they are best-effort notifications, not ledger
	// state, so a later rollback only costs a stray email.
	if applied {
		s.afterApply(ctx, invoice)
	}
	return nil
}

// applyLocked performs the credit + paid transition under the invoice's
// row lock. Returns applied=false when the invoice was already settled.
func (s *entitlementService) applyLocked(ctx context.Context, uow unitofwork.UnitOfWork, invoiceId uuid.UUID) (bool, *entity.Invoice, error) {
	invoice, err := uow.InvoiceRepository().FindOneForUpdate(ctx, invoiceId)
	if err != nil {
		return false, nil, err
	}
	if invoice == nil {
		return false, nil, apperror.NotFound("invoice not found")
	}
	if invoice.Status != entity.InvoiceStatusOpen {
		// Already paid or voided. Idempotent no-op.
		return false, nil, nil
	}

	if invoice.PlanSnapshot.MonthlyPoints > 0 {
		if err := uow.BalanceRepository().Credit(ctx, invoice.UserId, invoice.PlanSnapshot.MonthlyPoints); err != nil {
			return false, nil, err
		}
	}

	ok, err := uow.InvoiceRepository().MarkPaidIfOpen(ctx, invoice.Id, nowUTC())
	if err != nil {
		return false, nil, err
	}
	if !ok {
		// Lost a race despite the lock; treat as already applied.
		return false, nil, nil
	}

	if err := uow.SubscriptionRepository().SetLastInvoice(ctx, invoice.SubscriptionId, invoice.Id); err != nil {
		return false, nil, err
	}
	return true, invoice, nil
}

// afterApply fires post-settlement side effects: receipt email and an
// event for downstream consumers. Both are best-effort.
func (s *entitlementService) afterApply(ctx context.Context, invoice *entity.Invoice) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: invoice.UserId})
	if err == nil && user != nil {
		if err := s.emailService.SendInvoiceReceipt(
			user.Email,
			invoice.PlanSnapshot.Name,
			invoice.AmountCents,
			invoice.Currency,
			invoice.PeriodStart,
			invoice.PeriodEnd,
		); err != nil {
			s.logger.Warn("entitlement", "failed to send invoice receipt", map[string]interface{}{
				"invoice_id": invoice.Id.String(),
				"error":      err.Error(),
			})
		}
	}

	if s.publisher != nil {
		event := events.NewInvoicePaid(invoice.UserId, invoice.Id, invoice.PlanSnapshot.MonthlyPoints)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("entitlement", "failed to publish invoice paid event", map[string]interface{}{
				"invoice_id": invoice.Id.String(),
				"error":      err.Error(),
			})
		}
	}
}
