// FILE: internal/service/invoice_service.go
// Service for immutable billing invoices.
package service

import (
	"context"
	"fmt"
	"time"

	"stockpoints-be/internal/dto"
	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/repository/specification"
	"stockpoints-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type InvoiceService interface {
	// CreateInvoice writes an open invoice with a frozen plan snapshot.
	// It runs on the caller's unit of work so invoice creation commits or
	// rolls back with the surrounding billing operation.
	CreateInvoice(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, plan *entity.Plan, periodStart, periodEnd time.Time) (*entity.Invoice, error)

	ListForUser(ctx context.Context, userId uuid.UUID) ([]*dto.InvoiceResponse, error)
}

type invoiceService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewInvoiceService(uowFactory unitofwork.RepositoryFactory) InvoiceService {
	return &invoiceService{
		uowFactory: uowFactory,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, plan *entity.Plan, periodStart, periodEnd time.Time) (*entity.Invoice, error) {
	invoice := &entity.Invoice{
		Id:             uuid.New(),
		UserId:         sub.UserId,
		SubscriptionId: sub.Id,
		PlanSnapshot: entity.PlanSnapshot{
			PlanId:          plan.Id,
			Name:            plan.Name,
			PriceCents:      plan.PriceCents,
			Currency:        plan.Currency,
			MonthlyPoints:   plan.MonthlyPoints,
			BillingInterval: plan.BillingInterval,
		},
		AmountCents: plan.PriceCents,
		Currency:    plan.Currency,
		Status:      entity.InvoiceStatusOpen,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	invoice.Items = []entity.InvoiceItem{
		{
			Id:          uuid.New(),
			InvoiceId:   invoice.Id,
			Description: subscriptionItemDescription(plan.Name, periodStart, periodEnd),
			AmountCents: plan.PriceCents,
		},
	}

	if err := uow.InvoiceRepository().Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) ListForUser(ctx context.Context, userId uuid.UUID) ([]*dto.InvoiceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	invoices, err := uow.InvoiceRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, dto.InvoiceItemResponse{
			Description: item.Description,
			AmountCents: item.AmountCents,
		})
	}
	return &dto.InvoiceResponse{
		Id:             inv.Id,
		SubscriptionId: inv.SubscriptionId,
		Status:         string(inv.Status),
		AmountCents:    inv.AmountCents,
		Currency:       inv.Currency,
		PeriodStart:    inv.PeriodStart,
		PeriodEnd:      inv.PeriodEnd,
		PlanName:       inv.PlanSnapshot.Name,
		PointsGranted:  inv.PlanSnapshot.MonthlyPoints,
		Items:          items,
		PaidAt:         inv.PaidAt,
		CreatedAt:      inv.CreatedAt,
	}
}

// subscriptionItemDescription renders the single line item on a
// subscription invoice, e.g. "Pro subscription (Jan 1, 2025 - Feb 1, 2025)".
func subscriptionItemDescription(planName string, periodStart, periodEnd time.Time) string {
	return fmt.Sprintf("%s subscription (%s - %s)",
		planName,
		periodStart.UTC().Format("Jan 2, 2006"),
		periodEnd.UTC().Format("Jan 2, 2006"),
	)
}
