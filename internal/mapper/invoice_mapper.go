package mapper

import (
	"encoding/json"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/model"

	"gorm.io/datatypes"
)

type InvoiceMapper struct{}

func NewInvoiceMapper() *InvoiceMapper {
	return &InvoiceMapper{}
}

func (m *InvoiceMapper) ToEntity(i *model.Invoice) *entity.Invoice {
	if i == nil {
		return nil
	}
	var snapshot entity.PlanSnapshot
	// The snapshot column is written once at invoice creation and is
	// trusted as-is on the way out.
	_ = json.Unmarshal(i.PlanSnapshot, &snapshot)

	items := make([]entity.InvoiceItem, 0, len(i.Items))
	for _, it := range i.Items {
		items = append(items, entity.InvoiceItem{
			Id:          it.Id,
			InvoiceId:   it.InvoiceId,
			Description: it.Description,
			AmountCents: it.AmountCents,
			CreatedAt:   it.CreatedAt,
		})
	}

	return &entity.Invoice{
		Id:                 i.Id,
		UserId:             i.UserId,
		SubscriptionId:     i.SubscriptionId,
		PlanSnapshot:       snapshot,
		AmountCents:        i.AmountCents,
		Currency:           i.Currency,
		Status:             entity.InvoiceStatus(i.Status),
		PeriodStart:        i.PeriodStart,
		PeriodEnd:          i.PeriodEnd,
		NextPaymentAttempt: i.NextPaymentAttempt,
		PaidAt:             i.PaidAt,
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
		Items:              items,
	}
}

func (m *InvoiceMapper) ToModel(i *entity.Invoice) (*model.Invoice, error) {
	if i == nil {
		return nil, nil
	}
	raw, err := json.Marshal(i.PlanSnapshot)
	if err != nil {
		return nil, err
	}

	items := make([]*model.InvoiceItem, 0, len(i.Items))
	for _, it := range i.Items {
		items = append(items, &model.InvoiceItem{
			Id:          it.Id,
			InvoiceId:   it.InvoiceId,
			Description: it.Description,
			AmountCents: it.AmountCents,
			CreatedAt:   it.CreatedAt,
		})
	}

	return &model.Invoice{
		Id:                 i.Id,
		UserId:             i.UserId,
		SubscriptionId:     i.SubscriptionId,
		PlanSnapshot:       datatypes.JSON(raw),
		AmountCents:        i.AmountCents,
		Currency:           i.Currency,
		Status:             string(i.Status),
		PeriodStart:        i.PeriodStart,
		PeriodEnd:          i.PeriodEnd,
		NextPaymentAttempt: i.NextPaymentAttempt,
		PaidAt:             i.PaidAt,
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
		Items:              items,
	}, nil
}
