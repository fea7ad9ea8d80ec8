package mapper

import (
	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/model"
)

type PlanMapper struct{}

func NewPlanMapper() *PlanMapper {
	return &PlanMapper{}
}

func (m *PlanMapper) ToEntity(p *model.Plan) *entity.Plan {
	if p == nil {
		return nil
	}
	return &entity.Plan{
		Id:              p.Id,
		Name:            p.Name,
		Description:     p.Description,
		PriceCents:      p.PriceCents,
		Currency:        p.Currency,
		MonthlyPoints:   p.MonthlyPoints,
		BillingInterval: entity.BillingInterval(p.BillingInterval),
		IsActive:        p.IsActive,
		SortOrder:       p.SortOrder,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (m *PlanMapper) ToModel(p *entity.Plan) *model.Plan {
	if p == nil {
		return nil
	}
	return &model.Plan{
		Id:              p.Id,
		Name:            p.Name,
		Description:     p.Description,
		PriceCents:      p.PriceCents,
		Currency:        p.Currency,
		MonthlyPoints:   p.MonthlyPoints,
		BillingInterval: string(p.BillingInterval),
		IsActive:        p.IsActive,
		SortOrder:       p.SortOrder,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
