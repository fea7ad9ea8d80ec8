package entity

import (
	"time"

	"github.com/google/uuid"
)

type BillingInterval string

const (
	BillingIntervalMonth   BillingInterval = "month"
	BillingIntervalOneTime BillingInterval = "one_time"
)

// Plan is a purchasable catalog entry. Only month + active plans are
// purchasable; operators may edit plans, but existing invoices keep the
// snapshot taken at charge time.
type Plan struct {
	Id              uuid.UUID
	Name            string
	Description     string
	PriceCents      int64
	Currency        string
	MonthlyPoints   int64
	BillingInterval BillingInterval
	IsActive        bool
	SortOrder       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
