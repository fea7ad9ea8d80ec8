package entity

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusOpen InvoiceStatus = "open"
	InvoiceStatusPaid InvoiceStatus = "paid"
	InvoiceStatusVoid InvoiceStatus = "void"
)

// PlanSnapshot is the frozen copy of a plan's billable fields taken at
// charge time. Later catalog edits never alter it.
type PlanSnapshot struct {
	PlanId          uuid.UUID       `json:"plan_id"`
	Name            string          `json:"name"`
	PriceCents      int64           `json:"price_cents"`
	Currency        string          `json:"currency"`
	MonthlyPoints   int64           `json:"monthly_points"`
	BillingInterval BillingInterval `json:"billing_interval"`
}

// Invoice is an immutable financial record for one billing period.
type Invoice struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	SubscriptionId     uuid.UUID
	PlanSnapshot       PlanSnapshot
	AmountCents        int64
	Currency           string
	Status             InvoiceStatus
	PeriodStart        time.Time
	PeriodEnd          time.Time
	NextPaymentAttempt *time.Time
	PaidAt             *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Items []InvoiceItem
}

type InvoiceItem struct {
	Id          uuid.UUID
	InvoiceId   uuid.UUID
	Description string
	AmountCents int64
	CreatedAt   time.Time
}
