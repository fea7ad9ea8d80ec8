package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Plans ---

type PlanResponse struct {
	Id            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	MonthlyPoints int64     `json:"monthly_points"`
	SortOrder     int       `json:"sort_order"`
}

// --- Subscriptions ---

type SubscribeRequest struct {
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
}

type ChangePlanRequest struct {
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
}

type CancelSubscriptionRequest struct {
	CancelAtPeriodEnd bool `json:"cancel_at_period_end"`
}

type SubscriptionResponse struct {
	Id                 uuid.UUID  `json:"id"`
	PlanId             uuid.UUID  `json:"plan_id"`
	PlanName           string     `json:"plan_name,omitempty"`
	Status             string     `json:"status"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	TrialEnd           *time.Time `json:"trial_end,omitempty"`
	LastInvoiceId      *uuid.UUID `json:"last_invoice_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// --- Invoices ---

type InvoiceItemResponse struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
}

type InvoiceResponse struct {
	Id             uuid.UUID             `json:"id"`
	SubscriptionId uuid.UUID             `json:"subscription_id"`
	Status         string                `json:"status"`
	AmountCents    int64                 `json:"amount_cents"`
	Currency       string                `json:"currency"`
	PeriodStart    time.Time             `json:"period_start"`
	PeriodEnd      time.Time             `json:"period_end"`
	PlanName       string                `json:"plan_name"`
	PointsGranted  int64                 `json:"points_granted"`
	Items          []InvoiceItemResponse `json:"items"`
	PaidAt         *time.Time            `json:"paid_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// --- Balance ---

type BalanceResponse struct {
	Points    int64     `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Renewal batch ---

type RenewalProcessedItem struct {
	SubscriptionId uuid.UUID `json:"subscription_id"`
	InvoiceId      uuid.UUID `json:"invoice_id"`
}

type RenewalSkippedItem struct {
	SubscriptionId uuid.UUID `json:"subscription_id"`
	Reason         string    `json:"reason"`
}

type RenewalRunResponse struct {
	Processed []RenewalProcessedItem `json:"processed"`
	Skipped   []RenewalSkippedItem   `json:"skipped"`
}
