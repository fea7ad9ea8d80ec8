package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription is a user's recurring billing arrangement. The "current"
// subscription for a user is the most recently created row; new rows
// supersede old ones, history is never hard-deleted.
type Subscription struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	PlanId             uuid.UUID
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time // half-open: [start, end)
	CancelAtPeriodEnd  bool
	TrialEnd           *time.Time
	LastInvoiceId      *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Renewable reports whether the subscription status allows the renewal
// batch to pick it up.
func (s *Subscription) Renewable() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue:
		return true
	}
	return false
}
