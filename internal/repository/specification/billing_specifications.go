package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserOwnedBy filters rows belonging to a user.
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ActiveMonthlyPlans selects purchasable catalog entries.
type ActiveMonthlyPlans struct{}

func (s ActiveMonthlyPlans) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ? AND billing_interval = ?", true, "month")
}

// DueForRenewal selects subscriptions the renewal batch must process:
// period elapsed, not flagged for cancellation, and in a renewable status.
type DueForRenewal struct {
	Now time.Time
}

func (s DueForRenewal) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Where("current_period_end <= ?", s.Now).
		Where("cancel_at_period_end = ?", false).
		Where("status IN ?", []string{"active", "trialing", "past_due"})
}

// ByAsset filters orders by their canonical (site, external id) pair.
type ByAsset struct {
	Site       string
	ExternalId string
}

func (s ByAsset) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("site = ? AND external_id = ?", s.Site, s.ExternalId)
}

// StatusIs filters on the status column shared by subscriptions,
// invoices and orders.
type StatusIs struct {
	Status string
}

func (s StatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
