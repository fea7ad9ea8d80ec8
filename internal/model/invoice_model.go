package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Invoice struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID      `gorm:"type:uuid;not null;index"`
	SubscriptionId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	PlanSnapshot       datatypes.JSON `gorm:"type:jsonb;not null"`
	AmountCents        int64          `gorm:"not null"`
	Currency           string         `gorm:"type:varchar(3);not null"`
	Status             string         `gorm:"type:varchar(20);not null;index"`
	PeriodStart        time.Time      `gorm:"not null"`
	PeriodEnd          time.Time      `gorm:"not null"`
	NextPaymentAttempt *time.Time     ``
	PaidAt             *time.Time     ``
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`

	Items []*InvoiceItem `gorm:"foreignKey:InvoiceId"`
}

func (Invoice) TableName() string {
	return "invoices"
}

type InvoiceItem struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Description string    `gorm:"type:text;not null"`
	AmountCents int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
