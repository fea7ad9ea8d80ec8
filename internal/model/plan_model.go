package model

import (
	"time"

	"github.com/google/uuid"
)

type Plan struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description     string    `gorm:"type:text"`
	PriceCents      int64     `gorm:"not null"`
	Currency        string    `gorm:"type:varchar(3);not null;default:'USD'"`
	MonthlyPoints   int64     `gorm:"not null"`
	BillingInterval string    `gorm:"type:varchar(20);not null;default:'month'"`
	IsActive        bool      `gorm:"default:true"`
	SortOrder       int       `gorm:"default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Plan) TableName() string {
	return "plans"
}
