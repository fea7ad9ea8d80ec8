package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName  string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type Balance struct {
	UserId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Points    int64     `gorm:"not null;default:0;check:points >= 0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Balance) TableName() string {
	return "balances"
}
