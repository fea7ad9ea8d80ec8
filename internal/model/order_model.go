package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Order struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index:idx_orders_user_created,priority:1;index:idx_orders_asset,priority:1"`
	TaskId        string         `gorm:"type:varchar(255);index"`
	Site          string         `gorm:"type:varchar(100);not null;index:idx_orders_asset,priority:2"`
	ExternalId    string         `gorm:"type:varchar(255);not null;index:idx_orders_asset,priority:3"`
	FileInfo      datatypes.JSON `gorm:"type:jsonb;not null"`
	ChargedPoints int64          `gorm:"not null"`
	Status        string         `gorm:"type:varchar(20);not null;index"`
	DownloadURL   *string        `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index:idx_orders_user_created,priority:2"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
