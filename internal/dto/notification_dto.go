package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	Id        uuid.UUID      `json:"id"`
	TypeCode  string         `json:"type_code"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsRead    bool           `json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type NotificationListRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
