package entity

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusProcessing    OrderStatus = "processing"
	OrderStatusReady         OrderStatus = "ready"
	OrderStatusFailed        OrderStatus = "failed"
	OrderStatusPaymentFailed OrderStatus = "payment_failed"
)

// FileInfo describes the stock asset an order was placed for, as reported
// by the fulfillment provider at order time.
type FileInfo struct {
	Site       string `json:"site"`
	ExternalId string `json:"external_id"`
	CostPoints int64  `json:"cost_points"`
	Title      string `json:"title,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// Order is a one-off stock-file purchase. It is created atomically with a
// balance debit; a repeat purchase of an already fulfilled asset is a free
// re-download.
type Order struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	TaskId        string
	FileInfo      FileInfo
	ChargedPoints int64
	Status        OrderStatus
	DownloadURL   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
