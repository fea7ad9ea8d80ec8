package dto

import (
	"time"

	"github.com/google/uuid"
)

type PlaceOrderRequest struct {
	Site       string `json:"site" validate:"required"`
	ExternalId string `json:"external_id" validate:"required"`
	SourceURL  string `json:"source_url" validate:"omitempty,url"`
}

type OrderListRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

type OrderResponse struct {
	Id            uuid.UUID `json:"id"`
	Site          string    `json:"site"`
	ExternalId    string    `json:"external_id"`
	Title         string    `json:"title,omitempty"`
	PreviewURL    string    `json:"preview_url,omitempty"`
	Status        string    `json:"status"`
	ChargedPoints int64     `json:"charged_points"`
	DownloadURL   *string   `json:"download_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type DownloadLinkResponse struct {
	URL string `json:"url"`
}
