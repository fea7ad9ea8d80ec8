package contract

import (
	"context"

	"stockpoints-be/internal/model"
	"stockpoints-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userId uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userId uuid.UUID) error
}
