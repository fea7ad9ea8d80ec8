package contract

import (
	"context"
	"time"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	Update(ctx context.Context, sub *entity.Subscription) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)

	// FindCurrentForUpdate returns the user's most recently created
	// subscription, row-locked for the duration of the surrounding
	// transaction. Serializes concurrent subscription writes per user.
	FindCurrentForUpdate(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error)

	// AdvancePeriod moves the billing window forward only if the stored
	// period end still equals expectedEnd. Returns false when another run
	// already advanced the row.
	AdvancePeriod(ctx context.Context, id uuid.UUID, expectedEnd, newStart, newEnd time.Time) (bool, error)

	SetLastInvoice(ctx context.Context, id uuid.UUID, invoiceId uuid.UUID) error
}
