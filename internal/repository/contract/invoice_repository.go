package contract

import (
	"context"
	"time"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/repository/specification"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	// Create inserts the invoice together with its line items.
	Create(ctx context.Context, invoice *entity.Invoice) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error)

	// FindOneForUpdate row-locks the invoice so the open-status check and
	// the paid transition happen under the same lock.
	FindOneForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)

	// MarkPaidIfOpen transitions open -> paid in a single conditional
	// statement. Returns false when the invoice was not open.
	MarkPaidIfOpen(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
}
