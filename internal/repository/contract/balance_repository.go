package contract

import (
	"context"

	"github.com/google/uuid"
)

// BalanceRepository is the only gateway to a user's points balance.
// Callers never read-modify-write balances themselves.
type BalanceRepository interface {
	// Get returns the balance, 0 for users without a row yet.
	Get(ctx context.Context, userId uuid.UUID) (int64, error)

	// Credit adds points, creating the balance row on first use.
	Credit(ctx context.Context, userId uuid.UUID, points int64) error

	// DebitIfSufficient subtracts points only if the result stays >= 0.
	// Fails with apperror.CodeInsufficientBalance otherwise.
	DebitIfSufficient(ctx context.Context, userId uuid.UUID, points int64) error
}
