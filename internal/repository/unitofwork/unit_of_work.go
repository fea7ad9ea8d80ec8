package unitofwork

import (
	"context"

	"stockpoints-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one logical operation. Begin
// switches every accessor onto a single database transaction; the
// invoice-apply and order-debit flows depend on that to stay atomic.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PlanRepository() contract.PlanRepository
	SubscriptionRepository() contract.SubscriptionRepository
	InvoiceRepository() contract.InvoiceRepository
	BalanceRepository() contract.BalanceRepository
	OrderRepository() contract.OrderRepository
	NotificationRepository() contract.NotificationRepository
}
