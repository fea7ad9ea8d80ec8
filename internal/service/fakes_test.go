package service

import (
	"context"
	"sort"
	"time"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/model"
	"stockpoints-be/internal/pkg/apperror"
	"stockpoints-be/internal/repository/contract"
	"stockpoints-be/internal/repository/specification"
	"stockpoints-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the database. Begin snapshots
// the state; Rollback restores it, so transactional behavior in the
// services is observable in tests.
type fakeStore struct {
	users    map[uuid.UUID]entity.User
	plans    map[uuid.UUID]entity.Plan
	subs     map[uuid.UUID]entity.Subscription
	invoices map[uuid.UUID]entity.Invoice
	balances map[uuid.UUID]int64
	orders   map[uuid.UUID]entity.Order
	notifs   map[uuid.UUID]model.Notification

	seq int // monotonic created_at tiebreaker

	// Error hooks
	failInvoiceCreateForSub map[uuid.UUID]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:                   map[uuid.UUID]entity.User{},
		plans:                   map[uuid.UUID]entity.Plan{},
		subs:                    map[uuid.UUID]entity.Subscription{},
		invoices:                map[uuid.UUID]entity.Invoice{},
		balances:                map[uuid.UUID]int64{},
		orders:                  map[uuid.UUID]entity.Order{},
		notifs:                  map[uuid.UUID]model.Notification{},
		failInvoiceCreateForSub: map[uuid.UUID]error{},
	}
}

func (s *fakeStore) nextTime() time.Time {
	s.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, s.seq, time.UTC)
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.plans {
		cp.plans[k] = v
	}
	for k, v := range s.subs {
		cp.subs[k] = v
	}
	for k, v := range s.invoices {
		inv := v
		inv.Items = append([]entity.InvoiceItem(nil), v.Items...)
		cp.invoices[k] = inv
	}
	for k, v := range s.balances {
		cp.balances[k] = v
	}
	for k, v := range s.orders {
		cp.orders[k] = v
	}
	for k, v := range s.notifs {
		cp.notifs[k] = v
	}
	cp.seq = s.seq
	cp.failInvoiceCreateForSub = s.failInvoiceCreateForSub
	return cp
}

func (s *fakeStore) restore(from *fakeStore) {
	s.users = from.users
	s.plans = from.plans
	s.subs = from.subs
	s.invoices = from.invoices
	s.balances = from.balances
	s.orders = from.orders
	s.notifs = from.notifs
	s.seq = from.seq
}

type fakeFactory struct {
	store *fakeStore
}

func newFakeFactory(store *fakeStore) unitofwork.RepositoryFactory {
	return &fakeFactory{store: store}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store    *fakeStore
	snapshot *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error {
	u.snapshot = u.store.snapshot()
	return nil
}

func (u *fakeUow) Commit() error {
	u.snapshot = nil
	return nil
}

func (u *fakeUow) Rollback() error {
	if u.snapshot != nil {
		u.store.restore(u.snapshot)
		u.snapshot = nil
	}
	return nil
}

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUow) PlanRepository() contract.PlanRepository {
	return &fakePlanRepo{store: u.store}
}

func (u *fakeUow) SubscriptionRepository() contract.SubscriptionRepository {
	return &fakeSubRepo{store: u.store}
}

func (u *fakeUow) InvoiceRepository() contract.InvoiceRepository {
	return &fakeInvoiceRepo{store: u.store}
}

func (u *fakeUow) BalanceRepository() contract.BalanceRepository {
	return &fakeBalanceRepo{store: u.store}
}

func (u *fakeUow) OrderRepository() contract.OrderRepository {
	return &fakeOrderRepo{store: u.store}
}

func (u *fakeUow) NotificationRepository() contract.NotificationRepository {
	return &fakeNotifRepo{store: u.store}
}

// specFilter interprets the subset of specifications the services use.
type specFilter struct {
	byID     *uuid.UUID
	userID   *uuid.UUID
	status   string
	asset    *specification.ByAsset
	due      *specification.DueForRenewal
	monthly  bool
	orderBy  string
	desc     bool
	limit    int
	offset   int
}

func parseSpecs(specs []specification.Specification) specFilter {
	f := specFilter{limit: -1}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			f.byID = &id
		case specification.UserOwnedBy:
			id := s.UserID
			f.userID = &id
		case specification.StatusIs:
			f.status = s.Status
		case specification.ByAsset:
			a := s
			f.asset = &a
		case specification.DueForRenewal:
			d := s
			f.due = &d
		case specification.ActiveMonthlyPlans:
			f.monthly = true
		case specification.OrderBy:
			f.orderBy = s.Field
			f.desc = s.Desc
		case specification.Limit:
			f.limit = s.N
		case specification.Pagination:
			f.limit = s.Limit
			f.offset = s.Offset
		}
	}
	return f
}

// --- Users ---

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	user.CreatedAt = r.store.nextTime()
	r.store.users[user.Id] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.store.users[user.Id] = *user
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	f := parseSpecs(specs)
	if f.byID != nil {
		if u, ok := r.store.users[*f.byID]; ok {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- Plans ---

type fakePlanRepo struct {
	store *fakeStore
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *entity.Plan) error {
	plan.CreatedAt = r.store.nextTime()
	r.store.plans[plan.Id] = *plan
	return nil
}

func (r *fakePlanRepo) Update(ctx context.Context, plan *entity.Plan) error {
	r.store.plans[plan.Id] = *plan
	return nil
}

func (r *fakePlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.plans, id)
	return nil
}

func (r *fakePlanRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Plan, error) {
	f := parseSpecs(specs)
	if f.byID != nil {
		if p, ok := r.store.plans[*f.byID]; ok {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error) {
	f := parseSpecs(specs)
	var result []*entity.Plan
	for _, p := range r.store.plans {
		if f.monthly && (!p.IsActive || p.BillingInterval != entity.BillingIntervalMonth) {
			continue
		}
		cp := p
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if f.orderBy == "price_cents" {
			if f.desc {
				return result[i].PriceCents > result[j].PriceCents
			}
			return result[i].PriceCents < result[j].PriceCents
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// --- Subscriptions ---

type fakeSubRepo struct {
	store *fakeStore
}

func (r *fakeSubRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	sub.CreatedAt = r.store.nextTime()
	r.store.subs[sub.Id] = *sub
	return nil
}

func (r *fakeSubRepo) Update(ctx context.Context, sub *entity.Subscription) error {
	r.store.subs[sub.Id] = *sub
	return nil
}

func (r *fakeSubRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	subs, err := r.FindAll(ctx, specs...)
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return subs[0], nil
}

func (r *fakeSubRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	f := parseSpecs(specs)
	var result []*entity.Subscription
	for _, sub := range r.store.subs {
		if f.byID != nil && sub.Id != *f.byID {
			continue
		}
		if f.userID != nil && sub.UserId != *f.userID {
			continue
		}
		if f.due != nil {
			if sub.CurrentPeriodEnd.After(f.due.Now) || sub.CancelAtPeriodEnd || !sub.Renewable() {
				continue
			}
		}
		cp := sub
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		var before bool
		switch f.orderBy {
		case "current_period_end":
			before = result[i].CurrentPeriodEnd.Before(result[j].CurrentPeriodEnd)
		default:
			before = result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		if f.desc {
			return !before
		}
		return before
	})
	if f.limit >= 0 && len(result) > f.limit {
		result = result[:f.limit]
	}
	return result, nil
}

func (r *fakeSubRepo) FindCurrentForUpdate(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	return r.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: 1},
	)
}

func (r *fakeSubRepo) AdvancePeriod(ctx context.Context, id uuid.UUID, expectedEnd, newStart, newEnd time.Time) (bool, error) {
	sub, ok := r.store.subs[id]
	if !ok || !sub.CurrentPeriodEnd.Equal(expectedEnd) {
		return false, nil
	}
	sub.CurrentPeriodStart = newStart
	sub.CurrentPeriodEnd = newEnd
	sub.Status = entity.SubscriptionStatusActive
	r.store.subs[id] = sub
	return true, nil
}

func (r *fakeSubRepo) SetLastInvoice(ctx context.Context, id uuid.UUID, invoiceId uuid.UUID) error {
	sub, ok := r.store.subs[id]
	if !ok {
		return nil
	}
	inv := invoiceId
	sub.LastInvoiceId = &inv
	r.store.subs[id] = sub
	return nil
}

// --- Invoices ---

type fakeInvoiceRepo struct {
	store *fakeStore
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if err, ok := r.store.failInvoiceCreateForSub[invoice.SubscriptionId]; ok {
		return err
	}
	invoice.CreatedAt = r.store.nextTime()
	cp := *invoice
	cp.Items = append([]entity.InvoiceItem(nil), invoice.Items...)
	r.store.invoices[invoice.Id] = cp
	return nil
}

func (r *fakeInvoiceRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error) {
	invs, err := r.FindAll(ctx, specs...)
	if err != nil || len(invs) == 0 {
		return nil, err
	}
	return invs[0], nil
}

func (r *fakeInvoiceRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error) {
	f := parseSpecs(specs)
	var result []*entity.Invoice
	for _, inv := range r.store.invoices {
		if f.byID != nil && inv.Id != *f.byID {
			continue
		}
		if f.userID != nil && inv.UserId != *f.userID {
			continue
		}
		if f.status != "" && string(inv.Status) != f.status {
			continue
		}
		cp := inv
		cp.Items = append([]entity.InvoiceItem(nil), inv.Items...)
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		before := result[i].CreatedAt.Before(result[j].CreatedAt)
		if f.desc {
			return !before
		}
		return before
	})
	return result, nil
}

func (r *fakeInvoiceRepo) FindOneForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.FindOne(ctx, specification.ByID{ID: id})
}

func (r *fakeInvoiceRepo) MarkPaidIfOpen(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	inv, ok := r.store.invoices[id]
	if !ok || inv.Status != entity.InvoiceStatusOpen {
		return false, nil
	}
	inv.Status = entity.InvoiceStatusPaid
	inv.PaidAt = &paidAt
	r.store.invoices[id] = inv
	return true, nil
}

// --- Balances ---

type fakeBalanceRepo struct {
	store *fakeStore
}

func (r *fakeBalanceRepo) Get(ctx context.Context, userId uuid.UUID) (int64, error) {
	return r.store.balances[userId], nil
}

func (r *fakeBalanceRepo) Credit(ctx context.Context, userId uuid.UUID, points int64) error {
	r.store.balances[userId] += points
	return nil
}

func (r *fakeBalanceRepo) DebitIfSufficient(ctx context.Context, userId uuid.UUID, points int64) error {
	current := r.store.balances[userId]
	if current < points {
		return apperror.InsufficientBalance("insufficient points")
	}
	r.store.balances[userId] = current - points
	return nil
}

// --- Orders ---

type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	order.CreatedAt = r.store.nextTime()
	r.store.orders[order.Id] = *order
	return nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, order *entity.Order) error {
	r.store.orders[order.Id] = *order
	return nil
}

func (r *fakeOrderRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error) {
	orders, err := r.FindAll(ctx, specs...)
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return orders[0], nil
}

func (r *fakeOrderRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Order, error) {
	f := parseSpecs(specs)
	var result []*entity.Order
	for _, order := range r.store.orders {
		if f.byID != nil && order.Id != *f.byID {
			continue
		}
		if f.userID != nil && order.UserId != *f.userID {
			continue
		}
		if f.asset != nil && (order.FileInfo.Site != f.asset.Site || order.FileInfo.ExternalId != f.asset.ExternalId) {
			continue
		}
		cp := order
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		before := result[i].CreatedAt.Before(result[j].CreatedAt)
		if f.desc {
			return !before
		}
		return before
	})
	if f.offset > 0 {
		if f.offset >= len(result) {
			return nil, nil
		}
		result = result[f.offset:]
	}
	if f.limit >= 0 && len(result) > f.limit {
		result = result[:f.limit]
	}
	return result, nil
}

func (r *fakeOrderRepo) FindLatestByAsset(ctx context.Context, userId uuid.UUID, site, externalId string) (*entity.Order, error) {
	return r.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByAsset{Site: site, ExternalId: externalId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

// --- Notifications ---

type fakeNotifRepo struct {
	store *fakeStore
}

func (r *fakeNotifRepo) Create(ctx context.Context, n *model.Notification) error {
	r.store.notifs[n.ID] = *n
	return nil
}

func (r *fakeNotifRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.Notification, error) {
	f := parseSpecs(specs)
	var result []*model.Notification
	for _, n := range r.store.notifs {
		if f.userID != nil && n.UserID != *f.userID {
			continue
		}
		cp := n
		result = append(result, &cp)
	}
	return result, nil
}

func (r *fakeNotifRepo) CountUnread(ctx context.Context, userId uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.store.notifs {
		if n.UserID == userId && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotifRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	if n, ok := r.store.notifs[id]; ok {
		n.IsRead = true
		r.store.notifs[id] = n
	}
	return nil
}

func (r *fakeNotifRepo) MarkAllRead(ctx context.Context, userId uuid.UUID) error {
	for id, n := range r.store.notifs {
		if n.UserID == userId {
			n.IsRead = true
			r.store.notifs[id] = n
		}
	}
	return nil
}

// --- Ambient fakes ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeEmailService struct {
	receipts    int
	orderEmails int
}

func (f *fakeEmailService) SendInvoiceReceipt(toEmail, planName string, amountCents int64, currency string, periodStart, periodEnd time.Time) error {
	f.receipts++
	return nil
}

func (f *fakeEmailService) SendOrderReady(toEmail, assetTitle, downloadURL string) error {
	f.orderEmails++
	return nil
}

type nopQueuePublisher struct{}

func (nopQueuePublisher) Publish(ctx context.Context, payload []byte) error { return nil }
