package service

import (
	"context"
	"testing"
	"time"

	"stockpoints-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func seedUser(store *fakeStore, email string) uuid.UUID {
	id := uuid.New()
	store.users[id] = entity.User{Id: id, Email: email, FullName: "Test User"}
	return id
}

func seedPlan(store *fakeStore, name string, priceCents, points int64) entity.Plan {
	plan := entity.Plan{
		Id:              uuid.New(),
		Name:            name,
		PriceCents:      priceCents,
		Currency:        "USD",
		MonthlyPoints:   points,
		BillingInterval: entity.BillingIntervalMonth,
		IsActive:        true,
	}
	store.plans[plan.Id] = plan
	return plan
}

func seedOpenInvoice(store *fakeStore, userId uuid.UUID, plan entity.Plan) entity.Invoice {
	sub := entity.Subscription{
		Id:                 uuid.New(),
		UserId:             userId,
		PlanId:             plan.Id,
		Status:             entity.SubscriptionStatusActive,
		CurrentPeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CurrentPeriodEnd:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:          store.nextTime(),
	}
	store.subs[sub.Id] = sub

	inv := entity.Invoice{
		Id:             uuid.New(),
		UserId:         userId,
		SubscriptionId: sub.Id,
		PlanSnapshot: entity.PlanSnapshot{
			PlanId:          plan.Id,
			Name:            plan.Name,
			PriceCents:      plan.PriceCents,
			Currency:        plan.Currency,
			MonthlyPoints:   plan.MonthlyPoints,
			BillingInterval: plan.BillingInterval,
		},
		AmountCents: plan.PriceCents,
		Currency:    plan.Currency,
		Status:      entity.InvoiceStatusOpen,
		PeriodStart: sub.CurrentPeriodStart,
		PeriodEnd:   sub.CurrentPeriodEnd,
		CreatedAt:   store.nextTime(),
	}
	store.invoices[inv.Id] = inv
	return inv
}

func newEntitlementFixture(store *fakeStore) (EntitlementService, *fakeEmailService) {
	email := &fakeEmailService{}
	svc := NewEntitlementService(newFakeFactory(store), email, nil, nopLogger{})
	return svc, email
}

func TestApplyPaidInvoiceCreditsSnapshotPoints(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "alice@example.com")
	plan := seedPlan(store, "Pro", 2900, 200)
	inv := seedOpenInvoice(store, userId, plan)

	svc, email := newEntitlementFixture(store)

	err := svc.ApplyPaidInvoice(context.Background(), inv.Id)
	assert.NoError(t, err)

	assert.Equal(t, int64(200), store.balances[userId])
	assert.Equal(t, entity.InvoiceStatusPaid, store.invoices[inv.Id].Status)
	assert.NotNil(t, store.invoices[inv.Id].PaidAt)

	sub := store.subs[inv.SubscriptionId]
	if assert.NotNil(t, sub.LastInvoiceId) {
		assert.Equal(t, inv.Id, *sub.LastInvoiceId)
	}
	assert.Equal(t, 1, email.receipts)
}

func TestApplyPaidInvoiceIsIdempotent(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "bob@example.com")
	plan := seedPlan(store, "Pro", 2900, 200)
	inv := seedOpenInvoice(store, userId, plan)

	svc, email := newEntitlementFixture(store)

	assert.NoError(t, svc.ApplyPaidInvoice(context.Background(), inv.Id))
	assert.NoError(t, svc.ApplyPaidInvoice(context.Background(), inv.Id))
	assert.NoError(t, svc.ApplyPaidInvoice(context.Background(), inv.Id))

	// Credited exactly once, one receipt.
	assert.Equal(t, int64(200), store.balances[userId])
	assert.Equal(t, 1, email.receipts)
}

func TestApplyPaidInvoiceUsesSnapshotNotCatalog(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "carol@example.com")
	plan := seedPlan(store, "Pro", 2900, 200)
	inv := seedOpenInvoice(store, userId, plan)

	// Operator doubles the plan's points after the invoice was issued.
	edited := plan
	edited.MonthlyPoints = 400
	store.plans[plan.Id] = edited

	svc, _ := newEntitlementFixture(store)
	assert.NoError(t, svc.ApplyPaidInvoice(context.Background(), inv.Id))

	// The frozen snapshot wins.
	assert.Equal(t, int64(200), store.balances[userId])
}

func TestApplyPaidInvoiceUnknownInvoice(t *testing.T) {
	store := newFakeStore()
	svc, _ := newEntitlementFixture(store)

	err := svc.ApplyPaidInvoice(context.Background(), uuid.New())
	assert.Error(t, err)
}
