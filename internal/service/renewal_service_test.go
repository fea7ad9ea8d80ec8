package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockpoints-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newRenewalFixture(store *fakeStore) RenewalService {
	factory := newFakeFactory(store)
	invoiceSvc := NewInvoiceService(factory)
	entitlementSvc := NewEntitlementService(factory, &fakeEmailService{}, nil, nopLogger{})
	return NewRenewalService(factory, invoiceSvc, entitlementSvc, nil, time.Second, nopLogger{})
}

func seedDueSubscription(store *fakeStore, userId uuid.UUID, plan entity.Plan, periodEnd time.Time) entity.Subscription {
	sub := entity.Subscription{
		Id:                 uuid.New(),
		UserId:             userId,
		PlanId:             plan.Id,
		Status:             entity.SubscriptionStatusActive,
		CurrentPeriodStart: addCalendarMonth(periodEnd.AddDate(0, -2, 0)),
		CurrentPeriodEnd:   periodEnd,
		CreatedAt:          store.nextTime(),
	}
	store.subs[sub.Id] = sub
	return sub
}

func TestRunDueRenewalsProcessesElapsedSubscription(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "alice@example.com")
	plan := seedPlan(store, "Pro", 2900, 200)
	oldEnd := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	sub := seedDueSubscription(store, userId, plan, oldEnd)

	svc := newRenewalFixture(store)

	res, err := svc.RunDueRenewals(context.Background())
	assert.NoError(t, err)
	assert.Len(t, res.Processed, 1)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, sub.Id, res.Processed[0].SubscriptionId)

	// New period anchored on the old end, not on the run time.
	renewed := store.subs[sub.Id]
	assert.True(t, renewed.CurrentPeriodStart.Equal(oldEnd))
	assert.True(t, renewed.CurrentPeriodEnd.Equal(addCalendarMonth(oldEnd)))

	// Invoice charged and applied.
	assert.Equal(t, int64(200), store.balances[userId])
	inv := store.invoices[res.Processed[0].InvoiceId]
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.PeriodStart.Equal(oldEnd))
}

func TestRunDueRenewalsSkipsCanceled(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "alice@example.com")
	plan := seedPlan(store, "Pro", 2900, 200)
	sub := seedDueSubscription(store, userId, plan, time.Now().UTC().Add(-time.Hour))
	s := store.subs[sub.Id]
	s.CancelAtPeriodEnd = true
	store.subs[sub.Id] = s

	svc := newRenewalFixture(store)

	res, err := svc.RunDueRenewals(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, res.Processed)
	assert.Empty(t, res.Skipped) // never selected at all
	assert.Zero(t, store.balances[userId])
	assert.Empty(t, store.invoices)
}

func TestRunDueRenewalsIgnoresFutureSubscriptions(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "alice@example.com")
	plan := seedPlan(store, "Pro", 2900, 200)
	seedDueSubscription(store, userId, plan, time.Now().UTC().Add(24*time.Hour))

	svc := newRenewalFixture(store)

	res, err := svc.RunDueRenewals(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, res.Processed)
	assert.Empty(t, res.Skipped)
}

func TestRunDueRenewalsOneFailureDoesNotPoisonBatch(t *testing.T) {
	store := newFakeStore()
	plan := seedPlan(store, "Pro", 2900, 200)

	user1 := seedUser(store, "a@example.com")
	user2 := seedUser(store, "b@example.com")
	user3 := seedUser(store, "c@example.com")

	due := time.Now().UTC().Add(-time.Hour)
	sub1 := seedDueSubscription(store, user1, plan, due)
	sub2 := seedDueSubscription(store, user2, plan, due.Add(time.Minute))
	sub3 := seedDueSubscription(store, user3, plan, due.Add(2*time.Minute))

	// Invoice creation blows up for the middle subscription only.
	store.failInvoiceCreateForSub[sub2.Id] = errors.New("db write failed")

	svc := newRenewalFixture(store)

	res, err := svc.RunDueRenewals(context.Background())
	assert.NoError(t, err)
	assert.Len(t, res.Processed, 2)
	assert.Len(t, res.Skipped, 1)
	assert.Equal(t, sub2.Id, res.Skipped[0].SubscriptionId)

	// The failed item rolled back completely: period untouched, nothing
	// credited, so the next run retries it.
	failed := store.subs[sub2.Id]
	assert.True(t, failed.CurrentPeriodEnd.Equal(sub2.CurrentPeriodEnd))
	assert.Equal(t, entity.SubscriptionStatusActive, failed.Status)
	assert.Zero(t, store.balances[user2])

	// The healthy neighbors renewed normally.
	assert.Equal(t, int64(200), store.balances[user1])
	assert.Equal(t, int64(200), store.balances[user3])
	_ = sub1
	_ = sub3
}

func TestRunDueRenewalsReportsUnresolvablePlan(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "alice@example.com")
	plan := seedPlan(store, "Pro", 2900, 200)
	sub := seedDueSubscription(store, userId, plan, time.Now().UTC().Add(-time.Hour))

	// Dangling plan reference.
	delete(store.plans, plan.Id)

	svc := newRenewalFixture(store)

	res, err := svc.RunDueRenewals(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, res.Processed)
	if assert.Len(t, res.Skipped, 1) {
		assert.Equal(t, sub.Id, res.Skipped[0].SubscriptionId)
		assert.Contains(t, res.Skipped[0].Reason, "plan cannot be resolved")
		assert.NotEqual(t, "already processed", res.Skipped[0].Reason)
	}

	// Nothing was billed or advanced.
	assert.Zero(t, store.balances[userId])
	assert.Empty(t, store.invoices)
	assert.True(t, store.subs[sub.Id].CurrentPeriodEnd.Equal(sub.CurrentPeriodEnd))
}

func TestRunDueRenewalsBillsPlanChangedMidCycle(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "alice@example.com")
	pro := seedPlan(store, "Pro", 2900, 200)
	studio := seedPlan(store, "Studio", 7900, 600)

	subSvc := newSubscriptionFixture(store)
	_, err := subSvc.Subscribe(context.Background(), userId, pro.Id)
	assert.NoError(t, err)
	_, err = subSvc.ChangePlan(context.Background(), userId, studio.Id)
	assert.NoError(t, err)

	// Only the initial Pro grant so far; force the period to elapse.
	assert.Equal(t, int64(200), store.balances[userId])
	for id, sub := range store.subs {
		sub.CurrentPeriodStart = sub.CurrentPeriodStart.AddDate(0, -2, 0)
		sub.CurrentPeriodEnd = sub.CurrentPeriodEnd.AddDate(0, -2, 0)
		store.subs[id] = sub
	}

	svc := newRenewalFixture(store)

	res, err := svc.RunDueRenewals(context.Background())
	assert.NoError(t, err)
	assert.Len(t, res.Processed, 1)

	// The renewal invoices the new plan.
	inv := store.invoices[res.Processed[0].InvoiceId]
	assert.Equal(t, "Studio", inv.PlanSnapshot.Name)
	assert.Equal(t, int64(7900), inv.AmountCents)
	assert.Equal(t, int64(800), store.balances[userId])
}

func TestRunDueRenewalsIdempotentAcrossRuns(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "alice@example.com")
	plan := seedPlan(store, "Pro", 2900, 200)
	seedDueSubscription(store, userId, plan, time.Now().UTC().Add(-time.Hour))

	svc := newRenewalFixture(store)

	first, err := svc.RunDueRenewals(context.Background())
	assert.NoError(t, err)
	assert.Len(t, first.Processed, 1)

	// Period is now in the future, so the second run finds nothing due.
	second, err := svc.RunDueRenewals(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, second.Processed)

	assert.Equal(t, int64(200), store.balances[userId])
	assert.Len(t, store.invoices, 1)
}
