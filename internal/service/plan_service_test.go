package service

import (
	"context"
	"testing"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestListMonthlyPlansOrderedByPrice(t *testing.T) {
	store := newFakeStore()
	seedPlan(store, "Studio", 7900, 600)
	seedPlan(store, "Starter", 900, 50)
	seedPlan(store, "Pro", 2900, 200)

	// Inactive and one-time plans never show up.
	hidden := seedPlan(store, "Legacy", 100, 10)
	h := store.plans[hidden.Id]
	h.IsActive = false
	store.plans[hidden.Id] = h

	oneTime := seedPlan(store, "Booster Pack", 500, 25)
	o := store.plans[oneTime.Id]
	o.BillingInterval = entity.BillingIntervalOneTime
	store.plans[oneTime.Id] = o

	svc := NewPlanService(newFakeFactory(store), nopLogger{})

	plans, err := svc.ListMonthlyPlans(context.Background())
	assert.NoError(t, err)
	assert.Len(t, plans, 3)
	assert.Equal(t, "Starter", plans[0].Name)
	assert.Equal(t, "Pro", plans[1].Name)
	assert.Equal(t, "Studio", plans[2].Name)
}

func TestLoadPurchasablePlan(t *testing.T) {
	store := newFakeStore()
	plan := seedPlan(store, "Pro", 2900, 200)
	svc := NewPlanService(newFakeFactory(store), nopLogger{})

	got, err := svc.LoadPurchasablePlan(context.Background(), plan.Id)
	assert.NoError(t, err)
	assert.Equal(t, plan.Id, got.Id)

	// Deactivated plans behave as if they do not exist.
	p := store.plans[plan.Id]
	p.IsActive = false
	store.plans[plan.Id] = p

	_, err = svc.LoadPurchasablePlan(context.Background(), plan.Id)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}
