package service

import (
	"context"
	"testing"

	"stockpoints-be/internal/dto"
	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/pkg/apperror"
	"stockpoints-be/pkg/fulfillment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeFulfillmentClient struct {
	metadata     map[string]*fulfillment.AssetMetadata
	tasksCreated int
	statuses     map[string]string
	links        map[string]string
	linkErr      error
}

func newFakeFulfillment() *fakeFulfillmentClient {
	return &fakeFulfillmentClient{
		metadata: map[string]*fulfillment.AssetMetadata{},
		statuses: map[string]string{},
		links:    map[string]string{},
	}
}

func (f *fakeFulfillmentClient) GetMetadata(ctx context.Context, site, externalId string) (*fulfillment.AssetMetadata, error) {
	meta, ok := f.metadata[site+"/"+externalId]
	if !ok {
		return nil, apperror.NotFound("asset not found at provider")
	}
	return meta, nil
}

func (f *fakeFulfillmentClient) CreateTask(ctx context.Context, site, externalId, sourceURL string) (*fulfillment.Task, error) {
	f.tasksCreated++
	return &fulfillment.Task{TaskId: "task-" + site + "-" + externalId}, nil
}

func (f *fakeFulfillmentClient) GetStatus(ctx context.Context, taskId string) (*fulfillment.TaskStatus, error) {
	status, ok := f.statuses[taskId]
	if !ok {
		status = fulfillment.StatusProcessing
	}
	return &fulfillment.TaskStatus{TaskId: taskId, Status: status}, nil
}

func (f *fakeFulfillmentClient) GetDownloadLink(ctx context.Context, taskId string) (string, error) {
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return f.links[taskId], nil
}

func newOrderFixture(store *fakeStore, client fulfillment.Client) OrderService {
	return NewOrderService(newFakeFactory(store), client, nopQueuePublisher{}, nil, nopLogger{})
}

func seedAsset(client *fakeFulfillmentClient, site, externalId string, cost int64) {
	client.metadata[site+"/"+externalId] = &fulfillment.AssetMetadata{
		Site:       site,
		ExternalId: externalId,
		Title:      "Sunset over mountains",
		PreviewURL: "https://cdn.example.com/preview.jpg",
		CostPoints: cost,
	}
}

func TestPlaceOrderDebitsAndCreates(t *testing.T) {
	store := newFakeStore()
	client := newFakeFulfillment()
	userId := seedUser(store, "alice@example.com")
	store.balances[userId] = 100
	seedAsset(client, "photostock", "12345", 10)

	svc := newOrderFixture(store, client)

	res, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
		Site:       "photostock",
		ExternalId: "12345",
	})
	assert.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusProcessing), res.Status)
	assert.Equal(t, int64(10), res.ChargedPoints)

	assert.Equal(t, int64(90), store.balances[userId])
	assert.Len(t, store.orders, 1)
	assert.Equal(t, 1, client.tasksCreated)
}

func TestPlaceOrderRejectsBadProviderMetadata(t *testing.T) {
	cases := []struct {
		name string
		meta *fulfillment.AssetMetadata
	}{
		{"negative cost", &fulfillment.AssetMetadata{Site: "photostock", ExternalId: "12345", CostPoints: -5}},
		{"missing site", &fulfillment.AssetMetadata{ExternalId: "12345", CostPoints: 10}},
		{"missing external id", &fulfillment.AssetMetadata{Site: "photostock", CostPoints: 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			client := newFakeFulfillment()
			userId := seedUser(store, "alice@example.com")
			store.balances[userId] = 100
			client.metadata["photostock/12345"] = tc.meta

			svc := newOrderFixture(store, client)

			_, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
				Site:       "photostock",
				ExternalId: "12345",
			})
			assert.Equal(t, apperror.CodeUpstreamFailure, apperror.CodeOf(err))

			// Rejected before any side effect: no provider task, no
			// order, no charge.
			assert.Zero(t, client.tasksCreated)
			assert.Empty(t, store.orders)
			assert.Equal(t, int64(100), store.balances[userId])
		})
	}
}

func TestPlaceOrderInsufficientBalance(t *testing.T) {
	store := newFakeStore()
	client := newFakeFulfillment()
	userId := seedUser(store, "alice@example.com")
	store.balances[userId] = 5
	seedAsset(client, "photostock", "12345", 10)

	svc := newOrderFixture(store, client)

	_, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
		Site:       "photostock",
		ExternalId: "12345",
	})
	assert.Equal(t, apperror.CodeInsufficientBalance, apperror.CodeOf(err))

	// No order row, balance untouched.
	assert.Empty(t, store.orders)
	assert.Equal(t, int64(5), store.balances[userId])
}

func TestPlaceOrderUnknownAsset(t *testing.T) {
	store := newFakeStore()
	client := newFakeFulfillment()
	userId := seedUser(store, "alice@example.com")
	store.balances[userId] = 100

	svc := newOrderFixture(store, client)

	_, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
		Site:       "photostock",
		ExternalId: "nope",
	})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
	assert.Equal(t, int64(100), store.balances[userId])
}

func TestPlaceOrderFreeRedownload(t *testing.T) {
	store := newFakeStore()
	client := newFakeFulfillment()
	userId := seedUser(store, "alice@example.com")
	store.balances[userId] = 100
	seedAsset(client, "photostock", "12345", 10)

	svc := newOrderFixture(store, client)

	first, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
		Site:       "photostock",
		ExternalId: "12345",
	})
	assert.NoError(t, err)

	// Fulfillment finishes the first order.
	_, err = svc.CompleteOrder(context.Background(), first.Id, "https://dl.example.com/file.zip")
	assert.NoError(t, err)

	second, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
		Site:       "photostock",
		ExternalId: "12345",
	})
	assert.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusReady), second.Status)
	assert.Zero(t, second.ChargedPoints)
	if assert.NotNil(t, second.DownloadURL) {
		assert.Equal(t, "https://dl.example.com/file.zip", *second.DownloadURL)
	}

	// Only the first order cost anything, and no new provider task.
	assert.Equal(t, int64(90), store.balances[userId])
	assert.Equal(t, 1, client.tasksCreated)
	assert.Len(t, store.orders, 2)
}

func TestPlaceOrderConflictsWhileProcessing(t *testing.T) {
	store := newFakeStore()
	client := newFakeFulfillment()
	userId := seedUser(store, "alice@example.com")
	store.balances[userId] = 100
	seedAsset(client, "photostock", "12345", 10)

	svc := newOrderFixture(store, client)

	_, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
		Site:       "photostock",
		ExternalId: "12345",
	})
	assert.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
		Site:       "photostock",
		ExternalId: "12345",
	})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
	assert.Equal(t, int64(90), store.balances[userId])
}

func TestFailOrderRefunds(t *testing.T) {
	store := newFakeStore()
	client := newFakeFulfillment()
	userId := seedUser(store, "alice@example.com")
	store.balances[userId] = 100
	seedAsset(client, "photostock", "12345", 10)

	svc := newOrderFixture(store, client)

	placed, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
		Site:       "photostock",
		ExternalId: "12345",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(90), store.balances[userId])

	order, err := svc.FailOrder(context.Background(), placed.Id, "provider error")
	assert.NoError(t, err)
	assert.Equal(t, entity.OrderStatusFailed, order.Status)
	assert.Equal(t, int64(100), store.balances[userId])

	// Failing again is a no-op: no double refund.
	_, err = svc.FailOrder(context.Background(), placed.Id, "provider error")
	assert.NoError(t, err)
	assert.Equal(t, int64(100), store.balances[userId])
}

func TestRefreshDownloadLink(t *testing.T) {
	store := newFakeStore()
	client := newFakeFulfillment()
	userId := seedUser(store, "alice@example.com")
	store.balances[userId] = 100
	seedAsset(client, "photostock", "12345", 10)

	svc := newOrderFixture(store, client)

	placed, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{
		Site:       "photostock",
		ExternalId: "12345",
	})
	assert.NoError(t, err)

	// Not ready yet.
	_, err = svc.RefreshDownloadLink(context.Background(), userId, placed.Id)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	_, err = svc.CompleteOrder(context.Background(), placed.Id, "https://dl.example.com/old.zip")
	assert.NoError(t, err)

	client.links["task-photostock-12345"] = "https://dl.example.com/fresh.zip"
	res, err := svc.RefreshDownloadLink(context.Background(), userId, placed.Id)
	assert.NoError(t, err)
	assert.Equal(t, "https://dl.example.com/fresh.zip", res.URL)

	// Another user cannot touch the order.
	stranger := seedUser(store, "mallory@example.com")
	_, err = svc.RefreshDownloadLink(context.Background(), stranger, placed.Id)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := newFakeStore()
	client := newFakeFulfillment()
	userId := seedUser(store, "alice@example.com")
	store.balances[userId] = 100
	seedAsset(client, "photostock", "a", 1)
	seedAsset(client, "photostock", "b", 1)

	svc := newOrderFixture(store, client)

	_, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{Site: "photostock", ExternalId: "a"})
	assert.NoError(t, err)
	second, err := svc.PlaceOrder(context.Background(), userId, &dto.PlaceOrderRequest{Site: "photostock", ExternalId: "b"})
	assert.NoError(t, err)

	orders, err := svc.ListOrders(context.Background(), userId, 1, 20)
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, second.Id, orders[0].Id)

	// Other users see nothing.
	other := seedUser(store, "bob@example.com")
	orders, err = svc.ListOrders(context.Background(), other, 1, 20)
	assert.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGetBalance(t *testing.T) {
	store := newFakeStore()
	userId := seedUser(store, "alice@example.com")
	store.balances[userId] = 42

	svc := newOrderFixture(store, newFakeFulfillment())

	res, err := svc.GetBalance(context.Background(), userId)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), res.Points)

	// Unknown users read as zero, not as an error.
	res, err = svc.GetBalance(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Zero(t, res.Points)
}
