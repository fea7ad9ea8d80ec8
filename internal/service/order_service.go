// FILE: internal/service/order_service.go
// Service for one-off stock file orders. The balance debit and the order
// insert share one transaction: an order row only exists if the points
// were taken, and vice versa.
package service

import (
	"context"
	"encoding/json"
	"net/http"

	"stockpoints-be/internal/dto"
	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/pkg/apperror"
	"stockpoints-be/internal/pkg/logger"
	"stockpoints-be/internal/repository/specification"
	"stockpoints-be/internal/repository/unitofwork"
	"stockpoints-be/pkg/events"
	"stockpoints-be/pkg/fulfillment"
	pktNats "stockpoints-be/pkg/nats"

	"github.com/google/uuid"
)

type OrderService interface {
	// PlaceOrder charges the asset's point cost and creates a processing
	// order. Re-ordering an asset the user already downloaded is free.
	PlaceOrder(ctx context.Context, userId uuid.UUID, req *dto.PlaceOrderRequest) (*dto.OrderResponse, error)

	ListOrders(ctx context.Context, userId uuid.UUID, page, limit int) ([]*dto.OrderResponse, error)

	// RefreshDownloadLink fetches a fresh short-lived link for a ready order.
	RefreshDownloadLink(ctx context.Context, userId uuid.UUID, orderId uuid.UUID) (*dto.DownloadLinkResponse, error)

	// CompleteOrder and FailOrder are called by the fulfillment consumer.
	CompleteOrder(ctx context.Context, orderId uuid.UUID, downloadURL string) (*entity.Order, error)
	FailOrder(ctx context.Context, orderId uuid.UUID, reason string) (*entity.Order, error)

	GetBalance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error)
}

// OrderPlacedMessage is the in-process queue payload handed to the
// fulfillment consumer.
type OrderPlacedMessage struct {
	OrderId uuid.UUID `json:"order_id"`
	TaskId  string    `json:"task_id"`
}

type orderService struct {
	uowFactory       unitofwork.RepositoryFactory
	fulfillment      fulfillment.Client
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewOrderService(
	uowFactory unitofwork.RepositoryFactory,
	fulfillmentClient fulfillment.Client,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	logger logger.ILogger,
) OrderService {
	return &orderService{
		uowFactory:       uowFactory,
		fulfillment:      fulfillmentClient,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, userId uuid.UUID, req *dto.PlaceOrderRequest) (*dto.OrderResponse, error) {
	meta, err := s.fulfillment.GetMetadata(ctx, req.Site, req.ExternalId)
	if err != nil {
		return nil, err
	}
	if err := validateMetadata(meta); err != nil {
		return nil, err
	}

	prior, err := s.findPriorOrder(ctx, userId, req.Site, req.ExternalId)
	if err != nil {
		return nil, err
	}
	if prior != nil && prior.Status == entity.OrderStatusProcessing {
		return nil, apperror.Conflict("an order for this asset is already in progress")
	}
	if prior != nil && prior.Status == entity.OrderStatusReady {
		return s.placeFreeRedownload(ctx, userId, prior, meta)
	}

	// Create the provider task before charging. If the debit below fails
	// the orphan task simply expires on the provider side.
	task, err := s.fulfillment.CreateTask(ctx, req.Site, req.ExternalId, req.SourceURL)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		Id:     uuid.New(),
		UserId: userId,
		TaskId: task.TaskId,
		FileInfo: entity.FileInfo{
			Site:       meta.Site,
			ExternalId: meta.ExternalId,
			CostPoints: meta.CostPoints,
			Title:      meta.Title,
			PreviewURL: meta.PreviewURL,
		},
		ChargedPoints: meta.CostPoints,
		Status:        entity.OrderStatusProcessing,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.BalanceRepository().DebitIfSufficient(ctx, userId, order.ChargedPoints); err != nil {
		return nil, err
	}
	if err := uow.OrderRepository().Create(ctx, order); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("order", "order placed", map[string]interface{}{
		"order_id":       order.Id.String(),
		"user_id":        userId.String(),
		"charged_points": order.ChargedPoints,
	})
	s.enqueueForFulfillment(ctx, order)

	if s.eventPublisher != nil {
		event := events.NewOrderPlaced(userId, order.Id, order.ChargedPoints)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("order", "failed to publish order placed event", map[string]interface{}{
				"order_id": order.Id.String(),
				"error":    err.Error(),
			})
		}
	}
	return toOrderResponse(order), nil
}

// placeFreeRedownload records a zero-cost order reusing the fulfilled
// provider task of the earlier purchase.
func (s *orderService) placeFreeRedownload(ctx context.Context, userId uuid.UUID, prior *entity.Order, meta *fulfillment.AssetMetadata) (*dto.OrderResponse, error) {
	order := &entity.Order{
		Id:     uuid.New(),
		UserId: userId,
		TaskId: prior.TaskId,
		FileInfo: entity.FileInfo{
			Site:       meta.Site,
			ExternalId: meta.ExternalId,
			CostPoints: meta.CostPoints,
			Title:      meta.Title,
			PreviewURL: meta.PreviewURL,
		},
		ChargedPoints: 0,
		Status:        entity.OrderStatusReady,
		DownloadURL:   prior.DownloadURL,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Zero-point debit still guarantees the balance row exists.
	if err := uow.BalanceRepository().DebitIfSufficient(ctx, userId, 0); err != nil {
		return nil, err
	}
	if err := uow.OrderRepository().Create(ctx, order); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("order", "free re-download granted", map[string]interface{}{
		"order_id":       order.Id.String(),
		"user_id":        userId.String(),
		"prior_order_id": prior.Id.String(),
	})
	return toOrderResponse(order), nil
}

// validateMetadata rejects provider responses that cannot be safely
// charged: a negative cost or missing asset identity.
func validateMetadata(meta *fulfillment.AssetMetadata) error {
	if meta == nil || meta.Site == "" || meta.ExternalId == "" {
		return apperror.Upstream(http.StatusBadGateway, "provider returned incomplete asset metadata", nil)
	}
	if meta.CostPoints < 0 {
		return apperror.Upstream(http.StatusBadGateway, "provider returned a negative asset cost", nil)
	}
	return nil
}

func (s *orderService) findPriorOrder(ctx context.Context, userId uuid.UUID, site, externalId string) (*entity.Order, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.OrderRepository().FindLatestByAsset(ctx, userId, site, externalId)
}

func (s *orderService) enqueueForFulfillment(ctx context.Context, order *entity.Order) {
	payload, err := json.Marshal(OrderPlacedMessage{OrderId: order.Id, TaskId: order.TaskId})
	if err == nil {
		err = s.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		// The consumer's sweep of stale processing orders picks it up.
		s.logger.Error("order", "failed to enqueue order for fulfillment", map[string]interface{}{
			"order_id": order.Id.String(),
			"error":    err.Error(),
		})
	}
}

func (s *orderService) ListOrders(ctx context.Context, userId uuid.UUID, page, limit int) ([]*dto.OrderResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	orders, err := uow.OrderRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	return result, nil
}

func (s *orderService) RefreshDownloadLink(ctx context.Context, userId uuid.UUID, orderId uuid.UUID) (*dto.DownloadLinkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	order, err := uow.OrderRepository().FindOne(ctx,
		specification.ByID{ID: orderId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NotFound("order not found")
	}
	if order.Status != entity.OrderStatusReady {
		return nil, apperror.Conflict("order is not ready for download")
	}

	url, err := s.fulfillment.GetDownloadLink(ctx, order.TaskId)
	if err != nil {
		return nil, err
	}

	order.DownloadURL = &url
	if err := uow.OrderRepository().Update(ctx, order); err != nil {
		s.logger.Warn("order", "failed to store refreshed download link", map[string]interface{}{
			"order_id": order.Id.String(),
			"error":    err.Error(),
		})
	}
	return &dto.DownloadLinkResponse{URL: url}, nil
}

func (s *orderService) CompleteOrder(ctx context.Context, orderId uuid.UUID, downloadURL string) (*entity.Order, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	order, err := uow.OrderRepository().FindOne(ctx, specification.ByID{ID: orderId})
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NotFound("order not found")
	}
	if order.Status != entity.OrderStatusProcessing {
		return order, nil
	}

	order.Status = entity.OrderStatusReady
	order.DownloadURL = &downloadURL
	if err := uow.OrderRepository().Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// FailOrder marks a processing order failed and refunds its points in the
// same transaction.
func (s *orderService) FailOrder(ctx context.Context, orderId uuid.UUID, reason string) (*entity.Order, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	order, err := uow.OrderRepository().FindOne(ctx, specification.ByID{ID: orderId})
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NotFound("order not found")
	}
	if order.Status != entity.OrderStatusProcessing {
		return order, nil
	}

	order.Status = entity.OrderStatusFailed
	if err := uow.OrderRepository().Update(ctx, order); err != nil {
		return nil, err
	}
	if order.ChargedPoints > 0 {
		if err := uow.BalanceRepository().Credit(ctx, order.UserId, order.ChargedPoints); err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Warn("order", "order failed, points refunded", map[string]interface{}{
		"order_id":        order.Id.String(),
		"user_id":         order.UserId.String(),
		"refunded_points": order.ChargedPoints,
		"reason":          reason,
	})
	return order, nil
}

func (s *orderService) GetBalance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	points, err := uow.BalanceRepository().Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{Points: points, UpdatedAt: nowUTC()}, nil
}

func toOrderResponse(order *entity.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		Id:            order.Id,
		Site:          order.FileInfo.Site,
		ExternalId:    order.FileInfo.ExternalId,
		Title:         order.FileInfo.Title,
		PreviewURL:    order.FileInfo.PreviewURL,
		Status:        string(order.Status),
		ChargedPoints: order.ChargedPoints,
		DownloadURL:   order.DownloadURL,
		CreatedAt:     order.CreatedAt,
	}
}
