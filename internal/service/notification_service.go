package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockpoints-be/internal/dto"
	"stockpoints-be/internal/model"
	"stockpoints-be/internal/pkg/logger"
	"stockpoints-be/internal/repository/specification"
	"stockpoints-be/internal/repository/unitofwork"
	"stockpoints-be/pkg/events"
	pktNats "stockpoints-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No event subscriber configured, in-app notifications disabled", nil)
		return
	}
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	title, message, ok := renderNotification(event)
	if !ok {
		// Not every bus event becomes an in-app notification.
		return nil
	}

	userId, ok := payloadUserId(event)
	if !ok {
		s.logger.Warn("NotificationService", fmt.Sprintf("No user_id in payload for event %s", event.EventType()), nil)
		return nil
	}

	metaJSON, _ := json.Marshal(event.Payload())
	notif := model.Notification{
		ID:        uuid.New(),
		UserID:    userId,
		TypeCode:  event.EventType(),
		Title:     title,
		Message:   message,
		Metadata:  datatypes.JSON(metaJSON),
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().Create(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", "Error saving notification", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err,
		})
		return err // NATS will retry
	}

	if s.delivery != nil {
		s.delivery.Send(userId, notif)
	}
	return nil
}

// renderNotification maps a bus event to an inbox entry. Returns ok=false
// for event types with no user-facing representation.
func renderNotification(event events.Event) (title, message string, ok bool) {
	payload := event.Payload()
	switch event.EventType() {
	case events.TypeInvoicePaid:
		points, _ := payload["points"].(int64)
		if pf, isFloat := payload["points"].(float64); isFloat {
			points = int64(pf)
		}
		return "Points added", fmt.Sprintf("%d points were added to your balance.", points), true
	case events.TypeSubscriptionRenewed:
		return "Subscription renewed", "Your subscription was renewed for another month.", true
	case events.TypeOrderReady:
		return "Download ready", "Your stock file is ready to download.", true
	case events.TypeOrderFailed:
		return "Order failed", "We could not fulfill your order. Your points were refunded.", true
	}
	return "", "", false
}

func payloadUserId(event events.Event) (uuid.UUID, bool) {
	uidStr, ok := event.Payload()["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		return uuid.Nil, false
	}
	return uid, true
}

// --- Inbox queries ---

func (s *NotificationService) List(ctx context.Context, userId uuid.UUID, page, limit int) ([]*dto.NotificationResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notifs, err := uow.NotificationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.NotificationResponse, 0, len(notifs))
	for _, n := range notifs {
		var meta map[string]any
		if len(n.Metadata) > 0 {
			_ = json.Unmarshal(n.Metadata, &meta)
		}
		result = append(result, &dto.NotificationResponse{
			Id:        n.ID,
			TypeCode:  n.TypeCode,
			Title:     n.Title,
			Message:   n.Message,
			Metadata:  meta,
			IsRead:    n.IsRead,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return result, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().CountUnread(ctx, userId)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().MarkRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().MarkAllRead(ctx, userId)
}
