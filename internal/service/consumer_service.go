// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"stockpoints-be/internal/pkg/mailer"
	"stockpoints-be/internal/repository/specification"
	"stockpoints-be/internal/repository/unitofwork"
	"stockpoints-be/pkg/events"
	"stockpoints-be/pkg/fulfillment"
	pktNats "stockpoints-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the order queue: it polls the fulfillment
// provider until each task resolves, then settles the order.
type consumerService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	uowFactory      unitofwork.RepositoryFactory
	fulfillment     fulfillment.Client
	orderService    OrderService
	emailService    mailer.IEmailService
	eventPublisher  *pktNats.Publisher
	pollInterval    time.Duration
	maxPollAttempts int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	fulfillmentClient fulfillment.Client,
	orderService OrderService,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	pollInterval time.Duration,
	maxPollAttempts int,
) IConsumerService {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if maxPollAttempts <= 0 {
		maxPollAttempts = 60
	}
	return &consumerService{
		pubSub:          pubSub,
		topicName:       topicName,
		uowFactory:      uowFactory,
		fulfillment:     fulfillmentClient,
		orderService:    orderService,
		emailService:    emailService,
		eventPublisher:  eventPublisher,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload OrderPlacedMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal order message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Watching fulfillment task %s for order %s", payload.TaskId, payload.OrderId)

	// Poll in a dedicated goroutine so a slow provider never blocks the
	// rest of the queue.
	go cs.watchTask(ctx, payload)
	msg.Ack()
}

func (cs *consumerService) watchTask(ctx context.Context, payload OrderPlacedMessage) {
	ticker := time.NewTicker(cs.pollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < cs.maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := cs.fulfillment.GetStatus(ctx, payload.TaskId)
		if err != nil {
			log.Printf("[WARN] Status check failed for task %s (attempt %d): %v", payload.TaskId, attempt+1, err)
			continue
		}

		switch status.Status {
		case fulfillment.StatusReady:
			cs.settleReady(ctx, payload)
			return
		case fulfillment.StatusFailed:
			cs.settleFailed(ctx, payload, status.Error)
			return
		}
		// pending / processing: keep polling
	}

	log.Printf("[WARN] Task %s did not resolve in time, failing order %s", payload.TaskId, payload.OrderId)
	cs.settleFailed(ctx, payload, "fulfillment timed out")
}

func (cs *consumerService) settleReady(ctx context.Context, payload OrderPlacedMessage) {
	url, err := cs.fulfillment.GetDownloadLink(ctx, payload.TaskId)
	if err != nil {
		log.Printf("[ERROR] Failed to fetch download link for task %s: %v", payload.TaskId, err)
		cs.settleFailed(ctx, payload, "could not obtain download link")
		return
	}

	order, err := cs.orderService.CompleteOrder(ctx, payload.OrderId, url)
	if err != nil {
		log.Printf("[ERROR] Failed to complete order %s: %v", payload.OrderId, err)
		return
	}
	log.Printf("[INFO] Order %s ready", order.Id)

	if cs.eventPublisher != nil {
		evt := events.NewOrderReady(order.UserId, order.Id)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish order ready event: %v", err)
		}
	}
	cs.sendReadyEmail(ctx, order.UserId, order.FileInfo.Title, url)
}

func (cs *consumerService) settleFailed(ctx context.Context, payload OrderPlacedMessage, reason string) {
	order, err := cs.orderService.FailOrder(ctx, payload.OrderId, reason)
	if err != nil {
		log.Printf("[ERROR] Failed to fail order %s: %v", payload.OrderId, err)
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewOrderFailed(order.UserId, order.Id, reason)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish order failed event: %v", err)
		}
	}
}

func (cs *consumerService) sendReadyEmail(ctx context.Context, userId uuid.UUID, title, url string) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		return
	}
	if err := cs.emailService.SendOrderReady(user.Email, title, url); err != nil {
		log.Printf("[WARN] Failed to send order ready email: %v", err)
	}
}
