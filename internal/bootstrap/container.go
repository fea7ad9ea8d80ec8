package bootstrap

import (
	"context"
	"log"

	"stockpoints-be/internal/config"
	"stockpoints-be/internal/controller"
	"stockpoints-be/internal/handler"
	"stockpoints-be/internal/pkg/logger"
	"stockpoints-be/internal/pkg/mailer"
	"stockpoints-be/internal/repository/unitofwork"
	"stockpoints-be/internal/service"
	"stockpoints-be/internal/websocket"
	"stockpoints-be/pkg/fulfillment"

	pktNats "stockpoints-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	BillingController controller.IBillingController
	OrderController   controller.IOrderController
	RenewalController controller.IRenewalController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	RenewalService  service.RenewalService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Fulfillment provider client
	fulfillmentClient := fulfillment.NewHTTPClient(
		cfg.Fulfillment.BaseURL,
		cfg.Fulfillment.APIKey,
		cfg.Fulfillment.RequestTimeout,
		cfg.Fulfillment.MetadataCacheTTL,
	)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.App.OrderPlacedTopic, pubSub)

	userService := service.NewUserService(uowFactory)
	planService := service.NewPlanService(uowFactory, sysLogger)
	invoiceService := service.NewInvoiceService(uowFactory)
	entitlementService := service.NewEntitlementService(uowFactory, emailService, natsPub, sysLogger)
	subscriptionService := service.NewSubscriptionService(
		uowFactory,
		planService,
		invoiceService,
		entitlementService,
		sysLogger,
	)
	renewalService := service.NewRenewalService(
		uowFactory,
		invoiceService,
		entitlementService,
		natsPub,
		cfg.Renewal.ItemTimeout,
		sysLogger,
	)
	orderService := service.NewOrderService(
		uowFactory,
		fulfillmentClient,
		publisherService,
		natsPub,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.OrderPlacedTopic,
		uowFactory,
		fulfillmentClient,
		orderService,
		emailService,
		natsPub,
		cfg.Fulfillment.PollInterval,
		cfg.Fulfillment.MaxPollAttempts,
	)

	// 3.5 Notification System
	notifService := service.NewNotificationService(uowFactory, natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		BillingController: controller.NewBillingController(
			planService,
			subscriptionService,
			invoiceService,
			orderService,
			userService,
		),
		OrderController:   controller.NewOrderController(orderService, userService),
		RenewalController: controller.NewRenewalController(renewalService, cfg.Renewal.Secret),

		ConsumerService: consumerService,
		RenewalService:  renewalService,
	}
}
