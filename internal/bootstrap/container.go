package bootstrap

import (
	"context"
	"log"

	"saraswati-be/internal/config"
	"saraswati-be/internal/controller"
	"saraswati-be/internal/handler"
	"saraswati-be/internal/pkg/locker"
	"saraswati-be/internal/pkg/logger"
	"saraswati-be/internal/pkg/mailer"
	"saraswati-be/internal/repository/memory"
	"saraswati-be/internal/repository/unitofwork"
	"saraswati-be/internal/service"
	"saraswati-be/internal/websocket"

	pktNats "saraswati-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NoteController   controller.INoteController
	ReviewController controller.IReviewController

	// Background Services (Exposed for main.go to run)
	IndexerService service.IIndexerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Shared infrastructure
	Logger logger.ILogger
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

	// 3. Workflow infrastructure
	noteLocker := locker.NewNoteLocker()
	idempotencyRepo := memory.NewIdempotencyRepository()

	publisherService := service.NewPublisherService(pubSub, cfg.Workflow.IndexTopic)
	indexerService := service.NewIndexerService(
		pubSub,
		cfg.Workflow.IndexTopic,
		uowFactory,
		natsPub,
	)

	// 4. Services
	noteService := service.NewNoteService(uowFactory, noteLocker, natsPub, sysLogger)
	reviewService := service.NewReviewService(
		uowFactory,
		noteLocker,
		idempotencyRepo,
		publisherService,
		natsPub,
		emailService,
		sysLogger,
		cfg.Workflow.MinApprovals,
	)

	// 4.5 Notification System
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		NoteController:      controller.NewNoteController(noteService),
		ReviewController:    controller.NewReviewController(reviewService),

		IndexerService: indexerService,

		Logger: sysLogger,
	}
}
