package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opsboard/internal/config"
	"opsboard/internal/event"
	"opsboard/internal/mqhandler"
	"opsboard/internal/repository"
	"opsboard/internal/service/notify"
	"opsboard/pkg/db"
	"opsboard/pkg/logger"
	"opsboard/pkg/mq"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting opsboard-notifier...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.Int("interval_minutes", cfg.App.NotifyIntervalMinutes),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	projectRepo := repository.NewProjectRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	briefRepo := repository.NewBriefRepository(dbConn, log)
	dodRepo := repository.NewDoDRepository(dbConn, log)
	reviewRepo := repository.NewReviewRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)

	notifyStore := &repository.NotifyStore{
		Tasks:         taskRepo,
		Projects:      projectRepo,
		Reviews:       reviewRepo,
		Briefs:        briefRepo,
		DoDs:          dodRepo,
		Notifications: notificationRepo,
	}
	notifySvc := notify.NewService(notifyStore, log)

	// MQ publisher for notification.created
	log.Info("Initializing MQ publisher...")
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	notificationCreatedHandler := mqhandler.NewNotificationCreatedHandler(notifySvc, log)
	taskDeletedHandler := mqhandler.NewTaskDeletedHandler(notificationRepo, log)

	// MQ Consumer for notification.created
	log.Info("Initializing MQ consumer for notification.created...",
		zap.String("queue", "notification.created.q"),
		zap.String("routing_key", event.NotificationCreatedKey),
	)
	createdConsumer, err := mq.NewConsumer(cfg.MQ.URL, "notification.created.q", event.NotificationCreatedKey, log)
	if err != nil {
		log.Fatal("Failed to init notification.created consumer", zap.Error(err))
	}
	defer createdConsumer.Close()

	createdConsumer.SetHandler(notificationCreatedHandler.Handle)

	go func() {
		log.Info("Starting notification.created consumer...")
		if err := createdConsumer.StartConsuming(); err != nil {
			log.Fatal("notification.created consumer failed", zap.Error(err))
		}
	}()
	log.Info("notification.created consumer started successfully")

	// MQ Consumer for task.deleted
	log.Info("Initializing MQ consumer for task.deleted...",
		zap.String("queue", "task.deleted.q"),
		zap.String("routing_key", event.TaskDeletedKey),
	)
	deletedConsumer, err := mq.NewConsumer(cfg.MQ.URL, "task.deleted.q", event.TaskDeletedKey, log)
	if err != nil {
		log.Fatal("Failed to init task.deleted consumer", zap.Error(err))
	}
	defer deletedConsumer.Close()

	deletedConsumer.SetHandler(taskDeletedHandler.Handle)

	go func() {
		log.Info("Starting task.deleted consumer...")
		if err := deletedConsumer.StartConsuming(); err != nil {
			log.Fatal("task.deleted consumer failed", zap.Error(err))
		}
	}()
	log.Info("task.deleted consumer started successfully")

	interval := time.Duration(cfg.App.NotifyIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := make(chan struct{})

	generate := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		created, err := notifySvc.GenerateAll(ctx)
		if err != nil {
			log.Error("Notification generation failed", zap.Error(err))
			return
		}
		if len(created) == 0 {
			return
		}
		log.Info("Generated notifications", zap.Int("count", len(created)))
		for i := range created {
			n := created[i]
			payload := event.NotificationCreatedPayload{
				NotificationID: n.ID,
				Type:           string(n.Type),
				TaskID:         n.TaskID,
				ProjectID:      n.ProjectID,
				CreatedAt:      n.CreatedAt,
			}
			if err := publisher.Publish(event.NotificationCreatedKey, payload); err != nil {
				log.Warn("Failed to publish notification.created",
					zap.Int("notification_id", n.ID),
					zap.Error(err),
				)
			}
		}
	}

	go func() {
		generate()
		for {
			select {
			case <-ticker.C:
				generate()
			case <-done:
				return
			}
		}
	}()

	log.Info("opsboard-notifier is fully initialized and running",
		zap.String("mq_queue_created", "notification.created.q"),
		zap.String("mq_queue_deleted", "task.deleted.q"),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down opsboard-notifier gracefully...")
	close(done)
	createdConsumer.Stop()
	deletedConsumer.Stop()

	log.Info("opsboard-notifier stopped")
}
