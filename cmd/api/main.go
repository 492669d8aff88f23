package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opsboard/internal/cache"
	"opsboard/internal/config"
	"opsboard/internal/handler"
	"opsboard/internal/httpserver"
	"opsboard/internal/repository"
	"opsboard/internal/service/collab"
	"opsboard/internal/service/export"
	"opsboard/internal/service/kpi"
	"opsboard/internal/service/notify"
	"opsboard/internal/service/search"
	"opsboard/internal/service/template"
	"opsboard/pkg/db"
	"opsboard/pkg/logger"
	"opsboard/pkg/mq"
	"opsboard/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting opsboard-api...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("port", cfg.Server.Port),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	if err := repository.EnsureSchema(context.Background(), dbConn, log); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	projectRepo := repository.NewProjectRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	briefRepo := repository.NewBriefRepository(dbConn, log)
	dodRepo := repository.NewDoDRepository(dbConn, log)
	decisionRepo := repository.NewDecisionRepository(dbConn, log)
	reviewRepo := repository.NewReviewRepository(dbConn, log)
	sampleRepo := repository.NewSampleRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	templateRepo := repository.NewTemplateRepository(dbConn, log)
	userRepo := repository.NewUserRepository(dbConn, log)
	collabRepo := repository.NewCollabRepository(dbConn, log)

	searchStore := &repository.SearchStore{
		Projects:  projectRepo,
		Tasks:     taskRepo,
		Briefs:    briefRepo,
		DoDs:      dodRepo,
		Decisions: decisionRepo,
		Reviews:   reviewRepo,
	}
	exportStore := &repository.ExportStore{
		Projects:  projectRepo,
		Tasks:     taskRepo,
		Briefs:    briefRepo,
		DoDs:      dodRepo,
		Decisions: decisionRepo,
		Reviews:   reviewRepo,
		Samples:   sampleRepo,
	}
	notifyStore := &repository.NotifyStore{
		Tasks:         taskRepo,
		Projects:      projectRepo,
		Reviews:       reviewRepo,
		Briefs:        briefRepo,
		DoDs:          dodRepo,
		Notifications: notificationRepo,
	}
	templateStore := &repository.TemplateStore{
		Templates: templateRepo,
		Projects:  projectRepo,
		Tasks:     taskRepo,
		Briefs:    briefRepo,
		DoDs:      dodRepo,
	}
	collabStore := &repository.CollabStore{
		CollabRepository: collabRepo,
		Users:            userRepo,
		Projects:         projectRepo,
		Tasks:            taskRepo,
	}

	// Redis-backed read cache. The cache is nil-safe, so a missing Redis
	// degrades to uncached reads instead of blocking startup.
	log.Info("Initializing Redis cache...", zap.String("addr", cfg.Redis.Addr))
	var appCache *cache.Cache
	if redisClient, err := redis.NewClient(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, running without cache", zap.Error(err))
	} else {
		defer redisClient.Close()
		appCache = cache.New(redisClient, log)
	}

	// MQ publisher
	log.Info("Initializing MQ publisher...")
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()
	log.Info("MQ publisher initialized successfully")

	kpiSvc := kpi.NewService(taskRepo, projectRepo, reviewRepo, decisionRepo, sampleRepo, briefRepo, dodRepo, appCache, log)
	searchSvc := search.NewService(searchStore, log)
	exportSvc := export.NewService(exportStore, log)
	notifySvc := notify.NewService(notifyStore, log)
	templateSvc := template.NewService(templateStore, log)
	collabSvc := collab.NewService(collabStore, cfg.JWT.Secret, log)

	if cfg.App.SeedTemplatesOnStart {
		if err := templateSvc.SeedSystemTemplates(context.Background()); err != nil {
			log.Error("Failed to seed system templates", zap.Error(err))
		}
	}

	handlers := httpserver.Handlers{
		Project:      handler.NewProjectHandler(projectRepo, appCache, publisher, log),
		Task:         handler.NewTaskHandler(taskRepo, projectRepo, appCache, publisher, log, cfg.App.WIPLimit),
		Brief:        handler.NewBriefHandler(briefRepo, taskRepo, appCache, log),
		DoD:          handler.NewDoDHandler(dodRepo, taskRepo, appCache, log),
		Decision:     handler.NewDecisionHandler(decisionRepo, taskRepo, log),
		Review:       handler.NewReviewHandler(reviewRepo, taskRepo, log),
		Sample:       handler.NewSampleHandler(sampleRepo, taskRepo, appCache, log),
		Dashboard:    handler.NewDashboardHandler(kpiSvc, log),
		Export:       handler.NewExportHandler(exportSvc, log),
		Search:       handler.NewSearchHandler(searchSvc, log),
		Notification: handler.NewNotificationHandler(notifySvc, notificationRepo, publisher, log),
		Template:     handler.NewTemplateHandler(templateSvc, templateStore, log),
		Collab:       handler.NewCollabHandler(collabSvc, log),
	}

	// HTTP Server
	log.Info("Initializing HTTP server...", zap.String("port", cfg.Server.Port))
	router := httpserver.NewRouter(handlers, cfg.JWT.Secret, log, dbConn, publisher)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("opsboard-api is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
		zap.Int("wip_limit", cfg.App.WIPLimit),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down opsboard-api gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("opsboard-api stopped")
}
