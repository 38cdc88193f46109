package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/application/dispatcher"
	"github.com/traveldesk/traveldesk/internal/application/service"
	appwf "github.com/traveldesk/traveldesk/internal/application/workflow"
	"github.com/traveldesk/traveldesk/internal/config"
	"github.com/traveldesk/traveldesk/internal/dedup"
	"github.com/traveldesk/traveldesk/internal/email"
	"github.com/traveldesk/traveldesk/internal/infrastructure/persistence/repository"
	"github.com/traveldesk/traveldesk/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/traveldesk/traveldesk/internal/interfaces/http"
	"github.com/traveldesk/traveldesk/pkg/database"
	"github.com/traveldesk/traveldesk/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Travel Desk approval service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	appLogger := utils.NewAppLogger(logger)

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Persistence layer
	txManager := sqlite.NewDB(db.DB, logger)
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	stepRepo := repository.NewStepRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)

	// Event dispatcher for post-commit notifications
	eventDispatcher := dispatcher.NewDispatcher(dispatcher.WithLogger(appLogger))

	// Workflow engine
	engine := appwf.NewEngine(requestRepo, stepRepo, txManager,
		appwf.WithDispatcher(eventDispatcher),
		appwf.WithHODRule(appwf.DefaultHODRule(cfg.Workflow.ClaimHODThreshold)),
	)

	// Application services
	dedupStore := dedup.NewMemoryStore()
	actionService := service.NewActionService(engine, dedupStore, cfg.Workflow.DedupTTL, appLogger)
	autoGenService := service.NewAutoGenService(requestRepo, stepRepo, txManager, appLogger)
	requestService := service.NewRequestService(requestRepo, stepRepo, txManager, autoGenService, eventDispatcher, appLogger)

	// Notifications ride the dispatcher; delivery failures never block a
	// committed transition
	if cfg.Notifications.Enabled {
		mailer := email.NewSender(email.Config{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   cfg.SMTP.Password,
			SenderName: cfg.SMTP.SenderName,
			FromAddr:   cfg.SMTP.FromAddr,
		}, logger)

		notificationService := service.NewNotificationService(
			requestRepo, notificationRepo, mailer,
			cfg.Notifications.ApproverInbox, appLogger)
		notificationService.RegisterHandlers(eventDispatcher)
	}

	// HTTP server
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, requestService, actionService, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server error", zap.Error(err))
	}

	// Drain in-flight notification handlers before exit
	if err := eventDispatcher.Close(); err != nil {
		logger.Error("Dispatcher shutdown error", zap.Error(err))
	}

	logger.Info("Server exited")
}
