package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"khata/internal/config"
	redisstore "khata/internal/draftstore/redis"
	"khata/internal/draftstore/memory"
	kafkaevents "khata/internal/events/kafka"
	"khata/internal/events/noop"
	"khata/internal/handler"
	"khata/internal/logging"
	"khata/internal/metrics"
	"khata/internal/port"
	"khata/internal/repository/postgres"
	"khata/internal/router"
	"khata/internal/service"
)

const connectTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	db, err := postgres.NewDB(connectCtx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	settingsRepo := postgres.NewTenantSettingsRepo(db)
	ledgerRepo := postgres.NewDutyLedgerRepo(db)
	stockRepo := postgres.NewStockRepo(db)
	partyRepo := postgres.NewPartyRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	cashbookRepo := postgres.NewCashbookRepo(db)

	// Draft store: Redis when configured, otherwise process memory
	var drafts port.DraftStore
	if cfg.Redis.Addr != "" {
		client := redisstore.NewClient(cfg.Redis)
		defer func() { _ = client.Close() }()
		drafts = redisstore.NewStore(client, cfg.Draft.TTL, logger)
		if err := drafts.Ping(connectCtx); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("draft store: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		drafts = memory.NewStore(cfg.Draft.TTL)
		logger.Warn("draft store: in-memory; drafts are lost on restart")
	}

	// Event publisher: Kafka when brokers are configured
	var publisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = kafkaevents.NewPublisher(kafkaevents.NewWriter(cfg.Kafka, logger), logger)
		logger.Info("events: kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		publisher = noop.NewPublisher(logger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("closing event publisher", zap.Error(err))
		}
	}()

	var rec *metrics.Recorder
	if cfg.Metrics.Enabled {
		rec = metrics.New()
	}

	// Initialize services
	validator := service.NewTokenValidator(cfg.JWT)
	draftSvc := service.NewDraftService(settingsRepo, ledgerRepo, stockRepo, partyRepo, docRepo,
		cashbookRepo, drafts, publisher, rec, logger)
	totalsSvc := service.NewTotalsService(settingsRepo, ledgerRepo, rec)

	// Initialize handlers
	handlers := router.Handlers{
		Draft:  handler.NewDraftHandler(draftSvc),
		Totals: handler.NewTotalsHandler(totalsSvc),
		Health: handler.NewHealthHandler(db, handler.PingFunc(drafts.Ping)),
	}

	// Setup router
	r := router.Setup(cfg, validator, handlers, rec, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Port), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
