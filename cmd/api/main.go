package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lendhub/internal/api"
	"lendhub/internal/config"
	"lendhub/internal/database"
	"lendhub/internal/domain"
	"lendhub/internal/events"
	"lendhub/internal/export"
	"lendhub/internal/logging"
	"lendhub/internal/metrics"
	"lendhub/internal/repository"
	"lendhub/internal/service"
	"lendhub/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("database init failed")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, limiter := initRateLimiter(ctx, cfg, &logger)
	defer func() { _ = repository.Close(redisClient) }()

	eventBus := events.NewEventBus()
	subscribeMetrics(eventBus)
	metrics.Register()

	bookingService := service.NewBookingService(db, eventBus, &logger)
	userService := service.NewUserService(db, &logger)
	itemService := service.NewItemService(db, bookingService, &logger)
	requestService := service.NewRequestService(db, &logger)
	commentService := service.NewCommentService(db, eventBus, &logger)

	var reportWorker *worker.ReportWorker
	if cfg.Exports.Enabled {
		reporter := export.NewReporter(db, cfg.Exports.Path)
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		reportWorker = worker.NewReportWorker(reporter, redisClient, retryPolicy, &logger)
		go reportWorker.Start(ctx)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	services := api.Services{
		Bookings: bookingService,
		Items:    itemService,
		Users:    userService,
		Requests: requestService,
		Comments: commentService,
	}
	apiServer := api.NewHTTPServer(cfg.API, services, schedulerOrNil(reportWorker), limiter, &logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("API server error")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRateLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *repository.FailoverLimiter) {
	var redisClient *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primary := repository.NewRedisLimiter(redisClient)
	fallback := repository.NewMemoryLimiter()
	return redisClient, repository.NewFailoverLimiter(primary, fallback, logger)
}

// schedulerOrNil keeps the scheduler interface nil when exports are off; a
// typed nil pointer would pass the api layer's nil check otherwise.
func schedulerOrNil(w *worker.ReportWorker) domain.ExportScheduler {
	if w == nil {
		return nil
	}
	return w
}

func subscribeMetrics(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, func(*events.Event) error {
		metrics.IncBookingCreated()
		return nil
	})
	bus.Subscribe(events.EventBookingApproved, func(*events.Event) error {
		metrics.IncBookingDecision("approved")
		return nil
	})
	bus.Subscribe(events.EventBookingRejected, func(*events.Event) error {
		metrics.IncBookingDecision("rejected")
		return nil
	})
	bus.Subscribe(events.EventCommentAdded, func(*events.Event) error {
		metrics.IncCommentAdded()
		return nil
	})
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("Prometheus metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
