// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/cultureconnect-be/internal/adapters/db"
	"github.com/ammerola/cultureconnect-be/internal/adapters/events"
	redis_a "github.com/ammerola/cultureconnect-be/internal/adapters/redis_adapter"
	"github.com/ammerola/cultureconnect-be/internal/adapters/storage"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/core/services"
	"github.com/ammerola/cultureconnect-be/internal/pkg/config"
	"github.com/ammerola/cultureconnect-be/internal/pkg/logger"
	"github.com/ammerola/cultureconnect-be/internal/pkg/metrics"
	"github.com/ammerola/cultureconnect-be/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()
	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	objects, err := initStorage(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var publisher interface {
		ports.EventPublisher
		Close() error
	} = events.NewNoopPublisher(slogger)
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(events.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, slogger)
	}
	defer publisher.Close()

	var m *metrics.Metrics
	if cfg.Server.EnableMetrics {
		m = metrics.New()
	}

	// Repositories and services
	products := db.NewProductRepository(database, slogger)
	courses := db.NewCourseRepository(database, slogger)
	showcase := db.NewShowcaseRepository(database, slogger)
	jobs := db.NewJobRepository(database, slogger)
	catalog, err := services.NewCatalogService(products, courses, cache, services.CatalogOptions{
		CacheTTL: cfg.Catalog.CacheTTL,
		MemoSize: cfg.Catalog.MemoSize,
		Metrics:  m,
	}, slogger)
	if err != nil {
		slogger.Error("failed to initialize catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck,
		Logger:          newAsynqLogger(slogger),
	})

	mux := asynq.NewServeMux()
	mux.Use(taskTimeout(cfg.FileProcessing.ProcessingTimeout))

	importProcessor := workers.NewImportProcessor(objects, products, courses, showcase, catalog, jobs, m, slogger)
	mux.HandleFunc(workers.TypeCatalogImport, importProcessor.ProcessImport)

	syllabusProcessor := workers.NewSyllabusProcessor(objects, courses, catalog, jobs, m, slogger)
	mux.HandleFunc(workers.TypeCourseSyllabus, syllabusProcessor.ProcessSyllabus)

	maintenance := workers.NewMaintenanceProcessor(products, catalog, cfg.Asynq.PurgeAfterDays, m, slogger)
	mux.HandleFunc(workers.TypeCatalogWarmup, maintenance.Warmup)
	mux.HandleFunc(workers.TypeCatalogPurge, maintenance.Purge)

	notifications := workers.NewNotificationProcessor(products, publisher, m, slogger)
	mux.HandleFunc(workers.TypeReviewNotify, notifications.NotifySeller)

	scheduler, err := newScheduler(redisOpt, cfg, slogger)
	if err != nil {
		slogger.Error("failed to register periodic tasks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(mux); err != nil {
		slogger.Error("failed to start worker server", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		slogger.Error("failed to start scheduler", slog.String("error", err.Error()))
		srv.Shutdown()
		os.Exit(1)
	}

	var metricsServer *http.Server
	if m != nil && cfg.Asynq.MetricsAddr != "" {
		metricsServer = serveMetrics(cfg.Asynq.MetricsAddr, m, slogger)
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	slogger.Info("worker shutdown complete")
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.ObjectStorage, error) {
	if cfg.AWS.S3Bucket == "" {
		return storage.NewLocalStorage(filepath.Join(cfg.FileProcessing.TempDir, "cultureconnect"), logger), nil
	}
	return storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
}

// newScheduler registers the periodic maintenance tasks. An empty cron spec
// disables the task.
func newScheduler(redisOpt asynq.RedisClientOpt, cfg *config.Config, logger *slog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   newAsynqLogger(logger),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Error("failed to enqueue periodic task", slog.String("error", err.Error()))
			}
		},
	})

	if spec := cfg.Asynq.WarmupInterval; spec != "" {
		if _, err := scheduler.Register(spec, workers.NewWarmupTask()); err != nil {
			return nil, fmt.Errorf("failed to schedule warmup %q: %w", spec, err)
		}
	}
	if spec := cfg.Asynq.PurgeInterval; spec != "" {
		task, err := workers.NewPurgeTask(cfg.Asynq.PurgeAfterDays)
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(spec, task); err != nil {
			return nil, fmt.Errorf("failed to schedule purge %q: %w", spec, err)
		}
	}
	return scheduler, nil
}

func serveMetrics(addr string, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	return srv
}

// taskTimeout bounds each task unless it already carries a deadline.
func taskTimeout(d time.Duration) asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			if _, ok := ctx.Deadline(); ok || d <= 0 {
				return next.ProcessTask(ctx, t)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.ProcessTask(ctx, t)
		})
	}
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.Int("retried", retried),
		slog.Int("max_retry", maxRetry),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
