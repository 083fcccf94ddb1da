// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/cultureconnect-be/internal/adapters/db"
	"github.com/ammerola/cultureconnect-be/internal/adapters/events"
	redis_a "github.com/ammerola/cultureconnect-be/internal/adapters/redis_adapter"
	"github.com/ammerola/cultureconnect-be/internal/adapters/storage"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/core/services"
	"github.com/ammerola/cultureconnect-be/internal/handlers"
	"github.com/ammerola/cultureconnect-be/internal/handlers/middleware"
	"github.com/ammerola/cultureconnect-be/internal/pkg/config"
	"github.com/ammerola/cultureconnect-be/internal/pkg/logger"
	"github.com/ammerola/cultureconnect-be/internal/pkg/metrics"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

const apiV1 = "/api/v1"

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting cultureconnect api",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	if cfg.Database.AutoMigrate && !cfg.IsProduction() {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			// the schema may already be current; the pool below will tell
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
		}
	}

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup(slogger)

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	publisher      io.Closer
	metrics        *metrics.Metrics

	catalogHandler  *handlers.CatalogHandler
	showcaseHandler *handlers.ShowcaseHandler
	reviewHandler   *handlers.ReviewHandler
	sellerHandler   *handlers.SellerHandler
	importHandler   *handlers.ImportHandler
	exportHandler   *handlers.ExportHandler
	healthHandler   *handlers.HealthHandler
}

func (d *dependencies) cleanup(logger *slog.Logger) {
	if d.asynqClient != nil {
		if err := d.asynqClient.Close(); err != nil {
			logger.Error("failed to close asynq client", slog.String("error", err.Error()))
		}
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", slog.String("error", err.Error()))
		}
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}
	if cfg.Server.EnableMetrics {
		deps.metrics = metrics.New()
	}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)
	database, err := db.NewDatabase(ctx, databaseConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis", slog.String("addr", cfg.Redis.Addr()))
	redisClient := newRedisClient(cfg)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		deps.cleanup(logger)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	objects, err := newObjectStorage(ctx, cfg, logger)
	if err != nil {
		deps.cleanup(logger)
		return nil, err
	}

	publisher := newPublisher(cfg, logger)
	deps.publisher = publisher

	// Repositories
	products := db.NewProductRepository(database, logger)
	courses := db.NewCourseRepository(database, logger)
	reviews := db.NewReviewRepository(database, logger)
	showcase := db.NewShowcaseRepository(database, logger)
	jobs := db.NewJobRepository(database, logger)

	// Services
	catalog, err := services.NewCatalogService(products, courses, cache, services.CatalogOptions{
		CacheTTL: cfg.Catalog.CacheTTL,
		MemoSize: cfg.Catalog.MemoSize,
		Metrics:  deps.metrics,
	}, logger)
	if err != nil {
		deps.cleanup(logger)
		return nil, err
	}
	imageLimit := int64(cfg.FileProcessing.ImageMaxSizeMB) << 20
	seller := services.NewSellerService(products, objects, catalog, publisher, imageLimit, logger)
	review := services.NewReviewService(reviews, catalog, deps.asynqClient, publisher, logger)
	featured := services.NewShowcaseService(showcase, cache, cfg.Catalog.FeaturedLimit, cfg.Catalog.CacheTTL, logger)

	// Handlers
	limits := handlers.ListLimits{
		DefaultPageSize: cfg.Catalog.DefaultPageSize,
		MaxPageSize:     cfg.Catalog.MaxPageSize,
	}
	deps.catalogHandler = handlers.NewCatalogHandler(catalog, limits, logger)
	deps.showcaseHandler = handlers.NewShowcaseHandler(featured, logger)
	deps.reviewHandler = handlers.NewReviewHandler(review, logger)
	// a draft carries up to a handful of images plus the form fields
	deps.sellerHandler = handlers.NewSellerHandler(seller, 5*imageLimit+(1<<20), logger)
	deps.exportHandler = handlers.NewExportHandler(catalog, limits, logger)
	deps.importHandler = handlers.NewImportHandler(objects, jobs, deps.asynqClient,
		int64(cfg.FileProcessing.ExcelMaxSizeMB)<<20,
		int64(cfg.FileProcessing.PDFMaxSizeMB)<<20,
		logger)
	deps.healthHandler = handlers.NewHealthHandler(database, redisClient, deps.asynqInspector,
		Version, cfg.App.Environment, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	mws := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID(cfg.Security.RequestIDHeader),
		middleware.Logger(logger, cfg.Security.TrustedProxies),
		middleware.Identity(cfg.Security.UserIDHeader),
		middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration, cfg.Security.TrustedProxies),
		middleware.CORS(cfg.Security.AllowedOrigins),
	}
	if cfg.Security.SecureHeaders {
		mws = append(mws, middleware.SecureHeaders)
	}
	mws = append(mws,
		middleware.Compression,
		middleware.Timeout(cfg.Server.WriteTimeout-cfg.Server.WriteTimeout/10),
		// innermost, so the matched route pattern is set when it records
		middleware.Metrics(deps.metrics),
	)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        middleware.Chain(mux, mws...),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)
	}

	// Public catalog
	mux.HandleFunc("GET "+apiV1+"/products", deps.catalogHandler.ListProducts)
	mux.HandleFunc("GET "+apiV1+"/products/{id}", deps.catalogHandler.GetProduct)
	mux.HandleFunc("GET "+apiV1+"/courses", deps.catalogHandler.ListCourses)
	mux.HandleFunc("GET "+apiV1+"/courses/{id}", deps.catalogHandler.GetCourse)
	mux.HandleFunc("GET "+apiV1+"/showcase", deps.showcaseHandler.Featured)

	// Reviews
	mux.HandleFunc("GET "+apiV1+"/reviews", deps.reviewHandler.List)
	mux.HandleFunc("POST "+apiV1+"/reviews", deps.reviewHandler.Submit)

	// Seller collection
	mux.HandleFunc("GET "+apiV1+"/seller/products", deps.sellerHandler.ListOwn)
	mux.HandleFunc("POST "+apiV1+"/seller/products", deps.sellerHandler.CreateDraft)
	mux.HandleFunc("POST "+apiV1+"/seller/products/{id}", deps.sellerHandler.UpdateDraft)
	mux.HandleFunc("POST "+apiV1+"/seller/products/{id}/publish", deps.sellerHandler.Publish)
	mux.HandleFunc("POST "+apiV1+"/seller/products/{id}/delete", deps.sellerHandler.Delete)

	// Import and export
	mux.HandleFunc("GET "+apiV1+"/export/products.xlsx", deps.exportHandler.ExportProducts)
	mux.HandleFunc("POST "+apiV1+"/import/catalog", deps.importHandler.ImportCatalog)
	mux.HandleFunc("POST "+apiV1+"/import/syllabus/{courseId}", deps.importHandler.ImportSyllabus)
	mux.HandleFunc("GET "+apiV1+"/import/status/{jobId}", deps.importHandler.ImportStatus)

	if cfg.Server.EnableMetrics && deps.metrics != nil {
		mux.Handle("GET /metrics", deps.metrics.Handler())
	}

	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", pprof.Index)
		mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	}
}

func databaseConfig(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Addr(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})
}

// newObjectStorage uses S3 when a bucket is configured and the local disk
// otherwise.
func newObjectStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.ObjectStorage, error) {
	if cfg.AWS.S3Bucket == "" {
		dir := filepath.Join(cfg.FileProcessing.TempDir, "cultureconnect")
		logger.Warn("no S3 bucket configured, storing objects on local disk", slog.String("dir", dir))
		return storage.NewLocalStorage(dir, logger), nil
	}

	s3, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
	}
	return s3, nil
}

type closingPublisher interface {
	ports.EventPublisher
	io.Closer
}

func newPublisher(cfg *config.Config, logger *slog.Logger) closingPublisher {
	if !cfg.Kafka.Enabled {
		return events.NewNoopPublisher(logger)
	}
	logger.Info("publishing catalog events to Kafka",
		slog.Any("brokers", cfg.Kafka.Brokers),
		slog.String("topic", cfg.Kafka.Topic))
	return events.NewKafkaPublisher(events.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		BatchTimeout: cfg.Kafka.BatchTimeout,
	}, logger)
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: databaseConfig(cfg).URL(),
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
