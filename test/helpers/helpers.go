// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/cultureconnect-be/internal/adapters/db"
	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests and
// applies the embedded migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_cultureconnect",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_cultureconnect",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: dbConfig.URL(),
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}
	err = db.RunMigrationsWithRetry(context.Background(), migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates an in-memory Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_cultureconnect",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Catalog: config.CatalogConfig{
			DefaultPageSize: 12,
			MaxPageSize:     100,
			CacheTTL:        time.Minute,
			MemoSize:        64,
			FeaturedLimit:   10,
		},
		Carousel: config.CarouselConfig{
			AutoInterval:    5 * time.Second,
			AnimationWindow: 2 * time.Second,
		},
		FileProcessing: config.FileProcessingConfig{
			PDFMaxSizeMB:      50,
			ExcelMaxSizeMB:    100,
			ImageMaxSizeMB:    5,
			ProcessingTimeout: 5 * time.Minute,
			TempDir:           os.TempDir(),
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
			RequestIDHeader:   "X-Request-ID",
			UserIDHeader:      "X-User-ID",
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestProduct creates a published test product
func CreateTestProduct(overrides ...func(*domain.Product)) *domain.Product {
	now := time.Now().UTC().Truncate(time.Second)
	published := now
	p := &domain.Product{
		ID:           uuid.New(),
		SellerID:     "seller-1",
		Name:         "Madhubani Painting",
		Description:  "Hand painted on handmade paper with natural dyes",
		Category:     domain.CategoryPaintings,
		Condition:    domain.ConditionHandmade,
		Availability: domain.AvailabilityInStock,
		Price:        decimal.NewFromInt(1500),
		Currency:     domain.DefaultCurrency,
		Rating:       4.5,
		ReviewCount:  12,
		Popularity:   340,
		Status:       domain.StatusPublished,
		CreatedAt:    now,
		UpdatedAt:    now,
		PublishedAt:  &published,
	}

	for _, override := range overrides {
		override(p)
	}

	return p
}

// CreateTestProducts creates count products with varied price, rating,
// category and creation time.
func CreateTestProducts(count int) []domain.Product {
	categories := []domain.ProductCategory{
		domain.CategoryPaintings,
		domain.CategoryTextiles,
		domain.CategoryPottery,
		domain.CategoryJewelry,
		domain.CategoryHandicrafts,
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	products := make([]domain.Product, count)
	for i := 0; i < count; i++ {
		products[i] = *CreateTestProduct(func(p *domain.Product) {
			p.Name = fmt.Sprintf("Test Product %d", i+1)
			p.Category = categories[i%len(categories)]
			p.Price = decimal.NewFromInt(int64(100 + (i*37)%2000))
			p.Rating = float64(i%5) + 0.5
			p.Popularity = int64((i * 53) % 1000)
			p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		})
	}
	return products
}

// CreateTestCourse creates a test course
func CreateTestCourse(overrides ...func(*domain.Course)) *domain.Course {
	now := time.Now().UTC().Truncate(time.Second)
	c := &domain.Course{
		ID:            uuid.New(),
		Title:         "Introduction to Kathak",
		Instructor:    "Guru Anjali",
		Description:   "Footwork, spins and storytelling basics",
		Category:      "dance",
		Level:         domain.LevelBeginner,
		Language:      "English",
		Price:         decimal.NewFromInt(2999),
		Rating:        4.7,
		ReviewCount:   210,
		EnrolledCount: 1500,
		DurationHours: decimal.NewFromInt(12),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, override := range overrides {
		override(c)
	}

	return c
}

// CreateTestReview creates a product review by user-1
func CreateTestReview(overrides ...func(*domain.Review)) *domain.Review {
	r := &domain.Review{
		ID:        uuid.New(),
		ItemKind:  domain.KindProduct,
		ItemID:    uuid.New(),
		UserID:    "user-1",
		Rating:    5,
		Comment:   "Beautiful work, arrived well packed",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	for _, override := range overrides {
		override(r)
	}

	return r
}

// CreateTestSlide creates an active showcase slide
func CreateTestSlide(overrides ...func(*domain.ShowcaseSlide)) *domain.ShowcaseSlide {
	s := &domain.ShowcaseSlide{
		ID:        uuid.New(),
		Title:     "Festival of Crafts",
		Subtitle:  "Handmade gifts from across India",
		ImageURL:  "https://cdn.example.com/showcase/crafts.jpg",
		LinkURL:   "/products?category=handicrafts",
		SortOrder: 1,
		Active:    true,
	}

	for _, override := range overrides {
		override(s)
	}

	return s
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"reviews",
		"showcase_slides",
		"async_jobs",
		"products",
		"courses",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
