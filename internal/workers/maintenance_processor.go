// internal/workers/maintenance_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/pkg/metrics"
)

// MaintenanceProcessor runs the scheduled catalog housekeeping tasks
type MaintenanceProcessor struct {
	products    ports.ProductRepository
	catalog     ports.CatalogService
	defaultDays int
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewMaintenanceProcessor creates a new maintenance processor. defaultDays
// is the retention used when a purge task does not carry one.
func NewMaintenanceProcessor(products ports.ProductRepository, catalog ports.CatalogService, defaultDays int,
	m *metrics.Metrics, logger *slog.Logger) *MaintenanceProcessor {
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &MaintenanceProcessor{
		products:    products,
		catalog:     catalog,
		defaultDays: defaultDays,
		now:         func() time.Time { return time.Now().UTC() },
		metrics:     m,
		logger:      logger.With(slog.String("processor", "maintenance")),
	}
}

// Purge handles TypeCatalogPurge: products soft-deleted before the
// retention window are removed for good.
func (p *MaintenanceProcessor) Purge(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { p.metrics.IncTask(t.Type(), err) }()

	payload := PurgePayload{OlderThanDays: p.defaultDays}
	if len(t.Payload()) > 0 {
		if err := decodePayload(t, &payload); err != nil {
			return err
		}
		if payload.OlderThanDays <= 0 {
			payload.OlderThanDays = p.defaultDays
		}
	}

	cutoff := p.now().AddDate(0, 0, -payload.OlderThanDays)
	n, err := p.products.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge deleted products: %w", err)
	}

	p.logger.InfoContext(ctx, "deleted products purged",
		slog.Int64("rows_deleted", n),
		slog.Time("cutoff", cutoff))
	return nil
}

// Warmup handles TypeCatalogWarmup by priming the collection snapshots.
func (p *MaintenanceProcessor) Warmup(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { p.metrics.IncTask(t.Type(), err) }()

	start := time.Now()
	if err := p.catalog.Warm(ctx); err != nil {
		return fmt.Errorf("failed to warm catalog cache: %w", err)
	}

	p.logger.InfoContext(ctx, "catalog cache warmed",
		slog.Duration("duration", time.Since(start)))
	return nil
}
