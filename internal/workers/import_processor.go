// internal/workers/import_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/pkg/metrics"
)

// ImportProcessor loads uploaded catalog workbooks into the database
type ImportProcessor struct {
	storage  ports.ObjectStorage
	products ports.ProductRepository
	courses  ports.CourseRepository
	showcase ports.ShowcaseRepository
	catalog  ports.CatalogService
	jobs     jobRecorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewImportProcessor creates a new import processor
func NewImportProcessor(storage ports.ObjectStorage, products ports.ProductRepository, courses ports.CourseRepository,
	showcase ports.ShowcaseRepository, catalog ports.CatalogService, jobs ports.JobRepository,
	m *metrics.Metrics, logger *slog.Logger) *ImportProcessor {
	logger = logger.With(slog.String("processor", "import"))
	return &ImportProcessor{
		storage:  storage,
		products: products,
		courses:  courses,
		showcase: showcase,
		catalog:  catalog,
		jobs:     jobRecorder{jobs: jobs, logger: logger},
		metrics:  m,
		logger:   logger,
	}
}

// ProcessImport handles TypeCatalogImport tasks
func (p *ImportProcessor) ProcessImport(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { p.metrics.IncTask(t.Type(), err) }()
	start := time.Now()

	var payload ImportPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "processing catalog workbook",
		slog.String("job_id", payload.JobID),
		slog.String("key", payload.Key))
	p.jobs.running(ctx, payload.JobID)

	data, err := p.storage.Download(ctx, payload.Key)
	if err != nil {
		err = fmt.Errorf("failed to download workbook: %w", err)
		p.jobs.failed(ctx, payload.JobID, err)
		return err
	}

	wb, err := ParseCatalogWorkbook(data)
	if err != nil {
		p.jobs.failed(ctx, payload.JobID, err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	counts, err := p.store(ctx, wb)
	if err != nil {
		p.jobs.failed(ctx, payload.JobID, err)
		return err
	}

	for _, kind := range []domain.ItemKind{domain.KindProduct, domain.KindCourse} {
		if err := p.catalog.Invalidate(ctx, kind); err != nil {
			p.logger.WarnContext(ctx, "failed to invalidate catalog cache",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
		}
	}

	p.jobs.done(ctx, payload.JobID, map[string]interface{}{
		"products":        counts[SheetProducts],
		"courses":         counts[SheetCourses],
		"slides":          counts[SheetShowcase],
		"skipped":         wb.Skipped,
		"processing_time": time.Since(start).String(),
	})

	if err := p.storage.Delete(ctx, payload.Key); err != nil {
		p.logger.WarnContext(ctx, "failed to remove uploaded workbook",
			slog.String("key", payload.Key),
			slog.String("error", err.Error()))
	}

	p.logger.InfoContext(ctx, "catalog import completed",
		slog.String("job_id", payload.JobID),
		slog.Int("products", counts[SheetProducts]),
		slog.Int("courses", counts[SheetCourses]),
		slog.Int("slides", counts[SheetShowcase]),
		slog.Int("skipped", len(wb.Skipped)))

	return nil
}

// store upserts each non-empty sheet. Every sheet is written in its own
// transaction by the repositories.
func (p *ImportProcessor) store(ctx context.Context, wb *Workbook) (map[string]int, error) {
	counts := make(map[string]int, 3)
	if len(wb.Products) > 0 {
		n, err := p.products.UpsertBatch(ctx, wb.Products)
		if err != nil {
			return nil, fmt.Errorf("failed to import products: %w", err)
		}
		counts[SheetProducts] = n
	}
	if len(wb.Courses) > 0 {
		n, err := p.courses.UpsertBatch(ctx, wb.Courses)
		if err != nil {
			return nil, fmt.Errorf("failed to import courses: %w", err)
		}
		counts[SheetCourses] = n
	}
	if len(wb.Slides) > 0 {
		n, err := p.showcase.UpsertBatch(ctx, wb.Slides)
		if err != nil {
			return nil, fmt.Errorf("failed to import showcase: %w", err)
		}
		counts[SheetShowcase] = n
	}
	return counts, nil
}
