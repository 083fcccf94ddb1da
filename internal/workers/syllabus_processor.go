// internal/workers/syllabus_processor.go
package workers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/ledongthuc/pdf"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/pkg/metrics"
)

// maxSummaryLen bounds the description derived from a syllabus.
const maxSummaryLen = 1000

// SyllabusProcessor attaches syllabus PDFs to courses
type SyllabusProcessor struct {
	storage ports.ObjectStorage
	courses ports.CourseRepository
	catalog ports.CatalogService
	jobs    jobRecorder
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSyllabusProcessor creates a new syllabus processor
func NewSyllabusProcessor(storage ports.ObjectStorage, courses ports.CourseRepository, catalog ports.CatalogService,
	jobs ports.JobRepository, m *metrics.Metrics, logger *slog.Logger) *SyllabusProcessor {
	logger = logger.With(slog.String("processor", "syllabus"))
	return &SyllabusProcessor{
		storage: storage,
		courses: courses,
		catalog: catalog,
		jobs:    jobRecorder{jobs: jobs, logger: logger},
		metrics: m,
		logger:  logger,
	}
}

// ProcessSyllabus handles TypeCourseSyllabus tasks. The PDF stays in
// storage as the course's syllabus; its text fills an empty description.
func (p *SyllabusProcessor) ProcessSyllabus(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { p.metrics.IncTask(t.Type(), err) }()

	var payload SyllabusPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}
	courseID, err := uuid.Parse(payload.CourseID)
	if err != nil {
		p.jobs.failed(ctx, payload.JobID, err)
		return fmt.Errorf("invalid course id %q: %w", payload.CourseID, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "processing syllabus",
		slog.String("job_id", payload.JobID),
		slog.String("course_id", payload.CourseID))
	p.jobs.running(ctx, payload.JobID)

	data, err := p.storage.Download(ctx, payload.Key)
	if err != nil {
		err = fmt.Errorf("failed to download syllabus: %w", err)
		p.jobs.failed(ctx, payload.JobID, err)
		return err
	}

	text, err := ExtractPDFText(data)
	if err != nil {
		p.jobs.failed(ctx, payload.JobID, err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	summary := Summarize(text, maxSummaryLen)

	if err := p.courses.UpdateSyllabus(ctx, courseID, payload.Key, summary); err != nil {
		p.jobs.failed(ctx, payload.JobID, err)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	if err := p.catalog.Invalidate(ctx, domain.KindCourse); err != nil {
		p.logger.WarnContext(ctx, "failed to invalidate course cache",
			slog.String("error", err.Error()))
	}

	p.jobs.done(ctx, payload.JobID, map[string]interface{}{
		"course_id":    payload.CourseID,
		"syllabus_key": payload.Key,
		"text_length":  len(text),
	})

	p.logger.InfoContext(ctx, "syllabus attached",
		slog.String("job_id", payload.JobID),
		slog.String("course_id", payload.CourseID),
		slog.Int("text_length", len(text)))
	return nil
}

// ExtractPDFText returns the plain text of every page. Pages that cannot be
// decoded are skipped.
func ExtractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// Summarize collapses whitespace and cuts text at a word boundary so the
// result is at most limit bytes long.
func Summarize(text string, limit int) string {
	s := strings.Join(strings.Fields(text), " ")
	if len(s) <= limit {
		return s
	}
	cut := strings.LastIndex(s[:limit+1], " ")
	if cut <= 0 {
		cut = limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
	}
	return strings.TrimSpace(s[:cut])
}
