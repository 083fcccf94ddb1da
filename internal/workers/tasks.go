// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/core/services"
)

const (
	TypeCatalogImport  = "catalog:import"
	TypeCourseSyllabus = "course:syllabus"
	TypeCatalogWarmup  = "catalog:warmup"
	TypeCatalogPurge   = "catalog:purge"
	TypeReviewNotify   = services.TypeReviewNotify
)

// ImportPayload points at an uploaded catalog workbook
type ImportPayload struct {
	JobID    string `json:"job_id"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
	UserID   string `json:"user_id,omitempty"`
}

// SyllabusPayload points at an uploaded syllabus PDF for a course
type SyllabusPayload struct {
	JobID    string `json:"job_id"`
	CourseID string `json:"course_id"`
	Key      string `json:"key"`
}

// PurgePayload sets how long soft-deleted products are retained
type PurgePayload struct {
	OlderThanDays int `json:"older_than_days"`
}

// NewImportTask creates a catalog import task
func NewImportTask(p ImportPayload) (*asynq.Task, error) {
	return newTask(TypeCatalogImport, p,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
}

// NewSyllabusTask creates a syllabus extraction task
func NewSyllabusTask(p SyllabusPayload) (*asynq.Task, error) {
	return newTask(TypeCourseSyllabus, p,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
}

// NewWarmupTask creates a cache warmup task
func NewWarmupTask() *asynq.Task {
	return asynq.NewTask(TypeCatalogWarmup, nil,
		asynq.Queue("low"),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute))
}

// NewPurgeTask creates a purge task for products deleted more than days ago
func NewPurgeTask(days int) (*asynq.Task, error) {
	return newTask(TypeCatalogPurge, PurgePayload{OlderThanDays: days},
		asynq.Queue("low"),
		asynq.MaxRetry(2))
}

func newTask(typ string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}
	return asynq.NewTask(typ, b, opts...), nil
}

// decodePayload unmarshals a task payload. Malformed payloads are never
// retried.
func decodePayload(t *asynq.Task, dst any) error {
	if err := json.Unmarshal(t.Payload(), dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

// jobRecorder reports progress to the job table. Bookkeeping failures are
// logged and never fail the task itself.
type jobRecorder struct {
	jobs   ports.JobRepository
	logger *slog.Logger
}

func (r jobRecorder) running(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := r.jobs.MarkRunning(ctx, id); err != nil {
		r.logger.WarnContext(ctx, "failed to mark job running",
			slog.String("job_id", id),
			slog.String("error", err.Error()))
	}
}

func (r jobRecorder) done(ctx context.Context, id string, result map[string]interface{}) {
	if id == "" {
		return
	}
	if err := r.jobs.MarkDone(ctx, id, result); err != nil {
		r.logger.WarnContext(ctx, "failed to mark job done",
			slog.String("job_id", id),
			slog.String("error", err.Error()))
	}
}

func (r jobRecorder) failed(ctx context.Context, id string, cause error) {
	if id == "" {
		return
	}
	if err := r.jobs.MarkFailed(ctx, id, cause); err != nil {
		r.logger.WarnContext(ctx, "failed to mark job failed",
			slog.String("job_id", id),
			slog.String("error", err.Error()))
	}
}
