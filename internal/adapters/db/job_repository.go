// internal/adapters/db/job_repository.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

// Job states stored in async_jobs.status.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// JobRepository implements ports.JobRepository
type JobRepository struct {
	db     ports.Querier
	logger *slog.Logger
}

var _ ports.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new job repository
func NewJobRepository(db ports.Querier, logger *slog.Logger) *JobRepository {
	return &JobRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "job")),
	}
}

// Create records a pending job
func (r *JobRepository) Create(ctx context.Context, id, jobType string, payload map[string]interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}
	_, err = r.db.Exec(ctx,
		"INSERT INTO async_jobs (id, type, status, payload) VALUES ($1, $2, $3, $4)",
		id, jobType, JobPending, raw)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("job %s: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// MarkRunning flags a job as started
func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.transition(ctx, id,
		"UPDATE async_jobs SET status = $2, progress = 10, started_at = now() WHERE id = $1",
		JobRunning)
}

// MarkDone stores the job result
func (r *JobRepository) MarkDone(ctx context.Context, id string, result map[string]interface{}) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}
	return r.transition(ctx, id,
		"UPDATE async_jobs SET status = $2, progress = 100, result = $3, completed_at = now() WHERE id = $1",
		JobCompleted, raw)
}

// MarkFailed stores the failure cause
func (r *JobRepository) MarkFailed(ctx context.Context, id string, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return r.transition(ctx, id,
		"UPDATE async_jobs SET status = $2, error = $3, completed_at = now() WHERE id = $1",
		JobFailed, msg)
}

func (r *JobRepository) transition(ctx context.Context, id, query string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Find returns the recorded status of a job
func (r *JobRepository) Find(ctx context.Context, id string) (*ports.JobStatus, error) {
	var (
		js     ports.JobStatus
		result []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, type, status, progress, result, error, created_at, completed_at
		FROM async_jobs WHERE id = $1`, id).
		Scan(&js.ID, &js.Type, &js.Status, &js.Progress, &result, &js.Error, &js.CreatedAt, &js.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &js.Result); err != nil {
			r.logger.WarnContext(ctx, "job result is not valid json",
				slog.String("job_id", id),
				slog.String("error", err.Error()))
		}
	}
	return &js, nil
}
