// internal/handlers/import.go
package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/cultureconnect-be/internal/adapters/storage"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/workers"
)

// ImportHandler accepts catalog workbooks and syllabus documents and queues
// them for the worker
type ImportHandler struct {
	responder
	storage       ports.ObjectStorage
	jobs          ports.JobRepository
	tasks         ports.TaskEnqueuer
	maxExcelBytes int64
	maxPDFBytes   int64
}

// NewImportHandler creates a new import handler
func NewImportHandler(store ports.ObjectStorage, jobs ports.JobRepository, tasks ports.TaskEnqueuer,
	maxExcelBytes, maxPDFBytes int64, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		responder:     responder{logger: logger.With(slog.String("handler", "import"))},
		storage:       store,
		jobs:          jobs,
		tasks:         tasks,
		maxExcelBytes: maxExcelBytes,
		maxPDFBytes:   maxPDFBytes,
	}
}

// ImportCatalog handles POST /api/v1/import/catalog
func (h *ImportHandler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	file, header, ok := h.receive(w, r, h.maxExcelBytes, ".xlsx")
	if !ok {
		return
	}
	defer file.Close()

	jobID := uuid.NewString()
	key := storage.ImportKey(jobID, header.Filename)
	if _, err := h.storage.Upload(ctx, key, file, xlsxContentType); err != nil {
		h.logger.ErrorContext(ctx, "failed to store workbook",
			slog.String("key", key),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	payload := workers.ImportPayload{JobID: jobID, Key: key, Filename: header.Filename, UserID: userID}
	task, err := workers.NewImportTask(payload)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create import task")
		return
	}

	h.enqueue(w, r, task, jobID, map[string]interface{}{
		"filename": header.Filename,
		"key":      key,
		"user_id":  userID,
		"size":     header.Size,
	})
}

// ImportSyllabus handles POST /api/v1/import/syllabus/{courseId}
func (h *ImportHandler) ImportSyllabus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	courseID, err := uuid.Parse(r.PathValue("courseId"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid course ID format")
		return
	}

	file, header, ok := h.receive(w, r, h.maxPDFBytes, ".pdf")
	if !ok {
		return
	}
	defer file.Close()

	jobID := uuid.NewString()
	key := storage.SyllabusKey(courseID, header.Filename)
	if _, err := h.storage.Upload(ctx, key, file, "application/pdf"); err != nil {
		h.logger.ErrorContext(ctx, "failed to store syllabus",
			slog.String("key", key),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	task, err := workers.NewSyllabusTask(workers.SyllabusPayload{JobID: jobID, CourseID: courseID.String(), Key: key})
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create syllabus task")
		return
	}

	h.enqueue(w, r, task, jobID, map[string]interface{}{
		"course_id": courseID.String(),
		"filename":  header.Filename,
		"key":       key,
		"user_id":   userID,
	})
}

// ImportStatus handles GET /api/v1/import/status/{jobId}
func (h *ImportHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	if _, err := uuid.Parse(jobID); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	status, err := h.jobs.Find(r.Context(), jobID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to get job status")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job":     status,
	})
}

// receive reads the single "file" part of a multipart upload and checks
// its extension. It writes the error response itself.
func (h *ImportHandler) receive(w http.ResponseWriter, r *http.Request, maxBytes int64, ext string) (multipart.File, *multipart.FileHeader, bool) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return nil, nil, false
		}
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return nil, nil, false
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ext) {
		file.Close()
		h.respondError(w, http.StatusBadRequest, "Only "+ext+" files are allowed")
		return nil, nil, false
	}
	return file, header, true
}

// enqueue records the job and hands the task to the queue. The job id is
// also the asynq task id, so a resubmitted job is rejected by the queue.
func (h *ImportHandler) enqueue(w http.ResponseWriter, r *http.Request, task *asynq.Task, jobID string, meta map[string]interface{}) {
	ctx := r.Context()

	if err := h.jobs.Create(ctx, jobID, task.Type(), meta); err != nil {
		h.respondServiceError(w, r, err, "Failed to create import job")
		return
	}

	info, err := h.tasks.EnqueueContext(ctx, task, asynq.TaskID(jobID))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue task",
			slog.String("job_id", jobID),
			slog.String("type", task.Type()),
			slog.String("error", err.Error()))
		if markErr := h.jobs.MarkFailed(ctx, jobID, err); markErr != nil {
			h.logger.WarnContext(ctx, "failed to mark job failed",
				slog.String("job_id", jobID),
				slog.String("error", markErr.Error()))
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "import job queued",
		slog.String("job_id", jobID),
		slog.String("type", task.Type()),
		slog.String("queue", info.Queue))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success":    true,
		"job_id":     jobID,
		"status":     "queued",
		"status_url": "/api/v1/import/status/" + jobID,
	})
}
