package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/handlers"
	"github.com/ammerola/cultureconnect-be/internal/workers"
	"github.com/ammerola/cultureconnect-be/test/helpers"
	"github.com/ammerola/cultureconnect-be/test/mocks"
)

type importMocks struct {
	storage *mocks.MockObjectStorage
	jobs    *mocks.MockJobRepository
	tasks   *mocks.MockTaskEnqueuer
}

func newImportHandler(t *testing.T) (*handlers.ImportHandler, importMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := importMocks{
		storage: mocks.NewMockObjectStorage(ctrl),
		jobs:    mocks.NewMockJobRepository(ctrl),
		tasks:   mocks.NewMockTaskEnqueuer(ctrl),
	}
	return handlers.NewImportHandler(m.storage, m.jobs, m.tasks, 1<<20, 1<<20, helpers.TestLogger()), m
}

func TestImportHandler_ImportCatalog(t *testing.T) {
	workbook := multipartFile{field: "file", name: "Catalog.XLSX", content: []byte("PK fake workbook")}

	tests := []struct {
		name           string
		file           *multipartFile
		user           string
		setupMocks     func(importMocks)
		expectedStatus int
	}{
		{
			name: "queued",
			file: &workbook,
			user: "admin-1",
			setupMocks: func(m importMocks) {
				var key string
				m.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, k string, body io.Reader, _ string) (string, error) {
						assert.True(t, strings.HasPrefix(k, "imports/"))
						assert.True(t, strings.HasSuffix(k, ".xlsx"))
						data, _ := io.ReadAll(body)
						assert.Equal(t, "PK fake workbook", string(data))
						key = k
						return "s3://bucket/" + k, nil
					})
				m.jobs.EXPECT().Create(gomock.Any(), gomock.Any(), workers.TypeCatalogImport, gomock.Any()).Return(nil)
				m.tasks.EXPECT().EnqueueContext(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
						assert.Equal(t, workers.TypeCatalogImport, task.Type())
						assert.Contains(t, string(task.Payload()), key)
						assert.Contains(t, string(task.Payload()), `"user_id":"admin-1"`)
						return &asynq.TaskInfo{Queue: "default"}, nil
					})
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "anonymous",
			file:           &workbook,
			setupMocks:     func(importMocks) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing_file",
			user:           "admin-1",
			setupMocks:     func(importMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong_extension",
			file:           &multipartFile{field: "file", name: "catalog.csv", content: []byte("a,b")},
			user:           "admin-1",
			setupMocks:     func(importMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "storage_failure",
			file: &workbook,
			user: "admin-1",
			setupMocks: func(m importMocks) {
				m.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("s3 down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "enqueue_failure_marks_job_failed",
			file: &workbook,
			user: "admin-1",
			setupMocks: func(m importMocks) {
				m.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("loc", nil)
				m.jobs.EXPECT().Create(gomock.Any(), gomock.Any(), workers.TypeCatalogImport, gomock.Any()).Return(nil)
				m.tasks.EXPECT().EnqueueContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
				m.jobs.EXPECT().MarkFailed(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newImportHandler(t)
			tt.setupMocks(m)

			var files []multipartFile
			if tt.file != nil {
				files = append(files, *tt.file)
			}
			req := multipartRequest(t, "/api/v1/import/catalog", map[string]string{"note": "x"}, files...)
			if tt.user != "" {
				req = asUser(req, tt.user)
			}
			w := serve("POST /api/v1/import/catalog", h.ImportCatalog, req)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if w.Code == http.StatusAccepted {
				body := decodeBody(t, w)
				assert.Equal(t, "queued", body["status"])
				_, err := uuid.Parse(body["job_id"].(string))
				assert.NoError(t, err)
			}
		})
	}
}

func TestImportHandler_ImportSyllabus(t *testing.T) {
	courseID := uuid.New()
	h, m := newImportHandler(t)

	m.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), "application/pdf").
		DoAndReturn(func(_ context.Context, k string, _ io.Reader, _ string) (string, error) {
			assert.True(t, strings.HasPrefix(k, "syllabi/"+courseID.String()+"/"))
			return "loc", nil
		})
	m.jobs.EXPECT().Create(gomock.Any(), gomock.Any(), workers.TypeCourseSyllabus, gomock.Any()).Return(nil)
	m.tasks.EXPECT().EnqueueContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(&asynq.TaskInfo{Queue: "default"}, nil)

	req := asUser(multipartRequest(t, "/api/v1/import/syllabus/"+courseID.String(), nil,
		multipartFile{field: "file", name: "kathak.pdf", content: []byte("%PDF-1.4")}), "admin-1")
	w := serve("POST /api/v1/import/syllabus/{courseId}", h.ImportSyllabus, req)
	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	req = asUser(multipartRequest(t, "/api/v1/import/syllabus/nope", nil,
		multipartFile{field: "file", name: "kathak.pdf", content: []byte("%PDF-1.4")}), "admin-1")
	w = serve("POST /api/v1/import/syllabus/{courseId}", h.ImportSyllabus, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportHandler_ImportStatus(t *testing.T) {
	jobID := uuid.NewString()
	done := time.Now().UTC()

	tests := []struct {
		name           string
		id             string
		setupMocks     func(importMocks)
		expectedStatus int
	}{
		{
			name: "found",
			id:   jobID,
			setupMocks: func(m importMocks) {
				m.jobs.EXPECT().Find(gomock.Any(), jobID).Return(&ports.JobStatus{
					ID: jobID, Type: workers.TypeCatalogImport, Status: "completed", Progress: 100,
					Result: map[string]interface{}{"products": 12}, CompletedAt: &done,
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown_job",
			id:   jobID,
			setupMocks: func(m importMocks) {
				m.jobs.EXPECT().Find(gomock.Any(), jobID).Return(nil, domain.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed_id",
			id:             "job-1",
			setupMocks:     func(importMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newImportHandler(t)
			tt.setupMocks(m)

			w := serve("GET /api/v1/import/status/{jobId}", h.ImportStatus,
				httptest.NewRequest(http.MethodGet, "/api/v1/import/status/"+tt.id, nil))

			require.Equal(t, tt.expectedStatus, w.Code)
			if w.Code == http.StatusOK {
				job := decodeBody(t, w)["job"].(map[string]interface{})
				assert.Equal(t, "completed", job["status"])
				assert.Equal(t, jobID, job["job_id"])
			}
		})
	}
}
