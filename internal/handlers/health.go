// internal/handlers/health.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

// RedisProbe is the part of *redis.Client the health checks use
type RedisProbe interface {
	Ping(ctx context.Context) *redis.StatusCmd
	PoolStats() *redis.PoolStats
}

// QueueProbe is the part of *asynq.Inspector the health checks use
type QueueProbe interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// HealthHandler reports liveness and readiness of the API and its backing
// services
type HealthHandler struct {
	responder
	db          ports.Database
	redis       RedisProbe
	queues      QueueProbe
	version     string
	environment string
	started     time.Time
}

// NewHealthHandler creates a new health handler. queues may be nil.
func NewHealthHandler(db ports.Database, redisClient RedisProbe, queues QueueProbe,
	version, environment string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		responder:   responder{logger: logger.With(slog.String("handler", "health"))},
		db:          db,
		redis:       redisClient,
		queues:      queues,
		version:     version,
		environment: environment,
		started:     time.Now(),
	}
}

// HealthReport is the body of the health endpoint
type HealthReport struct {
	Status       string                      `json:"status"`
	Version      string                      `json:"version"`
	Environment  string                      `json:"environment"`
	Uptime       string                      `json:"uptime"`
	Timestamp    time.Time                   `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
	Runtime      RuntimeStats                `json:"runtime"`
}

// DependencyStatus is the result of probing one backing service
type DependencyStatus struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Latency string                 `json:"latency,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RuntimeStats summarizes the Go runtime
type RuntimeStats struct {
	GoVersion      string `json:"go_version"`
	Goroutines     int    `json:"goroutines"`
	CPUs           int    `json:"cpus"`
	HeapAllocMB    uint64 `json:"heap_alloc_mb"`
	SysMB          uint64 `json:"sys_mb"`
	NumGC          uint32 `json:"num_gc"`
	GCPauseTotalMs uint64 `json:"gc_pause_total_ms"`
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// Health handles GET /health and /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	report := HealthReport{
		Status:       statusHealthy,
		Version:      h.version,
		Environment:  h.environment,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		Timestamp:    time.Now().UTC(),
		Dependencies: map[string]DependencyStatus{
			"database": h.probe(ctx, "database", h.probeDatabase),
			"redis":    h.probe(ctx, "redis", h.probeRedis),
		},
		Runtime: runtimeStats(),
	}
	if h.queues != nil {
		report.Dependencies["queue"] = h.probe(ctx, "queue", h.probeQueues)
	}

	for _, dep := range report.Dependencies {
		if dep.Status != statusHealthy {
			report.Status = statusDegraded
		}
	}

	status := http.StatusOK
	if report.Status != statusHealthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.respondJSON(w, status, report)
}

// Readiness handles GET /ready. Only the database and redis gate traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]error{
		"database": h.db.Ping(ctx),
		"redis":    h.redis.Ping(ctx).Err(),
	}

	ready := true
	details := make(map[string]string, len(checks))
	for name, err := range checks {
		details[name] = "ready"
		if err != nil {
			ready = false
			details[name] = "not ready"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.respondJSON(w, status, map[string]interface{}{
		"ready":   ready,
		"details": details,
	})
}

func (h *HealthHandler) probe(ctx context.Context, name string, fn func(context.Context) (map[string]interface{}, error)) DependencyStatus {
	start := time.Now()
	details, err := fn(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "health check failed",
			slog.String("dependency", name),
			slog.String("error", err.Error()))
		return DependencyStatus{Status: statusUnhealthy, Message: err.Error()}
	}
	return DependencyStatus{
		Status:  statusHealthy,
		Latency: time.Since(start).String(),
		Details: details,
	}
}

func (h *HealthHandler) probeDatabase(ctx context.Context) (map[string]interface{}, error) {
	if err := h.db.Ping(ctx); err != nil {
		return nil, err
	}
	return h.db.Health(ctx), nil
}

func (h *HealthHandler) probeRedis(ctx context.Context) (map[string]interface{}, error) {
	pong, err := h.redis.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	stats := h.redis.PoolStats()
	return map[string]interface{}{
		"ping":        pong,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}, nil
}

func (h *HealthHandler) probeQueues(context.Context) (map[string]interface{}, error) {
	names, err := h.queues.Queues()
	if err != nil {
		return nil, err
	}
	queues := make(map[string]interface{}, len(names))
	for _, name := range names {
		info, err := h.queues.GetQueueInfo(name)
		if err != nil {
			continue
		}
		queues[name] = map[string]int{
			"size":      info.Size,
			"active":    info.Active,
			"pending":   info.Pending,
			"scheduled": info.Scheduled,
			"retry":     info.Retry,
			"archived":  info.Archived,
		}
	}
	return map[string]interface{}{"queues": queues}, nil
}

func runtimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		CPUs:           runtime.NumCPU(),
		HeapAllocMB:    m.HeapAlloc >> 20,
		SysMB:          m.Sys >> 20,
		NumGC:          m.NumGC,
		GCPauseTotalMs: m.PauseTotalNs / uint64(time.Millisecond),
	}
}
