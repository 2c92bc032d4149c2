package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is a dependency that can report liveness, such as a partition's pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker manages health checks for the service
type HealthChecker struct {
	databases map[string]Pinger
	timeout   time.Duration
	ready     atomic.Bool
}

// NewHealthChecker creates a checker over one pinger per data partition
func NewHealthChecker(databases map[string]Pinger) *HealthChecker {
	return &HealthChecker{
		databases: databases,
		timeout:   2 * time.Second,
	}
}

// SetReady marks the service ready to take traffic (after startup bootstrap)
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Ready reports whether SetReady(true) was called
func (h *HealthChecker) Ready() bool {
	return h.ready.Load()
}

// Check performs health checks and returns the status
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	checks := make(map[string]string)
	overallStatus := "healthy"

	if len(h.databases) == 0 {
		checks["database"] = "not configured"
	}

	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dbCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := h.databases[name].Ping(dbCtx)
		cancel()

		key := "database:" + name
		if err != nil {
			checks[key] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			checks[key] = "healthy"
		}
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// HealthHandler returns an HTTP handler for health checks
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(status)
	}
}

// ReadyHandler answers 200 once the service is ready, 503 before
func (h *HealthChecker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("starting"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}

// servingStatus maps the current checks onto the gRPC health enum
func (h *HealthChecker) servingStatus(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if !h.Ready() || h.Check(ctx).Status != "healthy" {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}

// SyncGRPCHealth mirrors the HTTP checks into a gRPC health server until ctx is cancelled.
// The overall ("") service is updated on every tick.
func (h *HealthChecker) SyncGRPCHealth(ctx context.Context, server *health.Server, interval time.Duration) {
	update := func() {
		server.SetServingStatus("", h.servingStatus(ctx))
	}
	update()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				server.Shutdown()
				return
			case <-ticker.C:
				update()
			}
		}
	}()
}
