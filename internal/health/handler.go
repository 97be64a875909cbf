// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

type Checker interface {
	Ping(ctx context.Context) error
}

// SweepReporter exposes the subscription sweeper's last run so
// readiness can surface a stalled or failing background expiry loop.
type SweepReporter interface {
	LastSweep() (at time.Time, swept int, err error)
}

type Handler struct {
	db       Checker
	redis    Checker
	sweeps   SweepReporter
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(db, redis Checker, sweeps SweepReporter) *Handler {
	h := &Handler{
		db:     db,
		redis:  redis,
		sweeps: sweeps,
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "shutting_down",
		})
		return
	}

	h.writeStatus(w, http.StatusOK, StatusResponse{
		Status: "ok",
	})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "shutting_down",
		})
		return
	}

	if !h.ready.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "not_ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := h.runHealthChecks(ctx)

	allHealthy := true
	for _, check := range checks {
		if !check.Healthy {
			allHealthy = false
			break
		}
	}

	status := "ok"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	h.writeStatus(w, statusCode, ReadinessResponse{
		Status: status,
		Checks: checks,
	})
}

func (h *Handler) runHealthChecks(ctx context.Context) []HealthCheck {
	var wg sync.WaitGroup
	checks := make([]HealthCheck, 3)

	wg.Add(2)

	go func() {
		defer wg.Done()
		checks[0] = h.checkPing(ctx, "database", h.db)
	}()

	go func() {
		defer wg.Done()
		checks[1] = h.checkPing(ctx, "redis", h.redis)
	}()

	wg.Wait()

	checks[2] = h.checkSweeper()
	return checks
}

func (h *Handler) checkPing(
	ctx context.Context,
	name string,
	checker Checker,
) HealthCheck {
	check := HealthCheck{
		Name:    name,
		Healthy: true,
	}

	if checker == nil {
		check.Healthy = false
		check.Message = name + " checker not configured"
		return check
	}

	start := time.Now()
	err := checker.Ping(ctx)
	check.Latency = time.Since(start).String()

	if err != nil {
		check.Healthy = false
		check.Message = "ping failed"
	}

	return check
}

// checkSweeper is informational until the first sweep completes, then
// degrades readiness when the latest run failed.
func (h *Handler) checkSweeper() HealthCheck {
	check := HealthCheck{
		Name:    "subscription_sweeper",
		Healthy: true,
	}

	if h.sweeps == nil {
		check.Message = "sweeper not configured"
		return check
	}

	at, swept, err := h.sweeps.LastSweep()
	if at.IsZero() {
		check.Message = "no sweep completed yet"
		return check
	}

	check.LastRun = at.UTC().Format(time.RFC3339)
	check.Swept = swept

	if err != nil {
		check.Healthy = false
		check.Message = "last sweep failed"
	}

	return check
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
	LastRun string `json:"last_run,omitempty"`
	Swept   int    `json:"swept,omitempty"`
}
