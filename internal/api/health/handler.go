package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"minerva/pkg/logger"
)

// probe is one registered dependency check. Required probes gate
// readiness; optional ones only degrade the detailed report.
type probe struct {
	name     string
	required bool
	ping     func(ctx context.Context) error
}

// Handler serves the liveness, readiness and detailed health
// endpoints over whatever probes the bootstrap registers.
type Handler struct {
	log         *logger.Logger
	serviceName string
	version     string
	startTime   time.Time
	probes      []probe
}

// New creates a health handler with no probes registered.
func New(log *logger.Logger, serviceName, version string) *Handler {
	return &Handler{
		log:         log,
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
	}
}

// AddCheck registers a dependency probe. Required probes fail
// readiness when they fail; optional ones report degraded only.
// Returns the handler for chaining during bootstrap.
func (h *Handler) AddCheck(name string, required bool, ping func(ctx context.Context) error) *Handler {
	h.probes = append(h.probes, probe{name: name, required: required, ping: ping})
	return h
}

// HealthStatus is the overall report for readiness and health.
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the outcome of a single probe.
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK while the process is running.
// Used by the Kubernetes liveness probe.
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness gates traffic on the required probes.
// Used by the Kubernetes readiness probe.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, requiredHealthy, _ := h.runProbes(ctx)

	statusCode := http.StatusOK
	if !requiredHealthy {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", status.Checks)
	}

	writeJSON(w, statusCode, status)
}

// HandleHealth returns the detailed report across all probes.
// Optional probe failures show as degraded but still return 200.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status, requiredHealthy, allHealthy := h.runProbes(ctx)

	statusCode := http.StatusOK
	switch {
	case !requiredHealthy:
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	case !allHealthy:
		status.Status = "degraded"
	}

	writeJSON(w, statusCode, status)
}

// runProbes pings every registered dependency and reports whether the
// required set and the full set are healthy.
func (h *Handler) runProbes(ctx context.Context) (HealthStatus, bool, bool) {
	checks := make(map[string]ComponentHealth, len(h.probes))
	requiredHealthy := true
	allHealthy := true

	for _, p := range h.probes {
		result := h.runProbe(ctx, p)
		checks[p.name] = result
		if result.Status != "healthy" {
			allHealthy = false
			if p.required {
				requiredHealthy = false
			}
		}
	}

	return HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}, requiredHealthy, allHealthy
}

func (h *Handler) runProbe(ctx context.Context, p probe) ComponentHealth {
	start := time.Now()
	err := p.ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Errorw("Health probe failed", "probe", p.name, "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
