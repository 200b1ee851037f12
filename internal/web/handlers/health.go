package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"

	readinessTimeout = 2 * time.Second
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
}

// healthzHandler handles liveness probes (/healthz)
func (h *Handler) healthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  healthStatusOK,
		Version: h.version,
	})
}

// readyzHandler handles readiness probes (/readyz). Every registered
// dependency must answer within the timeout.
func (h *Handler) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.readiness))
	for name := range h.readiness {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	allHealthy := true

	for _, name := range names {
		if err := h.readiness[name](ctx); err != nil {
			checks[name] = healthStatusUnhealthy + ": " + err.Error()
			allHealthy = false
			h.logger.Warn(ctx).Err(err).Str("check", name).Msg("Readiness check failed")
			continue
		}
		checks[name] = healthStatusHealthy
	}

	response := HealthResponse{
		Status:  healthStatusOK,
		Checks:  checks,
		Version: h.version,
	}
	status := http.StatusOK
	if !allHealthy {
		response.Status = healthStatusUnhealthy
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // Best effort response
}
