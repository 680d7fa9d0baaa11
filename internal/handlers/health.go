package handlers

import (
	"context"
	"net/http"
	"time"

	"geekqa/internal/contextutil"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	db                 Pinger
	retrieval          Pinger
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. retrieval may be nil, in which case
// the search backend is not checked.
func NewHealthHandler(db Pinger, retrieval Pinger) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		retrieval:          retrieval,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// Returns 200 when the greeting database is reachable and 503 otherwise.
// An unreachable search backend reports "degraded" with 200, since the greeting
// pages still work. The generation service is not probed.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	var issues []string
	if err := h.db.PingContext(checkCtx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
	}

	if h.retrieval != nil {
		checks["retrieval"] = "ok"
		if err := h.retrieval.PingContext(checkCtx); err != nil {
			logger.WarnContext(ctx, "retrieval health check failed", "error", err)
			checks["retrieval"] = "error"
			issues = append(issues, "retrieval_unavailable")
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case checks["database"] != "ok":
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case len(issues) > 0:
		status = "degraded"
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
