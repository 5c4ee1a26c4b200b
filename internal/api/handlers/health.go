package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// HealthHandler reports service and store availability
type HealthHandler struct {
	store   contracts.HealthChecker
	service string
	logger  *logger.Logger
}

// NewHealthHandler creates a health handler for the given store
func NewHealthHandler(store contracts.HealthChecker, service string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{store: store, service: service, logger: log}
}

// Check pings the store with a short deadline
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]interface{}{
		"status":  "ok",
		"service": h.service,
		"store":   "ok",
	}
	if err := h.store.HealthCheck(ctx); err != nil {
		h.logger.WithError(err).Warn("Store health check failed")
		status["status"] = "degraded"
		status["store"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, Envelope{
			Data:    status,
			Message: "Store unavailable",
			Error:   &ErrorBody{Code: CodeUnavailable},
		})
		return
	}
	respondOK(w, status)
}
