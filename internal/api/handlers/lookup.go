package handlers

import (
	"net/http"

	"github.com/zezinho10632/DouglasApi/internal/lookup"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// LookupHandler serves one lookup table. Classifications and professional
// categories each get their own instance.
type LookupHandler struct {
	service *lookup.Service
	logger  *logger.Logger
}

// NewLookupHandler creates a handler for the service's table
func NewLookupHandler(service *lookup.Service, log *logger.Logger) *LookupHandler {
	return &LookupHandler{
		service: service,
		logger:  log.WithField("lookup", string(service.Kind())),
	}
}

// Create adds a row. Responds 200, not 201.
// POST /api/v1/{lookup}
func (h *LookupHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "create "+h.service.Kind().Resource(), adminOrManager...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var in lookup.Input
	if err := decode(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	l, err := h.service.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, l)
}

// Update renames or toggles a row
// PUT /api/v1/{lookup}/{id}
func (h *LookupHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "update "+h.service.Kind().Resource(), adminOrManager...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var in lookup.Input
	if err := decode(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	l, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, l)
}

// Delete removes an unreferenced row
// DELETE /api/v1/{lookup}/{id}
func (h *LookupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "delete "+h.service.Kind().Resource(), adminOrManager...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "Deleted", nil)
}

// Get returns one row
// GET /api/v1/{lookup}/{id}
func (h *LookupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, l)
}

// List returns the table ordered by name
// GET /api/v1/{lookup}?activeOnly=true
func (h *LookupHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := queryBool(r, "activeOnly")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	list, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, list)
}
