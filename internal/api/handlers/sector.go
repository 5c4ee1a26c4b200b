package handlers

import (
	"net/http"

	"github.com/zezinho10632/DouglasApi/internal/sector"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// SectorHandler handles sector endpoints
// ⭐ SSOT: sector API handlers live in this struct only
type SectorHandler struct {
	service *sector.Service
	logger  *logger.Logger
}

// NewSectorHandler creates a new sector handler
func NewSectorHandler(service *sector.Service, log *logger.Logger) *SectorHandler {
	return &SectorHandler{service: service, logger: log}
}

// Create adds a sector
// POST /api/v1/sectors
func (h *SectorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in sector.Input
	if err := decode(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	s, err := h.service.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondCreated(w, s)
}

// Update replaces a sector's fields
// PUT /api/v1/sectors/{id}
func (h *SectorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var in sector.Input
	if err := decode(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	s, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, s)
}

// Delete removes an unreferenced sector
// DELETE /api/v1/sectors/{id}
func (h *SectorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "delete sector", adminOnly...); err != nil {
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

// Get returns one sector
// GET /api/v1/sectors/{id}
func (h *SectorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	s, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, s)
}

// List returns active sectors, or every sector with ?all=true
// GET /api/v1/sectors?all=true
func (h *SectorHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := queryBool(r, "all")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	list, err := h.service.List(r.Context(), all)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, list)
}
