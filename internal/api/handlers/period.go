package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/period"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// PeriodHandler handles period lifecycle endpoints
// ⭐ SSOT: period API handlers live in this struct only
type PeriodHandler struct {
	manager *period.Manager
	logger  *logger.Logger
}

// NewPeriodHandler creates a new period handler
func NewPeriodHandler(manager *period.Manager, log *logger.Logger) *PeriodHandler {
	return &PeriodHandler{manager: manager, logger: log}
}

// PeriodRequest is the body of POST /periods
type PeriodRequest struct {
	SectorID uuid.UUID `json:"sectorId"`
	Month    int       `json:"month"`
	Year     int       `json:"year"`
}

// Create opens a period
// POST /api/v1/periods
func (h *PeriodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	p, err := h.manager.Create(r.Context(), req.SectorID, req.Month, req.Year)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondCreated(w, p)
}

// List returns a sector's periods
// GET /api/v1/periods?sectorId=&status=&year=
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := periodFilter(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	list, err := h.manager.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, list)
}

func periodFilter(r *http.Request) (contracts.PeriodFilter, error) {
	var (
		filter contracts.PeriodFilter
		err    error
	)
	if filter.SectorID, err = queryID(r, "sectorId"); err != nil {
		return filter, err
	}
	if filter.Year, err = queryInt(r, "year"); err != nil {
		return filter, err
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		if filter.Status, err = contracts.ParsePeriodStatus(raw); err != nil {
			return filter, err
		}
	}
	return filter, nil
}

// Get returns one period
// GET /api/v1/periods/{id}
func (h *PeriodHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	p, err := h.manager.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, p)
}

// Close moves an OPEN period to CLOSED
// POST /api/v1/periods/{id}/close
func (h *PeriodHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.manager.Close)
}

// Reopen moves a CLOSED period back to OPEN
// POST /api/v1/periods/{id}/reopen
func (h *PeriodHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.manager.Reopen)
}

// Validate moves a CLOSED period to VALIDATED
// POST /api/v1/periods/{id}/validate
func (h *PeriodHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "validate period", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.transition(w, r, h.manager.Validate)
}

func (h *PeriodHandler) transition(w http.ResponseWriter, r *http.Request, move func(context.Context, uuid.UUID) (*contracts.Period, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	p, err := move(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, p)
}

// Delete removes an unreferenced period
// DELETE /api/v1/periods/{id}
func (h *PeriodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "delete period", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "Deleted", nil)
}
