package handlers

import (
	"net/http"

	"github.com/zezinho10632/DouglasApi/internal/indicator"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// IndicatorHandler serves the endpoints of one indicator kind
type IndicatorHandler[T any, P indicator.Record[T]] struct {
	service *indicator.Service[T, P]
	logger  *logger.Logger
}

// NewIndicatorHandler creates the handler for the service's kind
func NewIndicatorHandler[T any, P indicator.Record[T]](service *indicator.Service[T, P], log *logger.Logger) *IndicatorHandler[T, P] {
	return &IndicatorHandler[T, P]{
		service: service,
		logger:  log.WithField("indicator", string(service.Kind())),
	}
}

// Create stores the period's record. Derived fields in the body are ignored.
// POST /api/v1/indicators/{kind}
func (h *IndicatorHandler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "create "+h.service.Kind().Resource(), adminOrManager...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rec := new(T)
	if err := decode(w, r, rec); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	out, err := h.service.Create(r.Context(), rec)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondCreated(w, out)
}

// Update replaces the raw fields and re-derives the rest
// PUT /api/v1/indicators/{kind}/{id}
func (h *IndicatorHandler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "update "+h.service.Kind().Resource(), adminOrManager...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rec := new(T)
	if err := decode(w, r, rec); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	out, err := h.service.Update(r.Context(), id, rec)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, out)
}

// Delete removes a record
// DELETE /api/v1/indicators/{kind}/{id}
func (h *IndicatorHandler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
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

// Get returns one record
// GET /api/v1/indicators/{kind}/{id}
func (h *IndicatorHandler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, rec)
}

// GetByPeriod returns the period's record, or null data when there is none
// GET /api/v1/indicators/{kind}/period/{periodId}
func (h *IndicatorHandler[T, P]) GetByPeriod(w http.ResponseWriter, r *http.Request) {
	periodID, err := pathID(r, "periodId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rec, err := h.service.GetByPeriod(r.Context(), periodID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, rec)
}

// ListBySector returns the sector's records in creation order
// GET /api/v1/indicators/{kind}/sector/{sectorId}
func (h *IndicatorHandler[T, P]) ListBySector(w http.ResponseWriter, r *http.Request) {
	sectorID, err := pathID(r, "sectorId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	list, err := h.service.ListBySector(r.Context(), sectorID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, list)
}
