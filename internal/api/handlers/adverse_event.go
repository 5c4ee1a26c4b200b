package handlers

import (
	"net/http"

	"github.com/zezinho10632/DouglasApi/internal/adverseevent"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// AdverseEventHandler handles adverse event endpoints
// ⭐ SSOT: adverse event API handlers live in this struct only
type AdverseEventHandler struct {
	service *adverseevent.Service
	logger  *logger.Logger
}

// NewAdverseEventHandler creates a new adverse event handler
func NewAdverseEventHandler(service *adverseevent.Service, log *logger.Logger) *AdverseEventHandler {
	return &AdverseEventHandler{service: service, logger: log}
}

// Create records an adverse event
// POST /api/v1/adverse-events
func (h *AdverseEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in adverseevent.Input
	if err := decode(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	e, err := h.service.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondCreated(w, e)
}

// Update replaces an event's fields
// PUT /api/v1/adverse-events/{id}
func (h *AdverseEventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var in adverseevent.Input
	if err := decode(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	e, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, e)
}

// Delete removes an event
// DELETE /api/v1/adverse-events/{id}
func (h *AdverseEventHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Get returns one event
// GET /api/v1/adverse-events/{id}
func (h *AdverseEventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, e)
}

// ListByPeriod returns a period's events, optionally of one type
// GET /api/v1/adverse-events/period/{periodId}?eventType=
func (h *AdverseEventHandler) ListByPeriod(w http.ResponseWriter, r *http.Request) {
	periodID, err := pathID(r, "periodId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.list(w, r, contracts.AdverseEventFilter{
		PeriodID:  periodID,
		EventType: contracts.EventType(r.URL.Query().Get("eventType")),
	})
}

// ListBySector returns a sector's events across periods
// GET /api/v1/adverse-events/sector/{sectorId}
func (h *AdverseEventHandler) ListBySector(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "list adverse events", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	sectorID, err := pathID(r, "sectorId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.list(w, r, contracts.AdverseEventFilter{
		SectorID:  sectorID,
		EventType: contracts.EventType(r.URL.Query().Get("eventType")),
	})
}

// ListByRange returns events dated between two dates
// GET /api/v1/adverse-events/range?startDate=&endDate=
func (h *AdverseEventHandler) ListByRange(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "list adverse events", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rng, err := queryRange(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.list(w, r, contracts.AdverseEventFilter{From: rng.From, To: rng.To})
}

// ListByUser returns the events a user recorded
// GET /api/v1/adverse-events/user/{userId}
func (h *AdverseEventHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := authorizeSelf(r, "list user adverse events", userID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.list(w, r, contracts.AdverseEventFilter{CreatedBy: userID})
}

func (h *AdverseEventHandler) list(w http.ResponseWriter, r *http.Request, filter contracts.AdverseEventFilter) {
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, list)
}
