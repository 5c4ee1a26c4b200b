package handlers

import (
	"net/http"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/notification"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// NotificationHandler handles notification and ranking endpoints
// ⭐ SSOT: notification API handlers live in this struct only
type NotificationHandler struct {
	service *notification.Service
	logger  *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *notification.Service, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, logger: log}
}

// Create records a notification
// POST /api/v1/notifications
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in notification.Input
	if err := decode(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	n, err := h.service.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondCreated(w, n)
}

// Update replaces a notification's fields
// PUT /api/v1/notifications/{id}
func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var in notification.Input
	if err := decode(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	n, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, n)
}

// Delete removes a notification
// DELETE /api/v1/notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Get returns one notification with its lookups resolved
// GET /api/v1/notifications/{id}
func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	n, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, n)
}

// List returns notifications matching every given filter
// GET /api/v1/notifications?periodId=&sectorId=&classificationId=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "list notifications", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var (
		filter contracts.NotificationFilter
		err    error
	)
	if filter.PeriodID, err = queryID(r, "periodId"); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if filter.SectorID, err = queryID(r, "sectorId"); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if filter.ClassificationID, err = queryID(r, "classificationId"); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if filter.ProfessionalCategoryID, err = queryID(r, "professionalCategoryId"); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, list)
}

// ListByRange returns notifications created between two dates
// GET /api/v1/notifications/range?startDate=&endDate=
func (h *NotificationHandler) ListByRange(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "list notifications", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rng, err := queryRange(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	list, err := h.service.ListByDateRange(r.Context(), rng)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, list)
}

// ListByUser returns the notifications a user created
// GET /api/v1/notifications/user/{userId}
func (h *NotificationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := authorizeSelf(r, "list user notifications", userID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	list, err := h.service.List(r.Context(), contracts.NotificationFilter{CreatedBy: userID})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, list)
}

// Ranking sums quantityProfessional per professional category
// GET /api/v1/notifications/ranking/professional-category?periodId=&sectorId=
func (h *NotificationHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	var (
		filter contracts.RankingFilter
		err    error
	)
	if filter.PeriodID, err = queryID(r, "periodId"); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if filter.SectorID, err = queryID(r, "sectorId"); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	ranking, err := h.service.RankProfessionalCategories(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, ranking)
}
