package handlers

import (
	"net/http"

	"github.com/zezinho10632/DouglasApi/internal/user"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// UserHandler lists seeded users
type UserHandler struct {
	service *user.Service
	logger  *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *user.Service, log *logger.Logger) *UserHandler {
	return &UserHandler{service: service, logger: log}
}

// List returns users matching every given filter
// GET /api/v1/users?name=&email=&role=&jobTitle=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "list users", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	users, err := h.service.List(r.Context(), user.Query{
		Name:     q.Get("name"),
		Email:    q.Get("email"),
		Role:     q.Get("role"),
		JobTitle: q.Get("jobTitle"),
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, users)
}
