package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// pathID parses a uuid path variable
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, contracts.Invalid(name, "must be a valid UUID")
	}
	return id, nil
}

// queryID parses an optional uuid query parameter. Absent yields uuid.Nil.
func queryID(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, contracts.Invalid(name, "must be a valid UUID")
	}
	return id, nil
}

// requiredID parses a mandatory uuid query parameter
func requiredID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := queryID(r, name)
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, contracts.Invalid(name, "is required")
	}
	return id, nil
}

// queryDate parses an optional yyyy-mm-dd query parameter
func queryDate(r *http.Request, name string) (contracts.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return contracts.Date{}, nil
	}
	d, err := contracts.ParseDate(raw)
	if err != nil {
		return contracts.Date{}, contracts.Invalid(name, "must be a date (yyyy-mm-dd)")
	}
	return d, nil
}

// queryRange reads startDate and endDate
func queryRange(r *http.Request) (contracts.DateRange, error) {
	from, err := queryDate(r, "startDate")
	if err != nil {
		return contracts.DateRange{}, err
	}
	to, err := queryDate(r, "endDate")
	if err != nil {
		return contracts.DateRange{}, err
	}
	rng := contracts.DateRange{From: from, To: to}
	return rng, rng.Validate()
}

// queryInt parses an optional integer query parameter. Absent yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, contracts.Invalid(name, "must be an integer")
	}
	return n, nil
}

// queryBool parses an optional boolean query parameter
func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, contracts.Invalid(name, "must be true or false")
	}
	return b, nil
}

// decode reads a JSON body into dst. Unknown fields are ignored.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return contracts.Invalid("", "request body is required")
		}
		var field *json.UnmarshalTypeError
		if errors.As(err, &field) && field.Field != "" {
			return contracts.Invalid(field.Field, "has the wrong type")
		}
		var verr *contracts.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return contracts.Invalid("", "malformed JSON body")
	}
	return nil
}

// authorize fails unless the caller holds one of roles
func authorize(r *http.Request, action string, roles ...contracts.Role) error {
	p, ok := contracts.PrincipalFrom(r.Context())
	if !ok {
		return contracts.ErrUnauthorized
	}
	return p.Require(action, roles...)
}

// authorizeSelf allows ADMIN or the user identified by userID
func authorizeSelf(r *http.Request, action string, userID uuid.UUID) error {
	p, ok := contracts.PrincipalFrom(r.Context())
	if !ok {
		return contracts.ErrUnauthorized
	}
	return p.RequireSelfOrAdmin(action, userID)
}

var (
	adminOnly      = []contracts.Role{contracts.RoleAdmin}
	adminOrManager = []contracts.Role{contracts.RoleAdmin, contracts.RoleManager}
)
