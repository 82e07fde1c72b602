package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/simonvc/leaveledger/internal/leave"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func pathParam(r *http.Request, name string) string {
	v, _ := url.PathUnescape(chi.URLParam(r, name))
	return v
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func mapError(err error) int {
	switch {
	case errors.Is(err, leave.ErrTenantNotFound),
		errors.Is(err, leave.ErrUserNotFound),
		errors.Is(err, leave.ErrLeaveTypeNotFound),
		errors.Is(err, leave.ErrGrantNotFound),
		errors.Is(err, leave.ErrRequestNotFound),
		errors.Is(err, leave.ErrHolidayNotFound),
		errors.Is(err, leave.ErrBlackoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, leave.ErrDuplicate),
		errors.Is(err, leave.ErrGrantInUse),
		errors.Is(err, leave.ErrOverlappingRequest):
		return http.StatusConflict
	case errors.Is(err, leave.ErrInvalidTenant),
		errors.Is(err, leave.ErrInvalidUser),
		errors.Is(err, leave.ErrInvalidLeaveType),
		errors.Is(err, leave.ErrInvalidUnit),
		errors.Is(err, leave.ErrInvalidRoundingMode),
		errors.Is(err, leave.ErrInvalidTiming),
		errors.Is(err, leave.ErrInvalidGrant),
		errors.Is(err, leave.ErrInvalidDate),
		errors.Is(err, leave.ErrInvalidRange),
		errors.Is(err, leave.ErrInvalidQuantity),
		errors.Is(err, leave.ErrInvalidHoliday),
		errors.Is(err, leave.ErrInvalidBlackout):
		return http.StatusBadRequest
	case errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrBlackout),
		errors.Is(err, leave.ErrInvalidTransition),
		errors.Is(err, leave.ErrRounding),
		errors.Is(err, leave.ErrNoBusinessDays),
		errors.Is(err, leave.ErrExceedsRange),
		errors.Is(err, leave.ErrExceedsMaxPerRequest),
		errors.Is(err, leave.ErrLeaveTypeInactive),
		errors.Is(err, leave.ErrAlreadyAllocated),
		errors.Is(err, leave.ErrGrantOverConsumed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
