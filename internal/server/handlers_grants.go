package server

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/simonvc/leaveledger/internal/store"
)

type createGrantRequest struct {
	UserID      string            `json:"user_id"`
	LeaveTypeID string            `json:"leave_type_id"`
	Quantity    decimal.Decimal   `json:"quantity"`
	IssuedOn    leave.Date        `json:"issued_on"`
	ExpiresOn   *leave.Date       `json:"expires_on,omitempty"`
	Source      leave.GrantSource `json:"source,omitempty"`
	Note        string            `json:"note,omitempty"`
}

func (s *Server) createGrant(w http.ResponseWriter, r *http.Request) {
	var req createGrantRequest
	if !decode(w, r, &req) {
		return
	}
	if req.IssuedOn.IsZero() {
		req.IssuedOn = leave.Today()
	}
	if req.ExpiresOn != nil && req.ExpiresOn.IsZero() {
		req.ExpiresOn = nil
	}

	g := &leave.Grant{
		TenantID:    tenantFrom(r.Context()),
		UserID:      req.UserID,
		LeaveTypeID: req.LeaveTypeID,
		Quantity:    req.Quantity,
		IssuedOn:    req.IssuedOn,
		ExpiresOn:   req.ExpiresOn,
		Source:      req.Source,
		Note:        req.Note,
	}
	if err := s.store.CreateGrant(r.Context(), g); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) listGrants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.GrantFilter{
		TenantID: tenantFrom(r.Context()),
		UserID:   q.Get("user"),
	}
	if typ := q.Get("type"); typ != "" {
		lt, err := s.store.GetLeaveType(r.Context(), filter.TenantID, typ)
		if err != nil {
			writeError(w, mapError(err), err.Error())
			return
		}
		filter.LeaveTypeID = lt.ID
	}
	filter.Limit, filter.Offset = pageParams(r)

	grants, err := s.store.ListGrants(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(grants))
}

func (s *Server) deleteGrant(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGrant(r.Context(), tenantFrom(r.Context()), pathParam(r, "id")); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
