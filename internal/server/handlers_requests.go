package server

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/simonvc/leaveledger/internal/store"
)

type submitRequestRequest struct {
	UserID      string          `json:"user_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Start       leave.Date      `json:"start"`
	End         leave.Date      `json:"end"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason,omitempty"`
}

// userOrActor defaults the subject of a request to the acting user.
func userOrActor(r *http.Request, userID string) string {
	if userID != "" {
		return userID
	}
	return actorFrom(r)
}

func (s *Server) submitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequestRequest
	if !decode(w, r, &body) {
		return
	}

	req := &leave.Request{
		TenantID:    tenantFrom(r.Context()),
		UserID:      userOrActor(r, body.UserID),
		LeaveTypeID: body.LeaveTypeID,
		Start:       body.Start,
		End:         body.End,
		Quantity:    body.Quantity,
		Reason:      body.Reason,
	}
	if err := s.store.SubmitRequest(r.Context(), req); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type quoteResponse struct {
	leave.Quote
	Allocations []leave.Allocation `json:"allocations"`
}

func (s *Server) quoteRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequestRequest
	if !decode(w, r, &body) {
		return
	}

	q, allocs, err := s.store.QuoteRequest(r.Context(), tenantFrom(r.Context()),
		userOrActor(r, body.UserID), body.LeaveTypeID, body.Start, body.End, body.Quantity)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{Quote: q, Allocations: nonNil(allocs)})
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RequestFilter{
		TenantID: tenantFrom(r.Context()),
		UserID:   q.Get("user"),
		Status:   leave.RequestStatus(q.Get("status")),
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

	reqs, err := s.store.ListRequests(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reqs))
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.store.GetRequest(r.Context(), tenantFrom(r.Context()), pathParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type decisionRequest struct {
	Note string `json:"note,omitempty"`
}

type decideFunc func(ctx context.Context, tenantID, id, actor, note string) (*leave.Request, error)

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, s.store.ApproveRequest)
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, s.store.RejectRequest)
}

func (s *Server) cancelRequest(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, s.store.CancelRequest)
}

// decide applies one state transition. The body is optional.
func (s *Server) decide(w http.ResponseWriter, r *http.Request, fn decideFunc) {
	var body decisionRequest
	if r.ContentLength != 0 {
		if !decode(w, r, &body) {
			return
		}
	}

	req, err := fn(r.Context(), tenantFrom(r.Context()), pathParam(r, "id"), actorFrom(r), body.Note)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, req)
}
