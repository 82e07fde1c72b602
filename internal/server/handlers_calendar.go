package server

import (
	"net/http"

	"github.com/simonvc/leaveledger/internal/leave"
)

type addHolidayRequest struct {
	Date leave.Date `json:"date"`
	Name string     `json:"name"`
}

func (s *Server) addHoliday(w http.ResponseWriter, r *http.Request) {
	var req addHolidayRequest
	if !decode(w, r, &req) {
		return
	}

	h := &leave.Holiday{TenantID: tenantFrom(r.Context()), Date: req.Date, Name: req.Name}
	if err := s.store.AddHoliday(r.Context(), h); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) listHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := s.store.ListHolidays(r.Context(), tenantFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(holidays))
}

func (s *Server) deleteHoliday(w http.ResponseWriter, r *http.Request) {
	date, err := leave.ParseDate(pathParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteHoliday(r.Context(), tenantFrom(r.Context()), date); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addBlackoutRequest struct {
	LeaveTypeID string     `json:"leave_type_id,omitempty"`
	Start       leave.Date `json:"start"`
	End         leave.Date `json:"end"`
	Reason      string     `json:"reason"`
}

func (s *Server) addBlackout(w http.ResponseWriter, r *http.Request) {
	var req addBlackoutRequest
	if !decode(w, r, &req) {
		return
	}

	b := &leave.Blackout{
		TenantID:    tenantFrom(r.Context()),
		LeaveTypeID: req.LeaveTypeID,
		Start:       req.Start,
		End:         req.End,
		Reason:      req.Reason,
	}
	if err := s.store.AddBlackout(r.Context(), b); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) listBlackouts(w http.ResponseWriter, r *http.Request) {
	blackouts, err := s.store.ListBlackouts(r.Context(), tenantFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(blackouts))
}

func (s *Server) deleteBlackout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBlackout(r.Context(), tenantFrom(r.Context()), pathParam(r, "id")); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
