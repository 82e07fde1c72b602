package server

import (
	"net/http"

	"github.com/simonvc/leaveledger/internal/leave"
)

// asOfParam reads the optional as_of query parameter, defaulting to today.
func asOfParam(r *http.Request) (leave.Date, error) {
	v := r.URL.Query().Get("as_of")
	if v == "" {
		return leave.Today(), nil
	}
	return leave.ParseDate(v)
}

func (s *Server) listBalances(w http.ResponseWriter, r *http.Request) {
	asOf, err := asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	balances, err := s.store.ListBalances(r.Context(), tenantFrom(r.Context()), pathParam(r, "id"), asOf)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(balances))
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.store.Balance(r.Context(), tenantFrom(r.Context()), pathParam(r, "id"), pathParam(r, "typeID"), asOf)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}
