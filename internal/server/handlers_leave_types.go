package server

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/simonvc/leaveledger/internal/leave"
)

type createLeaveTypeRequest struct {
	Code             string                `json:"code"`
	Name             string                `json:"name"`
	Unit             leave.Unit            `json:"unit,omitempty"`
	RoundingStep     decimal.Decimal       `json:"rounding_step"`
	RoundingMode     leave.RoundingMode    `json:"rounding_mode,omitempty"`
	HoursPerDay      decimal.Decimal       `json:"hours_per_day"`
	Timing           leave.DeductionTiming `json:"timing,omitempty"`
	BusinessDaysOnly *bool                 `json:"business_days_only,omitempty"`
	AllowNegative    bool                  `json:"allow_negative,omitempty"`
	MaxPerRequest    decimal.Decimal       `json:"max_per_request"`
	Active           *bool                 `json:"active,omitempty"`
}

func (s *Server) createLeaveType(w http.ResponseWriter, r *http.Request) {
	var req createLeaveTypeRequest
	if !decode(w, r, &req) {
		return
	}

	lt := &leave.LeaveType{
		TenantID:         tenantFrom(r.Context()),
		Code:             req.Code,
		Name:             req.Name,
		Unit:             req.Unit,
		RoundingStep:     req.RoundingStep,
		RoundingMode:     req.RoundingMode,
		HoursPerDay:      req.HoursPerDay,
		Timing:           req.Timing,
		BusinessDaysOnly: req.BusinessDaysOnly == nil || *req.BusinessDaysOnly,
		AllowNegative:    req.AllowNegative,
		MaxPerRequest:    req.MaxPerRequest,
		Active:           req.Active == nil || *req.Active,
	}
	if err := s.store.CreateLeaveType(r.Context(), lt); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, lt)
}

func (s *Server) listLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.store.ListLeaveTypes(r.Context(), tenantFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNil(types))
}

func (s *Server) getLeaveType(w http.ResponseWriter, r *http.Request) {
	lt, err := s.store.GetLeaveType(r.Context(), tenantFrom(r.Context()), pathParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lt)
}

type updateLeaveTypeRequest struct {
	Name             *string             `json:"name,omitempty"`
	RoundingStep     *decimal.Decimal    `json:"rounding_step,omitempty"`
	RoundingMode     *leave.RoundingMode `json:"rounding_mode,omitempty"`
	HoursPerDay      *decimal.Decimal    `json:"hours_per_day,omitempty"`
	BusinessDaysOnly *bool               `json:"business_days_only,omitempty"`
	AllowNegative    *bool               `json:"allow_negative,omitempty"`
	MaxPerRequest    *decimal.Decimal    `json:"max_per_request,omitempty"`
	Active           *bool               `json:"active,omitempty"`
}

func (s *Server) updateLeaveType(w http.ResponseWriter, r *http.Request) {
	var req updateLeaveTypeRequest
	if !decode(w, r, &req) {
		return
	}

	lt, err := s.store.GetLeaveType(r.Context(), tenantFrom(r.Context()), pathParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	if req.Name != nil {
		lt.Name = *req.Name
	}
	if req.RoundingStep != nil {
		lt.RoundingStep = *req.RoundingStep
	}
	if req.RoundingMode != nil {
		lt.RoundingMode = *req.RoundingMode
	}
	if req.HoursPerDay != nil {
		lt.HoursPerDay = *req.HoursPerDay
	}
	if req.BusinessDaysOnly != nil {
		lt.BusinessDaysOnly = *req.BusinessDaysOnly
	}
	if req.AllowNegative != nil {
		lt.AllowNegative = *req.AllowNegative
	}
	if req.MaxPerRequest != nil {
		lt.MaxPerRequest = *req.MaxPerRequest
	}
	if req.Active != nil {
		lt.Active = *req.Active
	}

	if err := s.store.UpdateLeaveType(r.Context(), lt); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lt)
}
