package leave

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCancelled RequestStatus = "CANCELLED"
)

type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

type Request struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	UserID       string          `json:"user_id"`
	LeaveTypeID  string          `json:"leave_type_id"`
	Start        Date            `json:"start"`
	End          Date            `json:"end"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason,omitempty"`
	Status       RequestStatus   `json:"status"`
	DecidedBy    string          `json:"decided_by,omitempty"`
	DecisionNote string          `json:"decision_note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Entries      []Entry         `json:"entries,omitempty"`
}

// Active reports whether the request still occupies its dates.
func (r *Request) Active() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// Overlaps reports whether the two requests share at least one day.
func (r *Request) Overlaps(other *Request) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// NextStatus is the request state machine.
//
//	""       --submit-->  PENDING
//	PENDING  --approve--> APPROVED
//	PENDING  --reject-->  REJECTED
//	PENDING  --cancel-->  CANCELLED
//	APPROVED --cancel-->  CANCELLED
func NextStatus(current RequestStatus, action Action) (RequestStatus, error) {
	switch {
	case action == ActionSubmit && current == "":
		return StatusPending, nil
	case action == ActionApprove && current == StatusPending:
		return StatusApproved, nil
	case action == ActionReject && current == StatusPending:
		return StatusRejected, nil
	case action == ActionCancel && (current == StatusPending || current == StatusApproved):
		return StatusCancelled, nil
	}
	from := string(current)
	if from == "" {
		from = "NEW"
	}
	return current, fmt.Errorf("%w: cannot %s a %s request", ErrInvalidTransition, action, from)
}

// Ledger is the in-memory view of one (user, leave type) pair: its grants and
// every entry appended against them. Transition methods validate the request,
// plan the offsetting entries and append them to Entries. Persisting the
// returned entries is the caller's job.
type Ledger struct {
	Type     LeaveType
	Calendar *Calendar
	Grants   []Grant
	Entries  []Entry
}

func (l *Ledger) Balance(asOf Date) Balance {
	b := ComputeBalance(l.Grants, l.Entries, asOf)
	b.LeaveTypeID = l.Type.ID
	b.Unit = l.Type.Unit
	return b
}

// Quote resolves the charge for a range and previews its FIFO allocation
// without recording anything.
func (l *Ledger) Quote(start, end Date, requested decimal.Decimal) (Quote, []Allocation, error) {
	q, err := l.Type.Quantify(l.Calendar, start, end, requested)
	if err != nil {
		return q, nil, err
	}
	if !l.Type.Tracked() {
		return q, nil, nil
	}
	allocs, err := Allocate(l.Grants, l.Entries, start, q.Quantity, l.Type.AllowNegative)
	return q, allocs, err
}

// Submit validates and resolves the request quantity, moves it to PENDING and,
// for ON_APPLY types, holds the FIFO allocation. ON_APPROVE types are checked
// against the balance but nothing is held.
func (l *Ledger) Submit(req *Request) ([]Entry, error) {
	if !l.Type.Active {
		return nil, ErrLeaveTypeInactive
	}
	next, err := NextStatus(req.Status, ActionSubmit)
	if err != nil {
		return nil, err
	}
	q, allocs, err := l.Quote(req.Start, req.End, req.Quantity)
	if err != nil {
		return nil, err
	}
	req.Quantity = q.Quantity
	req.Status = next

	if l.Type.Timing != TimingOnApply {
		return nil, nil
	}
	out := make([]Entry, 0, len(allocs))
	for _, a := range allocs {
		out = append(out, l.entry(req, a.GrantID, KindHold, a.Quantity))
	}
	l.Entries = append(l.Entries, out...)
	return out, nil
}

// Approve finalizes the request. An ON_APPLY hold is released and consumed
// against the same grants; ON_APPROVE types allocate now.
func (l *Ledger) Approve(req *Request) ([]Entry, error) {
	next, err := NextStatus(req.Status, ActionApprove)
	if err != nil {
		return nil, err
	}

	var out []Entry
	switch l.Type.Timing {
	case TimingOnApply:
		held, consumed := l.netForRequest(req.ID)
		if len(consumed.order) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyAllocated, req.ID)
		}
		for _, gid := range held.order {
			q := held.by[gid]
			out = append(out,
				l.entry(req, gid, KindRelease, q.Neg()),
				l.entry(req, gid, KindConsume, q),
			)
		}
	case TimingOnApprove:
		_, consumed := l.netForRequest(req.ID)
		if len(consumed.order) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyAllocated, req.ID)
		}
		allocs, err := Allocate(l.Grants, l.Entries, req.Start, req.Quantity, l.Type.AllowNegative)
		if err != nil {
			return nil, err
		}
		for _, a := range allocs {
			out = append(out, l.entry(req, a.GrantID, KindConsume, a.Quantity))
		}
	}

	req.Status = next
	l.Entries = append(l.Entries, out...)
	return out, nil
}

// Reject releases any hold.
func (l *Ledger) Reject(req *Request) ([]Entry, error) {
	next, err := NextStatus(req.Status, ActionReject)
	if err != nil {
		return nil, err
	}
	out := l.release(req)
	req.Status = next
	l.Entries = append(l.Entries, out...)
	return out, nil
}

// Cancel releases a pending request's hold or reverses an approved request's
// consumption with negative offsetting entries.
func (l *Ledger) Cancel(req *Request) ([]Entry, error) {
	next, err := NextStatus(req.Status, ActionCancel)
	if err != nil {
		return nil, err
	}

	out := l.release(req)
	_, consumed := l.netForRequest(req.ID)
	for _, gid := range consumed.order {
		out = append(out, l.entry(req, gid, KindReverse, consumed.by[gid].Neg()))
	}

	req.Status = next
	l.Entries = append(l.Entries, out...)
	return out, nil
}

func (l *Ledger) release(req *Request) []Entry {
	held, _ := l.netForRequest(req.ID)
	out := make([]Entry, 0, len(held.order))
	for _, gid := range held.order {
		out = append(out, l.entry(req, gid, KindRelease, held.by[gid].Neg()))
	}
	return out
}

type netted struct {
	by    map[string]decimal.Decimal
	order []string
}

// netForRequest returns the outstanding held and consumed quantity per grant
// for one request, in the order the grants were first drawn. Grants that net to
// zero are dropped.
func (l *Ledger) netForRequest(requestID string) (held, consumed netted) {
	held.by = make(map[string]decimal.Decimal)
	consumed.by = make(map[string]decimal.Decimal)
	var seen []string
	known := make(map[string]bool)
	for _, e := range l.Entries {
		if e.RequestID != requestID {
			continue
		}
		if !known[e.GrantID] {
			known[e.GrantID] = true
			seen = append(seen, e.GrantID)
		}
		switch e.Kind {
		case KindHold, KindRelease:
			held.by[e.GrantID] = held.by[e.GrantID].Add(e.Quantity)
		case KindConsume, KindReverse:
			consumed.by[e.GrantID] = consumed.by[e.GrantID].Add(e.Quantity)
		}
	}
	for _, gid := range seen {
		if held.by[gid].IsPositive() {
			held.order = append(held.order, gid)
		}
		if consumed.by[gid].IsPositive() {
			consumed.order = append(consumed.order, gid)
		}
	}
	return held, consumed
}

func (l *Ledger) entry(req *Request, grantID string, kind EntryKind, qty decimal.Decimal) Entry {
	return Entry{
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		LeaveTypeID: req.LeaveTypeID,
		RequestID:   req.ID,
		GrantID:     grantID,
		Kind:        kind,
		Quantity:    qty,
	}
}
