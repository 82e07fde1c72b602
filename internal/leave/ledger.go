package leave

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	KindHold    EntryKind = "HOLD"
	KindRelease EntryKind = "RELEASE"
	KindConsume EntryKind = "CONSUME"
	KindReverse EntryKind = "REVERSE"
)

// Entry is an append-only, signed movement against a grant. HOLD and CONSUME
// are positive; RELEASE and REVERSE are their negative offsets. An empty GrantID
// is an overdraft draw.
type Entry struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	UserID      string          `json:"user_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	RequestID   string          `json:"request_id"`
	GrantID     string          `json:"grant_id,omitempty"`
	Kind        EntryKind       `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Allocation is the portion of a request drawn from one grant.
type Allocation struct {
	GrantID  string          `json:"grant_id,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
}

type usage struct {
	held     decimal.Decimal
	consumed decimal.Decimal
}

func (u usage) total() decimal.Decimal {
	return u.held.Add(u.consumed)
}

// usageByGrant nets entries per grant. The overdraft is keyed by "".
func usageByGrant(entries []Entry) map[string]usage {
	out := make(map[string]usage)
	for _, e := range entries {
		u := out[e.GrantID]
		switch e.Kind {
		case KindHold, KindRelease:
			u.held = u.held.Add(e.Quantity)
		case KindConsume, KindReverse:
			u.consumed = u.consumed.Add(e.Quantity)
		}
		out[e.GrantID] = u
	}
	return out
}

// fifo returns the grants eligible at asOf, oldest first.
func fifo(grants []Grant, asOf Date) []Grant {
	eligible := make([]Grant, 0, len(grants))
	for _, g := range grants {
		if g.ActiveAt(asOf) {
			eligible = append(eligible, g)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if c := a.IssuedOn.Compare(b.IssuedOn); c != 0 {
			return c < 0
		}
		switch {
		case a.ExpiresOn != nil && b.ExpiresOn == nil:
			return true
		case a.ExpiresOn == nil && b.ExpiresOn != nil:
			return false
		case a.ExpiresOn != nil && b.ExpiresOn != nil:
			if c := a.ExpiresOn.Compare(*b.ExpiresOn); c != 0 {
				return c < 0
			}
		}
		return a.ID < b.ID
	})
	return eligible
}

// InsufficientBalanceError reports how far a request overshoots the balance.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: requested %s, available %s", ErrInsufficientBalance, e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// Allocate draws qty from the grants eligible at asOf in FIFO order. A grant
// never yields more than its remaining quantity. When allowNegative is set any
// shortfall becomes an overdraft allocation; otherwise the request must fit the
// available balance.
func Allocate(grants []Grant, entries []Entry, asOf Date, qty decimal.Decimal, allowNegative bool) ([]Allocation, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, qty)
	}

	used := usageByGrant(entries)
	eligible := fifo(grants, asOf)

	available := used[""].total().Neg()
	for _, g := range eligible {
		available = available.Add(g.Quantity.Sub(used[g.ID].total()))
	}
	if !allowNegative && qty.GreaterThan(available) {
		return nil, &InsufficientBalanceError{Requested: qty, Available: available}
	}

	var allocs []Allocation
	need := qty
	for _, g := range eligible {
		if !need.IsPositive() {
			break
		}
		remaining := g.Quantity.Sub(used[g.ID].total())
		if !remaining.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, need)
		allocs = append(allocs, Allocation{GrantID: g.ID, Quantity: take})
		need = need.Sub(take)
	}
	if need.IsPositive() {
		if !allowNegative {
			// Only reachable if an overdraft is outstanding.
			return nil, &InsufficientBalanceError{Requested: qty, Available: available}
		}
		allocs = append(allocs, Allocation{Quantity: need})
	}
	return allocs, nil
}

type GrantBalance struct {
	GrantID   string          `json:"grant_id"`
	IssuedOn  Date            `json:"issued_on"`
	ExpiresOn *Date           `json:"expires_on,omitempty"`
	Source    GrantSource     `json:"source"`
	Quantity  decimal.Decimal `json:"quantity"`
	Held      decimal.Decimal `json:"held"`
	Consumed  decimal.Decimal `json:"consumed"`
	Remaining decimal.Decimal `json:"remaining"`
	Expired   bool            `json:"expired"`
}

// Balance is always derived from grants and entries; it is never stored.
type Balance struct {
	UserID      string          `json:"user_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Unit        Unit            `json:"unit"`
	AsOf        Date            `json:"as_of"`
	Granted     decimal.Decimal `json:"granted"`
	Consumed    decimal.Decimal `json:"consumed"`
	Held        decimal.Decimal `json:"held"`
	Overdraft   decimal.Decimal `json:"overdraft"`
	Expired     decimal.Decimal `json:"expired"`
	Available   decimal.Decimal `json:"available"`
	Grants      []GrantBalance  `json:"grants"`
}

// ComputeBalance recomputes the balance at asOf. Granted, Consumed and Held
// cover active grants and the overdraft; the unused remainder of lapsed grants
// is reported as Expired. Grants issued after asOf are ignored.
func ComputeBalance(grants []Grant, entries []Entry, asOf Date) Balance {
	used := usageByGrant(entries)
	b := Balance{AsOf: asOf, Grants: []GrantBalance{}}

	ordered := append([]Grant(nil), grants...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if c := ordered[i].IssuedOn.Compare(ordered[j].IssuedOn); c != 0 {
			return c < 0
		}
		return ordered[i].ID < ordered[j].ID
	})

	for _, g := range ordered {
		if g.IssuedOn.After(asOf) {
			continue
		}
		u := used[g.ID]
		line := GrantBalance{
			GrantID:   g.ID,
			IssuedOn:  g.IssuedOn,
			ExpiresOn: g.ExpiresOn,
			Source:    g.Source,
			Quantity:  g.Quantity,
			Held:      u.held,
			Consumed:  u.consumed,
			Remaining: g.Quantity.Sub(u.total()),
			Expired:   g.ExpiredAt(asOf),
		}
		if line.Expired {
			b.Expired = b.Expired.Add(line.Remaining)
		} else {
			b.Granted = b.Granted.Add(g.Quantity)
			b.Held = b.Held.Add(u.held)
			b.Consumed = b.Consumed.Add(u.consumed)
		}
		b.Grants = append(b.Grants, line)
	}

	over := used[""]
	b.Overdraft = over.total()
	b.Held = b.Held.Add(over.held)
	b.Consumed = b.Consumed.Add(over.consumed)
	b.Available = b.Granted.Sub(b.Held).Sub(b.Consumed)
	return b
}
