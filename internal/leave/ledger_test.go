package leave

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(s string) *Date {
	d := MustParseDate(s)
	return &d
}

func grant(id, qty, issued string, expires *Date) Grant {
	return Grant{
		ID:          id,
		UserID:      "u1",
		LeaveTypeID: "lt-DAY",
		Quantity:    dec(qty),
		IssuedOn:    MustParseDate(issued),
		ExpiresOn:   expires,
		Source:      SourceManual,
	}
}

func allocStrings(allocs []Allocation) []string {
	out := make([]string, 0, len(allocs))
	for _, a := range allocs {
		id := a.GrantID
		if id == "" {
			id = "overdraft"
		}
		out = append(out, id+"="+a.Quantity.String())
	}
	return out
}

func TestAllocate_FIFO(t *testing.T) {
	t.Parallel()

	grants := []Grant{
		grant("g-2026", "10", "2026-01-01", nil),
		grant("g-carry", "3", "2025-12-31", datePtr("2026-03-31")),
		grant("g-future", "5", "2026-06-01", nil),
		grant("g-lapsed", "4", "2025-01-01", datePtr("2025-12-31")),
	}

	allocs, err := Allocate(grants, nil, MustParseDate("2026-02-02"), dec("5"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"g-carry=3", "g-2026=2"}, allocStrings(allocs))
}

func TestAllocate_TieBreaksOnExpiryThenID(t *testing.T) {
	t.Parallel()

	grants := []Grant{
		grant("b", "1", "2026-01-01", nil),
		grant("c", "1", "2026-01-01", datePtr("2026-12-31")),
		grant("a", "1", "2026-01-01", nil),
		grant("d", "1", "2026-01-01", datePtr("2026-06-30")),
	}

	allocs, err := Allocate(grants, nil, MustParseDate("2026-02-02"), dec("4"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"d=1", "c=1", "a=1", "b=1"}, allocStrings(allocs))
}

func TestAllocate_SkipsConsumedGrants(t *testing.T) {
	t.Parallel()

	grants := []Grant{
		grant("g1", "2", "2026-01-01", nil),
		grant("g2", "5", "2026-02-01", nil),
	}
	entries := []Entry{
		{RequestID: "r0", GrantID: "g1", Kind: KindConsume, Quantity: dec("2")},
		{RequestID: "r1", GrantID: "g2", Kind: KindHold, Quantity: dec("1.5")},
	}

	allocs, err := Allocate(grants, entries, MustParseDate("2026-03-01"), dec("3"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2=3"}, allocStrings(allocs))
}

func TestAllocate_Insufficient(t *testing.T) {
	t.Parallel()

	grants := []Grant{grant("g1", "2", "2026-01-01", nil)}

	_, err := Allocate(grants, nil, MustParseDate("2026-03-01"), dec("2.5"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientBalance))

	var ib *InsufficientBalanceError
	require.True(t, errors.As(err, &ib))
	assert.Equal(t, "2.5", ib.Requested.String())
	assert.Equal(t, "2", ib.Available.String())
}

func TestAllocate_ExpiredGrantIsNotUsable(t *testing.T) {
	t.Parallel()

	grants := []Grant{grant("g1", "5", "2026-01-01", datePtr("2026-01-31"))}

	_, err := Allocate(grants, nil, MustParseDate("2026-02-01"), dec("1"), false)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Expiry day itself is still usable.
	allocs, err := Allocate(grants, nil, MustParseDate("2026-01-31"), dec("1"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1=1"}, allocStrings(allocs))
}

func TestAllocate_Overdraft(t *testing.T) {
	t.Parallel()

	grants := []Grant{grant("g1", "2", "2026-01-01", nil)}

	allocs, err := Allocate(grants, nil, MustParseDate("2026-03-01"), dec("3.5"), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1=2", "overdraft=1.5"}, allocStrings(allocs))

	// An outstanding overdraft is repaid before a new grant can be spent.
	entries := []Entry{
		{RequestID: "r1", GrantID: "g1", Kind: KindConsume, Quantity: dec("2")},
		{RequestID: "r1", Kind: KindConsume, Quantity: dec("1.5")},
	}
	grants = append(grants, grant("g2", "2", "2026-02-01", nil))
	_, err = Allocate(grants, entries, MustParseDate("2026-03-01"), dec("1"), false)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	allocs, err = Allocate(grants, entries, MustParseDate("2026-03-01"), dec("0.5"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2=0.5"}, allocStrings(allocs))
}

func TestAllocate_RejectsNonPositive(t *testing.T) {
	t.Parallel()

	_, err := Allocate(nil, nil, MustParseDate("2026-03-01"), decimal.Zero, true)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestComputeBalance(t *testing.T) {
	t.Parallel()

	grants := []Grant{
		grant("g-lapsed", "4", "2025-01-01", datePtr("2025-12-31")),
		grant("g1", "10", "2026-01-01", nil),
		grant("g-future", "5", "2026-09-01", nil),
	}
	entries := []Entry{
		{RequestID: "r0", GrantID: "g-lapsed", Kind: KindConsume, Quantity: dec("1")},
		{RequestID: "r1", GrantID: "g1", Kind: KindHold, Quantity: dec("2")},
		{RequestID: "r1", GrantID: "g1", Kind: KindRelease, Quantity: dec("-2")},
		{RequestID: "r1", GrantID: "g1", Kind: KindConsume, Quantity: dec("2")},
		{RequestID: "r2", GrantID: "g1", Kind: KindHold, Quantity: dec("1.5")},
		{RequestID: "r3", GrantID: "g1", Kind: KindConsume, Quantity: dec("3")},
		{RequestID: "r3", GrantID: "g1", Kind: KindReverse, Quantity: dec("-3")},
	}

	b := ComputeBalance(grants, entries, MustParseDate("2026-03-01"))

	assert.Equal(t, "10", b.Granted.String())
	assert.Equal(t, "2", b.Consumed.String())
	assert.Equal(t, "1.5", b.Held.String())
	assert.Equal(t, "3", b.Expired.String())
	assert.Equal(t, "0", b.Overdraft.String())
	assert.Equal(t, "6.5", b.Available.String())
	require.Len(t, b.Grants, 2)
	assert.True(t, b.Grants[0].Expired)
	assert.Equal(t, "6.5", b.Grants[1].Remaining.String())

	// Balance identity: granted - consumed - held = available.
	assert.True(t, b.Granted.Sub(b.Consumed).Sub(b.Held).Equal(b.Available))
}

func TestComputeBalance_OverdraftGoesNegative(t *testing.T) {
	t.Parallel()

	grants := []Grant{grant("g1", "1", "2026-01-01", nil)}
	entries := []Entry{
		{RequestID: "r1", GrantID: "g1", Kind: KindConsume, Quantity: dec("1")},
		{RequestID: "r1", Kind: KindConsume, Quantity: dec("2")},
	}

	b := ComputeBalance(grants, entries, MustParseDate("2026-03-01"))
	assert.Equal(t, "2", b.Overdraft.String())
	assert.Equal(t, "-2", b.Available.String())
}
