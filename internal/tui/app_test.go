package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loadedRequests() requestsLoadedMsg {
	return requestsLoadedMsg{requests: []leave.Request{
		{ID: "r1", UserID: "alice", Start: leave.MustParseDate("2026-03-02"), End: leave.MustParseDate("2026-03-03"),
			Quantity: decimal.NewFromInt(2), Status: leave.StatusPending},
		{ID: "r2", UserID: "bob", Start: leave.MustParseDate("2026-04-01"), End: leave.MustParseDate("2026-04-01"),
			Quantity: decimal.NewFromInt(1), Status: leave.StatusApproved},
	}}
}

func TestRequestList_DecisionKeys(t *testing.T) {
	var m requestListModel
	m, _ = m.update(loadedRequests())
	assert.False(t, m.loading)
	assert.Equal(t, "r1", m.selectedID())

	m, _ = m.update(runeKey('j'))
	assert.Equal(t, "r2", m.selectedID())
	m, _ = m.update(runeKey('j'))
	assert.Equal(t, "r2", m.selectedID())

	tests := []struct {
		r    rune
		want leave.Action
	}{
		{'a', leave.ActionApprove},
		{'x', leave.ActionReject},
		{'c', leave.ActionCancel},
	}
	for _, tt := range tests {
		_, cmd := m.update(runeKey(tt.r))
		require.NotNil(t, cmd)
		msg, ok := cmd().(requestDecisionMsg)
		require.True(t, ok)
		assert.Equal(t, "r2", msg.id)
		assert.Equal(t, tt.want, msg.action)
	}
}

func TestRequestList_View(t *testing.T) {
	var m requestListModel
	m.loading = true
	assert.Contains(t, m.view(), "Loading")

	m, _ = m.update(loadedRequests())
	out := m.view()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "PENDING")
	assert.Contains(t, out, "2 requests")
}

func TestApp_TabsCycle(t *testing.T) {
	a := NewApp(nil, "alice")
	a.balances.loading = false
	a.requestList.loading = false
	a.grants.loading = false

	_, _ = a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, modeBalances, a.mode)

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeRequestList, a.mode)
	assert.NotNil(t, cmd)

	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, modeGrants, a.mode)
	assert.Contains(t, a.View(), "Grants")
}
