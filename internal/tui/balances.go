package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/leaveledger/internal/client"
	"github.com/simonvc/leaveledger/internal/leave"
)

type balancesLoadedMsg struct {
	balances []leave.Balance
	types    []leave.LeaveType
	err      error
}

type balanceListModel struct {
	balances []leave.Balance
	codes    map[string]string
	loading  bool
	err      error
	width    int
	height   int
}

func (m *balanceListModel) init(c *client.Client, userID string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		ctx := context.Background()
		balances, err := c.ListBalances(ctx, userID, leave.Date{})
		if err != nil {
			return balancesLoadedMsg{err: err}
		}
		types, err := c.ListLeaveTypes(ctx)
		return balancesLoadedMsg{balances: balances, types: types, err: err}
	}
}

func (m balanceListModel) update(msg tea.Msg) (balanceListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case balancesLoadedMsg:
		m.loading = false
		m.balances = msg.balances
		m.err = msg.err
		m.codes = make(map[string]string, len(msg.types))
		for _, lt := range msg.types {
			m.codes[lt.ID] = lt.Code
		}
	}
	return m, nil
}

func (m *balanceListModel) view(userID string) string {
	if m.loading {
		return "Loading balances..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.balances) == 0 {
		return dimStyle.Render("No tracked leave types.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Balances for " + userID))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-14s %10s %10s %10s %10s %10s", "TYPE", "GRANTED", "CONSUMED", "HELD", "EXPIRED", "AVAILABLE")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, bal := range m.balances {
		code := m.codes[bal.LeaveTypeID]
		if code == "" {
			code = bal.LeaveTypeID
		}
		line := fmt.Sprintf("  %-14s %10s %10s %10s %10s %10s",
			code, bal.Granted, bal.Consumed, bal.Held, bal.Expired, bal.Available)
		switch {
		case bal.Available.IsNegative():
			b.WriteString(errorStyle.Render(line))
		case bal.Held.IsPositive():
			b.WriteString(pendingStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + subtitleStyle.Render("  as of "+leave.Today().String()))
	return b.String()
}
