package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/leaveledger/internal/client"
	"github.com/simonvc/leaveledger/internal/leave"
)

type requestsLoadedMsg struct {
	requests []leave.Request
	err      error
}

// requestDecisionMsg asks the app to apply an action to a request.
type requestDecisionMsg struct {
	id     string
	action leave.Action
}

// requestDecidedMsg is sent after the server processes the decision.
type requestDecidedMsg struct {
	request *leave.Request
	action  leave.Action
	err     error
}

type requestListModel struct {
	requests []leave.Request
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func (m *requestListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		reqs, err := c.ListRequests(context.Background(), client.RequestFilter{Limit: 200})
		return requestsLoadedMsg{requests: reqs, err: err}
	}
}

func (m requestListModel) update(msg tea.Msg) (requestListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case requestsLoadedMsg:
		m.loading = false
		m.requests = msg.requests
		m.err = msg.err
		if m.cursor >= len(m.requests) {
			m.cursor = max(len(m.requests)-1, 0)
		}

	case requestDecidedMsg:
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.requests)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Approve):
			return m, m.decide(leave.ActionApprove)
		case key.Matches(msg, keys.Reject):
			return m, m.decide(leave.ActionReject)
		case key.Matches(msg, keys.Cancel):
			return m, m.decide(leave.ActionCancel)
		}
	}
	return m, nil
}

func (m *requestListModel) decide(action leave.Action) tea.Cmd {
	id := m.selectedID()
	if id == "" {
		return nil
	}
	m.err = nil
	return func() tea.Msg {
		return requestDecisionMsg{id: id, action: action}
	}
}

func (m *requestListModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.requests) {
		return m.requests[m.cursor].ID
	}
	return ""
}

func statusStyle(s leave.RequestStatus) func(...string) string {
	switch s {
	case leave.StatusPending:
		return pendingStyle.Render
	case leave.StatusApproved:
		return successStyle.Render
	default:
		return dimStyle.Render
	}
}

func (m *requestListModel) view() string {
	if m.loading {
		return "Loading requests..."
	}
	if m.err != nil && len(m.requests) == 0 {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.requests) == 0 {
		return dimStyle.Render("No requests found. Press 'n' to submit one.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Requests"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-12s %-10s %-10s %6s %-10s %s", "USER", "START", "END", "QTY", "STATUS", "REASON")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.requests) && i < start+maxRows; i++ {
		r := m.requests[i]
		reason := r.Reason
		if len(reason) > 30 {
			reason = reason[:28] + ".."
		}

		line := fmt.Sprintf("  %-12s %-10s %-10s %6s %-10s %s", r.UserID, r.Start, r.End, r.Quantity, r.Status, reason)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(statusStyle(r.Status)(line))
		}
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()))
	} else {
		b.WriteString(fmt.Sprintf("\n  %d requests", len(m.requests)))
	}
	return b.String()
}
