package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/leaveledger/internal/client"
	"github.com/simonvc/leaveledger/internal/leave"
)

type requestDetailLoadedMsg struct {
	request *leave.Request
	err     error
}

type requestDetailModel struct {
	request *leave.Request
	loading bool
	err     error
	width   int
}

func (m *requestDetailModel) init(c *client.Client, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		req, err := c.GetRequest(context.Background(), id)
		return requestDetailLoadedMsg{request: req, err: err}
	}
}

func (m requestDetailModel) update(msg tea.Msg) (requestDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case requestDetailLoadedMsg:
		m.loading = false
		m.request = msg.request
		m.err = msg.err
	case requestDecidedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.request = msg.request
			m.err = nil
		}
	}
	return m, nil
}

func (m *requestDetailModel) view() string {
	if m.loading {
		return "Loading request..."
	}
	if m.request == nil {
		if m.err != nil {
			return errorStyle.Render("Error: " + m.err.Error())
		}
		return ""
	}
	r := m.request

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Request: %s", r.ID)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("User:"), r.UserID))
	b.WriteString(fmt.Sprintf("%s %s .. %s\n", labelStyle.Render("Dates:"), r.Start, r.End))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Quantity:"), r.Quantity))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Status:"), statusStyle(r.Status)(string(r.Status))))
	if r.Reason != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Reason:"), r.Reason))
	}
	if r.DecidedBy != "" {
		b.WriteString(fmt.Sprintf("%s %s %s\n", labelStyle.Render("Decided by:"), r.DecidedBy, dimStyle.Render(r.DecisionNote)))
	}
	b.WriteString("\n")

	if len(r.Entries) == 0 {
		b.WriteString(dimStyle.Render("  No ledger entries."))
		b.WriteString("\n")
	} else {
		header := fmt.Sprintf("  %-8s %-36s %8s %s", "KIND", "GRANT", "QTY", "AT")
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")
		for _, e := range r.Entries {
			grant := e.GrantID
			if grant == "" {
				grant = "(overdraft)"
			}
			line := fmt.Sprintf("  %-8s %-36s %8s %s", e.Kind, grant, e.Quantity, e.CreatedAt.Format("2006-01-02 15:04"))
			if e.Quantity.IsNegative() {
				b.WriteString(offsetStyle.Render(line))
			} else {
				b.WriteString(drawStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()))
	}
	b.WriteString("\n" + dimStyle.Render("  a:approve  x:reject  c:cancel  esc:back"))
	return b.String()
}
