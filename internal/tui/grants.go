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

type grantsLoadedMsg struct {
	grants []leave.Grant
	err    error
}

type grantListModel struct {
	grants  []leave.Grant
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *grantListModel) init(c *client.Client, userID string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		grants, err := c.ListGrants(context.Background(), userID, "")
		return grantsLoadedMsg{grants: grants, err: err}
	}
}

func (m grantListModel) update(msg tea.Msg) (grantListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case grantsLoadedMsg:
		m.loading = false
		m.grants = msg.grants
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.grants)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *grantListModel) view() string {
	if m.loading {
		return "Loading grants..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.grants) == 0 {
		return dimStyle.Render("No grants issued.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Grants"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-10s %-10s %8s %-11s %s", "ISSUED", "EXPIRES", "QTY", "SOURCE", "NOTE")
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

	today := leave.Today()
	for i := start; i < len(m.grants) && i < start+maxRows; i++ {
		g := m.grants[i]
		expires := "-"
		if g.ExpiresOn != nil {
			expires = g.ExpiresOn.String()
		}
		note := g.Note
		if len(note) > 30 {
			note = note[:28] + ".."
		}

		line := fmt.Sprintf("  %-10s %-10s %8s %-11s %s", g.IssuedOn, expires, g.Quantity, g.Source, note)
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case g.ExpiredAt(today):
			b.WriteString(dimStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d grants", len(m.grants)))
	return b.String()
}
