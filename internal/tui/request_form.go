package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/leaveledger/internal/client"
	"github.com/simonvc/leaveledger/internal/leave"
)

type formStep int

const (
	stepType formStep = iota
	stepStart
	stepEnd
	stepReason
	stepConfirm
)

type formTypesLoadedMsg struct {
	types []leave.LeaveType
	err   error
}

type quoteLoadedMsg struct {
	quote *client.QuoteResponse
	err   error
}

type requestSubmittedMsg struct {
	request *leave.Request
	err     error
}

// requestFormModel walks the user through a new leave request and shows the
// server's quote before submitting.
type requestFormModel struct {
	step       formStep
	types      []leave.LeaveType
	typeCursor int
	start      textinput.Model
	end        textinput.Model
	reason     textinput.Model
	quote      *client.QuoteResponse

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newRequestForm() requestFormModel {
	start := textinput.New()
	start.Placeholder = "YYYY-MM-DD"
	start.CharLimit = 10

	end := textinput.New()
	end.Placeholder = "YYYY-MM-DD (blank for a single day)"
	end.CharLimit = 10

	reason := textinput.New()
	reason.Placeholder = "optional"
	reason.CharLimit = 120

	return requestFormModel{step: stepType, start: start, end: end, reason: reason}
}

func (m *requestFormModel) loadTypes(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		types, err := c.ListLeaveTypes(context.Background())
		if err != nil {
			return formTypesLoadedMsg{err: err}
		}
		active := types[:0]
		for _, lt := range types {
			if lt.Active {
				active = append(active, lt)
			}
		}
		return formTypesLoadedMsg{types: active}
	}
}

func (m *requestFormModel) body() (client.SubmitRequest, error) {
	if len(m.types) == 0 {
		return client.SubmitRequest{}, fmt.Errorf("no active leave types")
	}
	start, err := leave.ParseDate(m.start.Value())
	if err != nil {
		return client.SubmitRequest{}, err
	}
	end := start
	if v := strings.TrimSpace(m.end.Value()); v != "" {
		if end, err = leave.ParseDate(v); err != nil {
			return client.SubmitRequest{}, err
		}
	}
	return client.SubmitRequest{
		LeaveTypeID: m.types[m.typeCursor].ID,
		Start:       start,
		End:         end,
		Reason:      strings.TrimSpace(m.reason.Value()),
	}, nil
}

func (m requestFormModel) update(msg tea.Msg, c *client.Client) (requestFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case formTypesLoadedMsg:
		m.types = msg.types
		m.err = msg.err
		return m, nil

	case quoteLoadedMsg:
		m.quote = msg.quote
		m.err = msg.err
		return m, nil

	case requestSubmittedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("Request %s submitted (%s)", msg.request.ID, msg.request.Status)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}
		if key.Matches(msg, keys.Enter) {
			return m.advance(c)
		}
		if m.step == stepType {
			switch {
			case key.Matches(msg, keys.Up):
				if m.typeCursor > 0 {
					m.typeCursor--
				}
			case key.Matches(msg, keys.Down):
				if m.typeCursor < len(m.types)-1 {
					m.typeCursor++
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.step {
	case stepStart:
		m.start, cmd = m.start.Update(msg)
	case stepEnd:
		m.end, cmd = m.end.Update(msg)
	case stepReason:
		m.reason, cmd = m.reason.Update(msg)
	}
	return m, cmd
}

func (m requestFormModel) advance(c *client.Client) (requestFormModel, tea.Cmd) {
	m.err = nil
	switch m.step {
	case stepType:
		if len(m.types) == 0 {
			return m, nil
		}
		m.step = stepStart
		return m, m.start.Focus()
	case stepStart:
		if _, err := leave.ParseDate(m.start.Value()); err != nil {
			m.err = err
			return m, nil
		}
		m.start.Blur()
		m.step = stepEnd
		return m, m.end.Focus()
	case stepEnd:
		m.end.Blur()
		m.step = stepReason
		return m, m.reason.Focus()
	case stepReason:
		m.reason.Blur()
		body, err := m.body()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.step = stepConfirm
		m.quote = nil
		return m, func() tea.Msg {
			q, err := c.QuoteRequest(context.Background(), body)
			return quoteLoadedMsg{quote: q, err: err}
		}
	case stepConfirm:
		body, err := m.body()
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, func() tea.Msg {
			req, err := c.SubmitRequest(context.Background(), body)
			return requestSubmittedMsg{request: req, err: err}
		}
	}
	return m, nil
}

func (m *requestFormModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("New Leave Request"))
	b.WriteString("\n")

	if m.step == stepType {
		b.WriteString(labelStyle.Render("Leave type:"))
		b.WriteString("\n")
		if len(m.types) == 0 {
			b.WriteString(dimStyle.Render("  No active leave types."))
			b.WriteString("\n")
		}
		for i, lt := range m.types {
			line := fmt.Sprintf("  %-12s %-24s %s", lt.Code, lt.Name, lt.Unit)
			if i == m.typeCursor {
				b.WriteString(selectedStyle.Render("> " + line[2:]))
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Leave type:"), m.types[m.typeCursor].Code))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Start:"), m.start.View()))
		if m.step >= stepEnd {
			b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("End:"), m.end.View()))
		}
		if m.step >= stepReason {
			b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Reason:"), m.reason.View()))
		}
	}

	if m.step == stepConfirm && m.quote != nil {
		q := m.quote
		var qb strings.Builder
		qb.WriteString(fmt.Sprintf("%d chargeable days, %s %s\n", q.ChargeableDays, q.Quantity, leave.UnitLabel(q.Unit)))
		for _, a := range q.Allocations {
			grant := a.GrantID
			if grant == "" {
				grant = "(overdraft)"
			}
			qb.WriteString(fmt.Sprintf("  %-36s %8s\n", grant, a.Quantity))
		}
		qb.WriteString(dimStyle.Render("enter to submit, esc to cancel"))
		b.WriteString("\n" + boxStyle.Render(qb.String()))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()))
	}
	return b.String()
}
