package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/simonvc/leaveledger/internal/client"
	"github.com/simonvc/leaveledger/internal/leave"
)

type mode int

const (
	modeBalances mode = iota
	modeRequestList
	modeRequestDetail
	modeRequestForm
	modeGrants
)

var tabModes = []mode{modeBalances, modeRequestList, modeGrants}

func tabLabel(m mode) string {
	switch m {
	case modeBalances:
		return "Balances"
	case modeRequestList:
		return "Requests"
	case modeGrants:
		return "Grants"
	default:
		return ""
	}
}

type App struct {
	client        *client.Client
	userID        string
	mode          mode
	tabIndex      int
	width, height int
	err           error
	statusMsg     string

	balances      balanceListModel
	requestList   requestListModel
	requestDetail requestDetailModel
	requestForm   requestFormModel
	grants        grantListModel
}

// NewApp builds the TUI for userID. The client must already be scoped to a
// tenant; its acting user is recorded on decisions.
func NewApp(c *client.Client, userID string) *App {
	return &App{
		client: c,
		userID: userID,
		mode:   modeBalances,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.balances.init(a.client, a.userID),
		a.requestList.init(a.client),
		a.grants.init(a.client, a.userID),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.balances.width = msg.Width
		a.balances.height = msg.Height - 6
		a.requestList.width = msg.Width
		a.requestList.height = msg.Height - 6
		a.grants.width = msg.Width
		a.grants.height = msg.Height - 6
		a.requestDetail.width = msg.Width
		a.requestForm.width = msg.Width
		return a, nil
	}

	// Loads fire concurrently from Init, so route them regardless of mode.
	switch typedMsg := msg.(type) {
	case balancesLoadedMsg:
		var cmd tea.Cmd
		a.balances, cmd = a.balances.update(msg)
		return a, cmd
	case requestsLoadedMsg:
		var cmd tea.Cmd
		a.requestList, cmd = a.requestList.update(msg)
		return a, cmd
	case grantsLoadedMsg:
		var cmd tea.Cmd
		a.grants, cmd = a.grants.update(msg)
		return a, cmd
	case requestDetailLoadedMsg:
		var cmd tea.Cmd
		a.requestDetail, cmd = a.requestDetail.update(msg)
		return a, cmd
	case requestDecisionMsg:
		id, action := typedMsg.id, typedMsg.action
		return a, func() tea.Msg {
			req, err := a.decide(id, action)
			return requestDecidedMsg{request: req, action: action, err: err}
		}
	case requestDecidedMsg:
		a.requestList, _ = a.requestList.update(msg)
		a.requestDetail, _ = a.requestDetail.update(msg)
		if typedMsg.err != nil {
			return a, nil
		}
		a.statusMsg = fmt.Sprintf("Request %s %s", typedMsg.request.ID, typedMsg.request.Status)
		return a, a.refreshAll()
	}

	// Modal: the form receives every message until it finishes.
	if a.mode == modeRequestForm {
		var cmd tea.Cmd
		a.requestForm, cmd = a.requestForm.update(msg, a.client)
		if a.requestForm.done {
			a.mode = modeRequestList
			a.tabIndex = 1
			a.statusMsg = a.requestForm.statusMsg
			return a, a.refreshAll()
		}
		if a.requestForm.cancelled {
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = "Request cancelled"
		}
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Tab):
			a.tabIndex = (a.tabIndex + 1) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, a.refreshTab()

		case key.Matches(msg, keys.ShiftTab):
			a.tabIndex = (a.tabIndex - 1 + len(tabModes)) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, a.refreshTab()

		case key.Matches(msg, keys.Refresh):
			return a, a.refreshTab()

		case key.Matches(msg, keys.Escape):
			if a.mode == modeRequestDetail {
				a.mode = modeRequestList
			}
			return a, nil

		case key.Matches(msg, keys.New):
			a.mode = modeRequestForm
			a.requestForm = newRequestForm()
			return a, a.requestForm.loadTypes(a.client)

		case key.Matches(msg, keys.Enter):
			if a.mode == modeRequestList {
				if id := a.requestList.selectedID(); id != "" {
					a.mode = modeRequestDetail
					return a, a.requestDetail.init(a.client, id)
				}
				return a, nil
			}

		case a.mode == modeRequestDetail && a.requestDetail.request != nil &&
			(key.Matches(msg, keys.Approve) || key.Matches(msg, keys.Reject) || key.Matches(msg, keys.Cancel)):
			action := leave.ActionApprove
			switch {
			case key.Matches(msg, keys.Reject):
				action = leave.ActionReject
			case key.Matches(msg, keys.Cancel):
				action = leave.ActionCancel
			}
			id := a.requestDetail.request.ID
			return a, func() tea.Msg { return requestDecisionMsg{id: id, action: action} }
		}
	}

	var cmd tea.Cmd
	switch a.mode {
	case modeBalances:
		a.balances, cmd = a.balances.update(msg)
	case modeRequestList:
		a.requestList, cmd = a.requestList.update(msg)
	case modeRequestDetail:
		a.requestDetail, cmd = a.requestDetail.update(msg)
	case modeGrants:
		a.grants, cmd = a.grants.update(msg)
	}
	return a, cmd
}

func (a *App) decide(id string, action leave.Action) (*leave.Request, error) {
	ctx := context.Background()
	switch action {
	case leave.ActionApprove:
		return a.client.ApproveRequest(ctx, id, "")
	case leave.ActionReject:
		return a.client.RejectRequest(ctx, id, "")
	default:
		return a.client.CancelRequest(ctx, id, "")
	}
}

func (a *App) refreshTab() tea.Cmd {
	switch a.mode {
	case modeBalances:
		return a.balances.init(a.client, a.userID)
	case modeRequestList:
		return a.requestList.init(a.client)
	case modeGrants:
		return a.grants.init(a.client, a.userID)
	}
	return nil
}

func (a *App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.balances.init(a.client, a.userID),
		a.requestList.init(a.client),
	)
}

func (a *App) View() string {
	tabs := ""
	for i, m := range tabModes {
		label := tabLabel(m)
		if i == a.tabIndex && a.mode != modeRequestForm {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += inactiveTabStyle.Render(label)
		}
		if i < len(tabModes)-1 {
			tabs += " "
		}
	}

	var content string
	switch a.mode {
	case modeBalances:
		content = a.balances.view(a.userID)
	case modeRequestList:
		content = a.requestList.view()
	case modeRequestDetail:
		content = a.requestDetail.view()
	case modeRequestForm:
		content = a.requestForm.view()
	case modeGrants:
		content = a.grants.view()
	}

	status := ""
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	helpText := statusBarStyle.Render("tab:switch  enter:select  esc:back  n:new request  a/x/c:approve/reject/cancel  r:refresh  q:quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		content,
		"",
		status,
		helpText,
	)
}
