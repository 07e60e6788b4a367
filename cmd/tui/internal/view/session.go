package view

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

type sessionState int

const (
	sessionStateView sessionState = iota
	sessionStateOpen
	sessionStateClose
)

// sessionInput is shared between model copies so huh can write into it.
type sessionInput struct {
	amount string
	notes  string
}

type SessionModel struct {
	CommonModel
	mgr      *cashsession.Manager
	operator Operator

	state   sessionState
	loading bool
	metrics *cashsession.Metrics
	closed  *cashsession.Session
	form    *huh.Form
	input   *sessionInput
	err     error
}

func NewSessionModel(mgr *cashsession.Manager, op Operator) SessionModel {
	return SessionModel{
		mgr:      mgr,
		operator: op,
		loading:  true,
		input:    &sessionInput{},
	}
}

func (m SessionModel) Title() string { return "Cash Session" }

func (m SessionModel) ShortHelp() string {
	if m.state != sessionStateView {
		return "Esc: cancel"
	}

	if m.metrics == nil {
		return "Esc: back | o: open session | r: refresh"
	}

	return "Esc: back | c: close session | r: refresh"
}

func (m SessionModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionLoadedMsg:
		m.loading = false
		m.metrics = msg.metrics

		if msg.err != nil {
			m.err = msg.err
		}

		return m, nil

	case sessionSavedMsg:
		m.state = sessionStateView
		m.form = nil
		m.err = msg.err

		if msg.closed != nil {
			m.closed = msg.closed
		}

		return m, m.loadCmd()
	}

	switch m.state {
	case sessionStateOpen, sessionStateClose:
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "r":
		m.loading = true
		m.err = nil

		return m, m.loadCmd()
	case "o":
		if m.metrics == nil {
			return m.enterForm(sessionStateOpen, "Opening float", "Cash placed in the drawer")
		}
	case "c":
		if m.metrics != nil {
			return m.enterForm(sessionStateClose, "Counted cash", "Physical cash in the drawer now")
		}
	}

	return m, nil
}

func (m SessionModel) enterForm(state sessionState, title, desc string) (tea.Model, tea.Cmd) {
	*m.input = sessionInput{}
	m.closed = nil
	m.err = nil

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title(title).
				Description(desc).
				Placeholder("0.00").
				Value(&m.input.amount).
				Validate(validateAmount),
			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.input.notes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = state

	return m, m.form.Init()
}

func (m SessionModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = sessionStateView
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == sessionStateOpen {
		return m, m.openCmd()
	}

	return m, m.closeCmd()
}

func (m SessionModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading session...")
	}

	var sections []string

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)), "")
	}

	if m.closed != nil {
		sections = append(sections, m.viewClosed(), "")
	}

	if m.metrics == nil {
		sections = append(sections, faintStyle.Render("No cash session is open."))
	} else {
		sections = append(sections, m.viewMetrics())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m SessionModel) viewMetrics() string {
	mt := m.metrics

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Open session"),
		fmt.Sprintf("Opened:          %s", FormatTime(mt.OpenedAt)),
		fmt.Sprintf("Opening float:   %s", FormatAmount(mt.OpeningBalance)),
		fmt.Sprintf("Revenue:         %s", FormatAmount(mt.Revenue)),
		fmt.Sprintf("Cash sales:      %s", FormatAmount(mt.CashSales)),
		fmt.Sprintf("Rider cash net:  %s", FormatAmount(mt.NetSettlements)),
		fmt.Sprintf("Payouts:         %s", FormatAmount(mt.Payouts)),
		fmt.Sprintf("Adjustments:     %s", FormatAmount(mt.Adjustments)),
		"",
		fmt.Sprintf("Expected cash:   %s", activeStyle(FormatAmount(mt.ExpectedCash))),
		faintStyle.Render(fmt.Sprintf("%d ledger entries", mt.EntryCount)),
	)
}

func (m SessionModel) viewClosed() string {
	s := m.closed

	return lipgloss.JoinVertical(lipgloss.Left,
		okStyle.Bold(true).Render("Session closed"),
		fmt.Sprintf("Expected: %s", FormatAmount(*s.ExpectedBalance)),
		fmt.Sprintf("Counted:  %s", FormatAmount(*s.ActualBalance)),
		fmt.Sprintf("Variance: %s", FormatVariance(*s.Variance)),
	)
}

type sessionLoadedMsg struct {
	metrics *cashsession.Metrics
	err     error
}

func (m SessionModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		mt, err := m.mgr.GetSessionMetrics(ctx, m.operator.RestaurantID)
		if errors.Is(err, ledger.ErrNotFound) {
			return sessionLoadedMsg{}
		}

		return sessionLoadedMsg{metrics: mt, err: err}
	}
}

type sessionSavedMsg struct {
	closed *cashsession.Session
	err    error
}

func (m SessionModel) openCmd() tea.Cmd {
	amount, _ := parseAmount(m.input.amount)
	notes := m.input.notes

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.mgr.Open(ctx, cashsession.OpenParams{
			RestaurantID:   m.operator.RestaurantID,
			StaffID:        m.operator.StaffID,
			OpeningBalance: amount,
			Notes:          notes,
		})

		return sessionSavedMsg{err: err}
	}
}

func (m SessionModel) closeCmd() tea.Cmd {
	amount, _ := parseAmount(m.input.amount)
	notes := m.input.notes
	sessionID := m.metrics.SessionID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.mgr.Close(ctx, cashsession.CloseParams{
			SessionID:     sessionID,
			StaffID:       m.operator.StaffID,
			ActualBalance: amount,
			Notes:         notes,
		})

		return sessionSavedMsg{closed: s, err: err}
	}
}
