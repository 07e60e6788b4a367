package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
)

type shiftsState int

const (
	shiftsStateBrowse shiftsState = iota
	shiftsStateOpen
	shiftsStateClose
)

type shiftInput struct {
	rider  string
	amount string
	notes  string
}

type ShiftsModel struct {
	CommonModel
	mgr      *ridershift.Manager
	operator Operator

	state   shiftsState
	table   table.Model
	shifts  []*ridershift.Shift
	metrics *ridershift.Metrics
	closed  *ridershift.Shift
	form    *huh.Form
	input   *shiftInput
	loading bool
	err     error
}

func NewShiftsModel(mgr *ridershift.Manager, op Operator) ShiftsModel {
	return ShiftsModel{
		mgr:      mgr,
		operator: op,
		table: newTable([]table.Column{
			{Title: "Rider", Width: 38},
			{Title: "Opened", Width: 17},
			{Title: "Float", Width: 10},
		}),
		input:   &shiftInput{},
		loading: true,
	}
}

func (m ShiftsModel) Title() string { return "Rider Shifts" }

func (m ShiftsModel) ShortHelp() string {
	if m.state != shiftsStateBrowse {
		return "Esc: cancel"
	}

	return "Esc: back | n: new shift | enter: metrics | c: close shift | r: refresh"
}

func (m ShiftsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ShiftsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case shiftsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.shifts = msg.shifts
		m.refreshTable()

		return m, nil

	case shiftMetricsMsg:
		m.metrics = msg.metrics
		if msg.err != nil {
			m.err = msg.err
		}

		return m, nil

	case shiftSavedMsg:
		m.state = shiftsStateBrowse
		m.form = nil
		m.err = msg.err
		m.closed = msg.closed
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	if m.state != shiftsStateBrowse {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			m.err = nil

			return m, m.loadCmd()
		case "n":
			return m.enterOpenForm()
		case "c":
			if s := m.selected(); s != nil {
				return m.enterCloseForm()
			}
		case "enter":
			if s := m.selected(); s != nil {
				return m, m.metricsCmd(s.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ShiftsModel) selected() *ridershift.Shift {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.shifts) {
		return nil
	}

	return m.shifts[idx]
}

func (m ShiftsModel) enterOpenForm() (tea.Model, tea.Cmd) {
	*m.input = shiftInput{}
	m.closed = nil
	m.err = nil

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("rider").
				Title("Rider ID").
				Value(&m.input.rider).
				Validate(func(s string) error {
					if _, err := uuid.Parse(strings.TrimSpace(s)); err != nil {
						return errors.New("not a valid rider ID")
					}

					return nil
				}),
			huh.NewInput().
				Key("amount").
				Title("Opening float").
				Placeholder("0.00").
				Value(&m.input.amount).
				Validate(validateAmount),
			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.input.notes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = shiftsStateOpen
	m.table.Blur()

	return m, m.form.Init()
}

func (m ShiftsModel) enterCloseForm() (tea.Model, tea.Cmd) {
	*m.input = shiftInput{}
	m.closed = nil
	m.err = nil

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Cash handed in").
				Description("Everything the rider returns, float included").
				Placeholder("0.00").
				Value(&m.input.amount).
				Validate(validateAmount),
			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.input.notes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = shiftsStateClose
	m.table.Blur()

	return m, m.form.Init()
}

func (m ShiftsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = shiftsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == shiftsStateOpen {
		return m, m.openCmd()
	}

	return m, m.closeCmd()
}

func (m *ShiftsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.shifts))
	for _, s := range m.shifts {
		rows = append(rows, table.Row{
			s.RiderID.String(),
			FormatTime(s.OpenedAt),
			FormatAmount(s.OpeningFloat),
		})
	}

	m.table.SetRows(rows)
}

func (m ShiftsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading shifts...")
	}

	header := fmt.Sprintf("Open shifts: %s", activeStyle(fmt.Sprint(len(m.shifts))))
	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table),
	)

	var side string

	switch {
	case m.form != nil:
		side = m.form.View()
	case m.closed != nil:
		side = m.viewClosed()
	case m.metrics != nil:
		side = m.viewMetrics()
	}

	if side != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(side))
	}

	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ShiftsModel) viewMetrics() string {
	mt := m.metrics

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Shift metrics"),
		fmt.Sprintf("Delivered:     %d (%s)", mt.DeliveredCount, FormatAmount(mt.DeliveredTotal)),
		fmt.Sprintf("On the road:   %d (%s)", mt.ActiveCount, FormatAmount(mt.ActiveTotal)),
		fmt.Sprintf("Collected:     %s", FormatAmount(mt.Collected)),
		fmt.Sprintf("Expected cash: %s", activeStyle(FormatAmount(mt.ExpectedCash))),
		fmt.Sprintf("Rider owes:    %s", FormatAmount(mt.RiderBalance)),
	)
}

func (m ShiftsModel) viewClosed() string {
	s := m.closed

	return lipgloss.JoinVertical(lipgloss.Left,
		okStyle.Bold(true).Render("Shift closed"),
		fmt.Sprintf("Expected:   %s", FormatAmount(*s.ExpectedCash)),
		fmt.Sprintf("Received:   %s", FormatAmount(*s.ClosingCashReceived)),
		fmt.Sprintf("Difference: %s", FormatVariance(*s.CashDifference)),
	)
}

type shiftsLoadedMsg struct {
	shifts []*ridershift.Shift
	err    error
}

func (m ShiftsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		shifts, err := m.mgr.ListActiveShifts(ctx, m.operator.RestaurantID)

		return shiftsLoadedMsg{shifts: shifts, err: err}
	}
}

type shiftMetricsMsg struct {
	metrics *ridershift.Metrics
	err     error
}

func (m ShiftsModel) metricsCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		mt, err := m.mgr.GetShiftMetrics(ctx, id)

		return shiftMetricsMsg{metrics: mt, err: err}
	}
}

type shiftSavedMsg struct {
	closed *ridershift.Shift
	err    error
}

func (m ShiftsModel) openCmd() tea.Cmd {
	rider, _ := uuid.Parse(strings.TrimSpace(m.input.rider))
	amount, _ := parseAmount(m.input.amount)
	notes := m.input.notes

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.mgr.Open(ctx, ridershift.OpenParams{
			RestaurantID: m.operator.RestaurantID,
			RiderID:      rider,
			StaffID:      m.operator.StaffID,
			OpeningFloat: amount,
			Notes:        notes,
		})

		return shiftSavedMsg{err: err}
	}
}

func (m ShiftsModel) closeCmd() tea.Cmd {
	s := m.selected()
	if s == nil {
		return nil
	}

	shiftID := s.ID
	amount, _ := parseAmount(m.input.amount)
	notes := m.input.notes

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		closed, err := m.mgr.Close(ctx, ridershift.CloseParams{
			ShiftID:     shiftID,
			StaffID:     m.operator.StaffID,
			ClosingCash: amount,
			Notes:       notes,
		})

		return shiftSavedMsg{closed: closed, err: err}
	}
}
