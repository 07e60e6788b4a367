package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

var (
	scopeLabels = []string{"Drawer", "All accounts"}
	dateLabels  = []string{"Today", "Last 7 days", "All time"}
)

type LedgerModel struct {
	CommonModel
	svc      *ledger.Service
	operator Operator

	table   table.Model
	entries []*ledger.Entry
	balance decimal.Decimal

	scopeIdx int
	dateIdx  int

	loading bool
	err     error
}

func NewLedgerModel(svc *ledger.Service, op Operator) LedgerModel {
	return LedgerModel{
		svc:      svc,
		operator: op,
		table: newTable([]table.Column{
			{Title: "#", Width: 6},
			{Title: "Time", Width: 17},
			{Title: "Account", Width: 10},
			{Title: "Type", Width: 7},
			{Title: "Amount", Width: 10},
			{Title: "Reference", Width: 15},
			{Title: "Description", Width: 36},
		}),
		loading: true,
	}
}

func (m LedgerModel) Title() string { return "Ledger" }

func (m LedgerModel) ShortHelp() string {
	return "Esc: back | a: accounts | d: dates | r: refresh"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ledgerLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.entries = msg.entries
			m.balance = msg.balance
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			m.scopeIdx = (m.scopeIdx + 1) % len(scopeLabels)
			return m, m.loadCmd()
		case "d":
			m.dateIdx = (m.dateIdx + 1) % len(dateLabels)
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) filter() ledger.EntryFilter {
	f := ledger.EntryFilter{
		RestaurantID: m.operator.RestaurantID,
		HouseCash:    m.scopeIdx == 0,
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch m.dateIdx {
	case 0:
		f.Since = &today
	case 1:
		f.Since = new(today.AddDate(0, 0, -6))
	}

	return f
}

func accountLabel(e *ledger.Entry) string {
	switch {
	case e.AccountID == nil:
		return "drawer"
	case *e.AccountID == ledger.RevenueAccount:
		return "revenue"
	case *e.AccountID == ledger.ExpenseAccount:
		return "expense"
	case *e.AccountID == ledger.SafeAccount:
		return "safe"
	}

	return e.AccountID.String()[:8]
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			fmt.Sprint(e.Seq),
			FormatTime(e.CreatedAt),
			accountLabel(e),
			string(e.Type),
			FormatAmount(e.Amount),
			string(e.ReferenceType),
			e.Description,
		})
	}

	m.table.SetRows(rows)
}

func (m LedgerModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf(
		"Filter: [a] %s | [d] %s        Drawer balance: %s",
		activeStyle(scopeLabels[m.scopeIdx]),
		activeStyle(dateLabels[m.dateIdx]),
		activeStyle(FormatAmount(m.balance)),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table),
	))
}

type ledgerLoadedMsg struct {
	entries []*ledger.Entry
	balance decimal.Decimal
	err     error
}

func (m LedgerModel) loadCmd() tea.Cmd {
	filter := m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.svc.ListEntries(ctx, filter)
		if err != nil {
			return ledgerLoadedMsg{err: err}
		}

		balance, err := m.svc.GetBalance(ctx, m.operator.RestaurantID, nil)

		return ledgerLoadedMsg{entries: entries, balance: balance, err: err}
	}
}
