package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	"github.com/MrJamesThe3rd/tillbook/internal/report"
)

type zState int

const (
	zStateSessions zState = iota
	zStateReport
	zStateArchiving
)

const archiveTimeout = 2 * time.Minute

type ZReportModel struct {
	CommonModel
	sessions *cashsession.Manager
	gen      *report.Generator
	archiver *report.Archiver
	format   *report.Formatter
	operator Operator

	state    zState
	table    table.Model
	list     []*cashsession.Session
	report   *report.ZReport
	archived *report.Archived
	spinner  spinner.Model
	loading  bool
	err      error
}

func NewZReportModel(
	sessions *cashsession.Manager,
	gen *report.Generator,
	archiver *report.Archiver,
	f *report.Formatter,
	op Operator,
) ZReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ZReportModel{
		sessions: sessions,
		gen:      gen,
		archiver: archiver,
		format:   f,
		operator: op,
		table: newTable([]table.Column{
			{Title: "Opened", Width: 17},
			{Title: "Closed", Width: 17},
			{Title: "Status", Width: 8},
			{Title: "Variance", Width: 10},
		}),
		spinner: s,
		loading: true,
	}
}

func (m ZReportModel) Title() string { return "Z-Report" }

func (m ZReportModel) ShortHelp() string {
	switch m.state {
	case zStateReport:
		return "Esc: sessions | a: archive"
	case zStateArchiving:
		return "Archiving..."
	}

	return "Esc: back | enter: build report | r: refresh"
}

func (m ZReportModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ZReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case zSessionsMsg:
		m.loading = false
		m.err = msg.err
		m.list = msg.sessions
		m.refreshTable()

		return m, nil

	case zReportMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.report = msg.report
		m.archived = nil
		m.state = zStateReport

		return m, nil

	case zArchivedMsg:
		m.state = zStateReport
		m.err = msg.err
		m.archived = msg.archived

		return m, nil
	}

	switch m.state {
	case zStateArchiving:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case zStateReport:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = zStateSessions
				m.report = nil
				m.err = nil

				return m, nil
			case "a":
				m.state = zStateArchiving
				m.err = nil

				return m, tea.Batch(m.spinner.Tick, m.archiveCmd())
			}
		}

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.list) {
				m.loading = true
				return m, m.reportCmd(m.list[idx])
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *ZReportModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.list))
	for _, s := range m.list {
		closed, variance := "-", "-"
		if s.ClosedAt != nil {
			closed = FormatTime(*s.ClosedAt)
		}

		if s.Variance != nil {
			variance = FormatAmount(*s.Variance)
		}

		rows = append(rows, table.Row{FormatTime(s.OpenedAt), closed, string(s.Status), variance})
	}

	m.table.SetRows(rows)
}

func (m ZReportModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	}

	var content string

	switch m.state {
	case zStateSessions:
		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render("Recent cash sessions"),
			boxed(m.table),
		)
	case zStateReport:
		content = m.viewReport()
	case zStateArchiving:
		content = fmt.Sprintf("%s Rendering and uploading report...", m.spinner.View())
	}

	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ZReportModel) viewReport() string {
	r := m.report
	amt := m.format.Amount

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", titleStyle.Render("Z-Report"))
	fmt.Fprintf(&b, "%s  to  %s   (%s)\n\n", FormatTime(r.From), FormatTime(r.To), r.Status)

	fmt.Fprintf(&b, "Orders:          %s\n", m.format.Count(r.Sales.OrderCount))
	fmt.Fprintf(&b, "Gross sales:     %s\n", amt(r.Sales.Gross))
	fmt.Fprintf(&b, "Tax:             %s\n", amt(r.Sales.Tax))
	fmt.Fprintf(&b, "Net sales:       %s\n", amt(r.Sales.Net))
	fmt.Fprintf(&b, "Service charge:  %s\n", amt(r.Sales.ServiceCharge))
	fmt.Fprintf(&b, "Delivery fees:   %s\n", amt(r.Sales.DeliveryFees))
	fmt.Fprintf(&b, "Discounts:       %s\n\n", amt(r.Sales.Discounts))

	if len(r.Payments) > 0 {
		b.WriteString(activeStyle("Payments") + "\n")

		for _, p := range r.Payments {
			fmt.Fprintf(&b, "  %-14s %4d  %s\n", p.Method, p.Count, amt(p.Amount))
		}

		b.WriteString("\n")
	}

	if len(r.Categories) > 0 {
		b.WriteString(activeStyle("Categories") + "\n")

		for _, c := range r.Categories {
			fmt.Fprintf(&b, "  %-14s %4d  %s\n", c.Category, c.Quantity, amt(c.Revenue))
		}

		b.WriteString("\n")
	}

	cf := r.CashFlow
	b.WriteString(activeStyle("Cash drawer") + "\n")
	fmt.Fprintf(&b, "  Opening float:  %s\n", amt(cf.OpeningFloat))
	fmt.Fprintf(&b, "  Cash sales:     %s\n", amt(cf.CashSales))
	fmt.Fprintf(&b, "  Rider cash net: %s\n", amt(cf.NetSettlements))
	fmt.Fprintf(&b, "  Payouts:        %s\n", amt(cf.Payouts))
	fmt.Fprintf(&b, "  Adjustments:    %s\n", amt(cf.Adjustments))
	fmt.Fprintf(&b, "  Expected:       %s\n", amt(cf.Expected))

	if cf.Actual != nil {
		fmt.Fprintf(&b, "  Counted:        %s\n", amt(*cf.Actual))
	}

	if cf.Variance != nil {
		fmt.Fprintf(&b, "  Variance:       %s\n", FormatVariance(*cf.Variance))
	}

	if m.archived != nil {
		fmt.Fprintf(&b, "\n%s %s\n", okStyle.Render("Archived:"), m.archived.PDFKey)
	}

	return b.String()
}

type zSessionsMsg struct {
	sessions []*cashsession.Session
	err      error
}

func (m ZReportModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		list, err := m.sessions.List(ctx, m.operator.RestaurantID, 30)

		return zSessionsMsg{sessions: list, err: err}
	}
}

type zReportMsg struct {
	report *report.ZReport
	err    error
}

func (m ZReportModel) reportCmd(s *cashsession.Session) tea.Cmd {
	id := s.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		r, err := m.gen.GetZReport(ctx, id)

		return zReportMsg{report: r, err: err}
	}
}

type zArchivedMsg struct {
	archived *report.Archived
	err      error
}

func (m ZReportModel) archiveCmd() tea.Cmd {
	r := m.report

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		out, err := m.archiver.Archive(ctx, r)

		return zArchivedMsg{archived: out, err: err}
	}
}
