package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tillbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	sessionStore "github.com/MrJamesThe3rd/tillbook/internal/cashsession/store"
	"github.com/MrJamesThe3rd/tillbook/internal/config"
	"github.com/MrJamesThe3rd/tillbook/internal/database"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tillbook/internal/ledger/store"
	orderStore "github.com/MrJamesThe3rd/tillbook/internal/order/store"
	"github.com/MrJamesThe3rd/tillbook/internal/report"
	reportStore "github.com/MrJamesThe3rd/tillbook/internal/report/store"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
	shiftStore "github.com/MrJamesThe3rd/tillbook/internal/ridershift/store"
)

type model struct {
	ledgerService  *ledger.Service
	sessionManager *cashsession.Manager
	shiftManager   *ridershift.Manager
	reports        *report.Generator
	archiver       *report.Archiver
	format         *report.Formatter
	operator       view.Operator

	currentView View

	sessionView view.SessionModel
	shiftsView  view.ShiftsModel
	zReportView view.ZReportModel
	ledgerView  view.LedgerModel
}

type View int

const (
	ViewMenu    View = 0
	ViewSession View = 1
	ViewShifts  View = 2
	ViewZReport View = 3
	ViewLedger  View = 4
)

func initialModel() model {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	restaurantID, staffID, err := cfg.OperatorIDs()
	if err != nil {
		slog.Error("operator is not configured", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	format := report.NewFormatter(cfg.Archive.Language)
	archiver := report.NewArchiver(report.NewDirSink(cfg.Archive.Dir), cfg.Archive.Prefix, format)

	if cfg.Archive.Bucket != "" {
		s3Sink, err := report.DialS3(context.Background(), report.S3Config{
			Bucket:    cfg.Archive.Bucket,
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
		})
		if err != nil {
			slog.Error("failed to connect to archive", "error", err)
			os.Exit(1)
		}

		archiver = report.NewArchiver(s3Sink, cfg.Archive.Prefix, format)
	}

	ledgerSvc := ledger.NewService(ledgerStore.New(db), orderStore.New(db))
	sessionMgr := cashsession.NewManager(sessionStore.New(db), ledgerSvc)
	shiftMgr := ridershift.NewManager(shiftStore.New(db), ledgerSvc)
	reports := report.NewGenerator(reportStore.New(db), nil)
	op := view.Operator{RestaurantID: restaurantID, StaffID: staffID}

	return model{
		ledgerService:  ledgerSvc,
		sessionManager: sessionMgr,
		shiftManager:   shiftMgr,
		reports:        reports,
		archiver:       archiver,
		format:         format,
		operator:       op,
		currentView:    ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewSession
				m.sessionView = view.NewSessionModel(m.sessionManager, m.operator)

				return m, m.sessionView.Init()
			case "2":
				m.currentView = ViewShifts
				m.shiftsView = view.NewShiftsModel(m.shiftManager, m.operator)

				return m, m.shiftsView.Init()
			case "3":
				m.currentView = ViewZReport
				m.zReportView = view.NewZReportModel(m.sessionManager, m.reports, m.archiver, m.format, m.operator)

				return m, m.zReportView.Init()
			case "4":
				m.currentView = ViewLedger
				m.ledgerView = view.NewLedgerModel(m.ledgerService, m.operator)

				return m, m.ledgerView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewSession:
		var newModel tea.Model
		newModel, cmd = m.sessionView.Update(msg)
		m.sessionView = newModel.(view.SessionModel)
	case ViewShifts:
		var newModel tea.Model
		newModel, cmd = m.shiftsView.Update(msg)
		m.shiftsView = newModel.(view.ShiftsModel)
	case ViewZReport:
		var newModel tea.Model
		newModel, cmd = m.zReportView.Update(msg)
		m.zReportView = newModel.(view.ZReportModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	}

	return m, cmd
}

func (m model) current() view.View {
	switch m.currentView {
	case ViewSession:
		return m.sessionView
	case ViewShifts:
		return m.shiftsView
	case ViewZReport:
		return m.zReportView
	case ViewLedger:
		return m.ledgerView
	}

	return nil
}

func (m model) View() string {
	v := m.current()
	if v == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			"Tillbook\n\n" +
				"1. Cash Session\n" +
				"2. Rider Shifts\n" +
				"3. Z-Report\n" +
				"4. Ledger\n\n" +
				"q. Quit",
		)
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(v.ShortHelp())
	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(v.Title())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), help)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
