// Package tui implements the interactive dashboard viewer.
package tui

import (
	"github.com/Veraticus/ledgerflow/internal/report"
	"github.com/Veraticus/ledgerflow/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// Tab identifies one page of the viewer.
type Tab int

// Viewer pages, in display order.
const (
	TabOverview Tab = iota
	TabMonthly
	TabBreakdowns
	TabAnomalies
)

var tabTitles = [...]string{
	TabOverview:   "Overview",
	TabMonthly:    "Monthly",
	TabBreakdowns: "Breakdowns",
	TabAnomalies:  "Anomalies",
}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabTitles) {
		return "Unknown"
	}
	return tabTitles[t]
}

// chromeHeight is the number of lines used by the title, tabs and footer.
const chromeHeight = 9

const minTableHeight = 3

// Model is the bubbletea model of the dashboard viewer.
type Model struct {
	dashboard *report.Dashboard
	keys      KeyMap
	help      help.Model
	theme     themes.Theme
	tables    []table.Model
	active    Tab
	width     int
	height    int
}

// Option configures a Model.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(t themes.Theme) Option {
	return func(m *Model) {
		m.theme = t
	}
}

// WithKeyMap overrides the default key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) {
		m.keys = k
	}
}

// NewModel builds a viewer over a finished dashboard.
func NewModel(d *report.Dashboard, opts ...Option) Model {
	m := Model{
		dashboard: d,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		theme:     themes.Default,
		width:     100,
		height:    30,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.tables = []table.Model{
		m.newTable(overviewColumns, overviewRows(d)),
		m.newTable(monthlyColumns, monthlyRows(d)),
		m.newTable(breakdownColumns, breakdownRows(d)),
		m.newTable(anomalyColumns, anomalyRows(d)),
	}
	m.resize()
	m.focus()
	return m
}

func (m Model) newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = m.theme.Header
	s.Cell = m.theme.Cell
	s.Selected = m.theme.Selected
	t.SetStyles(s)
	return t
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := &m.tables[m.active]

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keys.NextTab):
		m.active = (m.active + 1) % Tab(len(m.tables))
		m.focus()
	case key.Matches(msg, m.keys.PrevTab):
		m.active = (m.active + Tab(len(m.tables)) - 1) % Tab(len(m.tables))
		m.focus()
	case len(t.Rows()) == 0:
		// Nothing to move through.
	case key.Matches(msg, m.keys.Up):
		t.MoveUp(1)
	case key.Matches(msg, m.keys.Down):
		t.MoveDown(1)
	case key.Matches(msg, m.keys.PageUp):
		t.MoveUp(t.Height())
	case key.Matches(msg, m.keys.PageDown):
		t.MoveDown(t.Height())
	case key.Matches(msg, m.keys.Top):
		t.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		t.GotoBottom()
	}
	return m, nil
}

func (m *Model) focus() {
	for i := range m.tables {
		if Tab(i) == m.active {
			m.tables[i].Focus()
		} else {
			m.tables[i].Blur()
		}
	}
}

func (m *Model) resize() {
	h := m.height - chromeHeight - len(m.dashboard.Alerts)
	if m.help.ShowAll {
		h -= 3
	}
	if h < minTableHeight {
		h = minTableHeight
	}
	for i := range m.tables {
		m.tables[i].SetHeight(h)
	}
	m.help.Width = m.width
}

// Active returns the tab currently shown.
func (m Model) Active() Tab {
	return m.active
}

// Cursor returns the selected row of the active tab.
func (m Model) Cursor() int {
	return m.tables[m.active].Cursor()
}

// Rows returns the rows of the given tab.
func (m Model) Rows(t Tab) []table.Row {
	return m.tables[t].Rows()
}
