// Package tui is the interactive terminal view over a query session.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	teatable "github.com/evertras/bubble-table/table"

	"github.com/doeshing/budgetq/internal/application/query"
	"github.com/doeshing/budgetq/internal/application/visual"
	"github.com/doeshing/budgetq/internal/domain"
)

const (
	tablePageSize  = 8
	maxColumnWidth = 30
	historyRows    = 6
	eventBuffer    = 16
)

type focusArea int

const (
	focusInput focusArea = iota
	focusHistory
)

type eventMsg struct {
	event query.Event
}

type taskDoneMsg struct {
	task *query.Task
}

// Model is the bubbletea model of the query screen.
type Model struct {
	ctx     context.Context
	session *query.Session
	events  <-chan query.Event

	input   textinput.Model
	spinner spinner.Model
	table   teatable.Model

	focus      focusArea
	historyIdx int
	exampleIdx int
	notice     string
	width      int
	now        func() time.Time
}

// New builds the model. events may be nil when no subscription is wanted.
func New(ctx context.Context, session *query.Session, events <-chan query.Event) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about the federal budget..."
	ti.CharLimit = 500
	ti.Width = 80
	ti.SetValue(session.Lifecycle.State().Text)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctx:     ctx,
		session: session,
		events:  events,
		input:   ti,
		spinner: sp,
		now:     time.Now,
	}
	m.refreshTable()
	return m
}

// Run opens the interactive view until the user quits.
func Run(ctx context.Context, session *query.Session) error {
	events, unsubscribe := session.Lifecycle.Subscribe(eventBuffer)
	defer unsubscribe()

	p := tea.NewProgram(New(ctx, session, events), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func waitForEvent(events <-chan query.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg{event: ev}
	}
}

func waitForTask(task *query.Task) tea.Cmd {
	return func() tea.Msg {
		<-task.Done()
		return taskDoneMsg{task: task}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-12)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		m.refreshTable()
		return m, waitForEvent(m.events)

	case taskDoneMsg:
		m.refreshTable()
		switch msg.task.Outcome() {
		case query.OutcomeSucceeded:
			m.historyIdx = 0
			m.notice = ""
		case query.OutcomeDiscarded:
			m.notice = "An older response was discarded."
		}
		return m, nil

	case spinner.TickMsg:
		if !m.session.Lifecycle.State().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		return m.toggleFocus(), nil
	case "ctrl+v":
		lc := m.session.Lifecycle
		lc.SetVisualizationMode(lc.State().Visualization.Next())
		return m, nil
	case "ctrl+e":
		return m.nextExample(), nil
	case "ctrl+l":
		m.session.Lifecycle.Clear()
		m.refreshTable()
		return m, nil
	}

	if m.focus == focusHistory {
		return m.handleHistoryKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.Lifecycle.SetQueryText(m.input.Value())
	return m, cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.session.History.Entries()
	visible := min(len(entries), historyRows)
	switch msg.String() {
	case "up", "k":
		if m.historyIdx > 0 {
			m.historyIdx--
		}
	case "down", "j":
		if m.historyIdx < visible-1 {
			m.historyIdx++
		}
	case "enter", "r":
		if m.historyIdx < visible {
			return m.rerun(entries[m.historyIdx].ID)
		}
	}
	return m, nil
}

func (m Model) toggleFocus() Model {
	if m.focus == focusInput {
		m.focus = focusHistory
		m.input.Blur()
		return m
	}
	m.focus = focusInput
	m.input.Focus()
	return m
}

func (m Model) nextExample() Model {
	if len(domain.ExampleQueries) == 0 {
		return m
	}
	example := domain.ExampleQueries[m.exampleIdx%len(domain.ExampleQueries)]
	m.exampleIdx++
	m.input.SetValue(example)
	m.input.CursorEnd()
	m.session.Lifecycle.SetQueryText(example)
	return m
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.session.Lifecycle.SetQueryText(m.input.Value())
	task, err := m.session.Submit(m.ctx)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, waitForTask(task))
}

func (m Model) rerun(id string) (tea.Model, tea.Cmd) {
	task, err := m.session.Rerun(m.ctx, id)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.input.SetValue(task.Text())
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, waitForTask(task))
}

// refreshTable rebuilds the data table from the current result.
func (m *Model) refreshTable() {
	state := m.session.Lifecycle.State()
	if state.Results == nil {
		m.table = teatable.New(nil)
		return
	}
	m.table = buildTable(visual.BuildTable(state.Results.Data))
}

// columnWidths measures each column in terminal cells, capped at maxColumnWidth.
func columnWidths(t visual.Table) []int {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], 4), maxColumnWidth)
	}
	return widths
}

func buildTable(t visual.Table) teatable.Model {
	widths := columnWidths(t)

	columns := make([]teatable.Column, len(t.Columns))
	for i, col := range t.Columns {
		columns[i] = teatable.NewColumn(col, col, widths[i])
	}

	rows := make([]teatable.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		data := teatable.RowData{}
		for i, cell := range row {
			data[t.Columns[i]] = cell
		}
		rows = append(rows, teatable.NewRow(data))
	}

	return teatable.New(columns).WithRows(rows).WithPageSize(tablePageSize)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	activeMode   = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("63")).Foreground(lipgloss.Color("231"))
	inactiveMode = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m Model) View() string {
	state := m.session.Lifecycle.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Budget Assistant"))
	b.WriteString("  ")
	b.WriteString(m.modeBar(state.Visualization))
	b.WriteString("\n\n")
	b.WriteString(m.inputView())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.resultView(state))
	b.WriteString("\n")
	b.WriteString(m.historyView())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter submit/rerun • tab switch pane • ctrl+v chart type • ctrl+e example • ctrl+l clear • esc quit"))
	return b.String()
}

func (m Model) modeBar(current domain.VisualizationMode) string {
	parts := make([]string, 0, len(domain.VisualizationModes))
	for _, mode := range domain.VisualizationModes {
		style := inactiveMode
		if mode == current {
			style = activeMode
		}
		parts = append(parts, style.Render(string(mode)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) inputView() string {
	border := lipgloss.Color("63")
	if m.focus == focusInput {
		border = lipgloss.Color("205")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(labelStyle.Render("Query: ") + m.input.View())
}

func (m Model) resultView(state domain.QueryState) string {
	switch state.Status() {
	case domain.StatusPending:
		return fmt.Sprintf("%s Processing your query...\n", m.spinner.View())
	case domain.StatusFailed:
		return errorStyle.Render("Error: "+state.Error) + "\n"
	case domain.StatusSucceeded:
		return m.presentationView(visual.Present(*state.Results, state.Visualization))
	default:
		var b strings.Builder
		b.WriteString(labelStyle.Render("Example queries"))
		b.WriteString("\n")
		for _, q := range domain.ExampleQueries {
			b.WriteString(mutedStyle.Render("  • " + q))
			b.WriteString("\n")
		}
		return b.String()
	}
}

func (m Model) presentationView(pres visual.Presentation) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(pres.Chart.Title))
	b.WriteString("\n")
	if pres.NoData {
		b.WriteString(mutedStyle.Render(pres.Message))
		b.WriteString("\n")
	} else {
		b.WriteString(chartView(pres))
		if pres.Malformed != nil {
			b.WriteString(errorStyle.Render(pres.Malformed.Error()))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Insights"))
	b.WriteString("\n")
	if pres.HasInsights() {
		b.WriteString(pres.Insights)
	} else {
		b.WriteString(mutedStyle.Render(visual.NoInsightsMessage))
	}
	b.WriteString("\n")

	if len(pres.Parameters) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Query parameters"))
		b.WriteString("\n")
		for _, p := range pres.Parameters {
			fmt.Fprintf(&b, "  %s: %s\n", p.Name, p.Value)
		}
	}

	if !pres.Table.Empty() {
		b.WriteString("\n")
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) historyView() string {
	entries := m.session.History.Entries()
	var b strings.Builder
	heading := "History"
	if m.focus == focusHistory {
		heading = "History (↑/↓, enter to rerun)"
	}
	b.WriteString(labelStyle.Render(heading))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString(mutedStyle.Render("No history yet."))
		b.WriteString("\n")
		return b.String()
	}

	selected := m.session.History.SelectedID()
	for i, entry := range entries {
		if i >= historyRows {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  … %d more", len(entries)-historyRows)))
			b.WriteString("\n")
			break
		}
		cursor := "  "
		if m.focus == focusHistory && i == m.historyIdx {
			cursor = "> "
		}
		marker := " "
		if entry.ID == selected {
			marker = "*"
		}
		line := fmt.Sprintf("%s%s %s  %s", cursor, marker, entry.Text, mutedStyle.Render(humanize.RelTime(entry.Timestamp, m.now(), "ago", "from now")))
		b.WriteString(line)
		b.WriteString("\n")
		if summary := entry.Summary(); summary != "" {
			b.WriteString(mutedStyle.Render("     " + summary))
			b.WriteString("\n")
		}
	}
	return b.String()
}
