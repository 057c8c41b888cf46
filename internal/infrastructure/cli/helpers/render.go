package helpers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/doeshing/budgetq/internal/application/visual"
	"github.com/doeshing/budgetq/internal/domain"
)

// Messages shared by text views.
const (
	MsgNoHistoryRecorded = "No history recorded yet."
	MsgNoRecords         = "No records."
)

// Printer renders query results as plain terminal text. Colour is enabled
// only when the writer is a terminal.
type Printer struct {
	out    io.Writer
	r      *lipgloss.Renderer
	title  lipgloss.Style
	label  lipgloss.Style
	muted  lipgloss.Style
	failed lipgloss.Style
	warn   lipgloss.Style
}

// NewPrinter binds styles to out.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:    out,
		r:      r,
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		label:  r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("241")),
		failed: r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// State prints a lifecycle snapshot: the query, its status and, depending on
// the status, the error or the result.
func (p *Printer) State(state domain.QueryState) {
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("Query:"), state.Text)
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("Status:"), state.Status())

	switch state.Status() {
	case domain.StatusFailed:
		fmt.Fprintf(p.out, "\n%s %s\n", p.failed.Render("Error:"), state.Error)
	case domain.StatusSucceeded:
		fmt.Fprintln(p.out)
		p.Presentation(visual.Present(*state.Results, state.Visualization))
	}
}

// Presentation prints insights, parameters, chart values and the data table.
func (p *Printer) Presentation(pres visual.Presentation) {
	fmt.Fprintln(p.out, p.title.Render(pres.Chart.Title))
	fmt.Fprintln(p.out)

	fmt.Fprintln(p.out, p.label.Render("Insights"))
	if pres.HasInsights() {
		fmt.Fprintln(p.out, pres.Insights)
	} else {
		fmt.Fprintln(p.out, p.muted.Render(visual.NoInsightsMessage))
	}

	if len(pres.Parameters) > 0 {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, p.label.Render("Query parameters"))
		for _, param := range pres.Parameters {
			fmt.Fprintf(p.out, "  %s: %s\n", param.Name, param.Value)
		}
	}

	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "%s (%s)\n", p.label.Render("Visualization"), pres.Mode)
	if pres.NoData {
		fmt.Fprintln(p.out, p.muted.Render(pres.Message))
		return
	}
	p.chartValues(pres.Chart)

	if pres.Malformed != nil {
		fmt.Fprintln(p.out, p.warn.Render("Warning: "+pres.Malformed.Error()))
	}

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.label.Render("Data"))
	p.Table(pres.Table.Columns, pres.Table.Rows)
}

func (p *Printer) chartValues(data domain.ChartData) {
	for _, series := range data.Series {
		fmt.Fprintf(p.out, "  %s\n", series.Label)
		width := 0
		for _, label := range data.Labels {
			width = max(width, lipgloss.Width(label))
		}
		for i, label := range data.Labels {
			if i >= len(series.Values) {
				break
			}
			fmt.Fprintf(p.out, "    %s  %s\n", PadRight(label, width), FormatAmount(series.Values[i]))
		}
	}
}

// Table prints rows under headers with a thin border.
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(p.out, p.muted.Render(MsgNoRecords))
		return
	}
	header := p.r.NewStyle().Bold(true).Padding(0, 1)
	cell := p.r.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == 0 {
				return header
			}
			return cell
		})
	fmt.Fprintln(p.out, t.Render())
}

// History prints entries newest first, marking the selected one.
func (p *Printer) History(entries []domain.HistoryEntry, selectedID string, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, MsgNoHistoryRecorded)
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		mark := ""
		if entry.ID == selectedID {
			mark = "*"
		}
		rows = append(rows, []string{mark, entry.ID, When(entry.Timestamp, now), entry.Text, entry.Summary()})
	}
	p.Table([]string{"", "ID", "When", "Query", "Summary"}, rows)
}

// Entry prints one history entry with its stored result.
func (p *Printer) Entry(entry domain.HistoryEntry, mode domain.VisualizationMode, now time.Time) {
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("ID:"), entry.ID)
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("When:"), When(entry.Timestamp, now))
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("Query:"), entry.Text)
	fmt.Fprintln(p.out)
	if entry.Results == nil {
		fmt.Fprintln(p.out, p.muted.Render(visual.NoDataMessage))
		return
	}
	p.Presentation(visual.Present(*entry.Results, mode))
}

// Records prints loosely-shaped service records as a table.
func (p *Printer) Records(records []domain.Fields) {
	t := visual.BuildTable(records)
	p.Table(t.Columns, t.Rows)
}

// Fields prints one object as aligned key/value lines.
func (p *Printer) Fields(fields domain.Fields) {
	width := 0
	for _, key := range fields.Keys() {
		width = max(width, lipgloss.Width(key))
	}
	for _, field := range fields {
		fmt.Fprintf(p.out, "%s  %s\n", PadRight(field.Key+":", width+1), domain.FormatValue(field.Value))
	}
}

// Health prints doctor checks as [STATUS] name - details.
func (p *Printer) Health(report domain.HealthReport) {
	for _, check := range report.Checks {
		status := "[" + strings.ToUpper(string(check.Status)) + "]"
		switch check.Status {
		case domain.HealthError:
			status = p.failed.Render(status)
		case domain.HealthWarn:
			status = p.warn.Render(status)
		}
		fmt.Fprintf(p.out, "%s %s - %s\n", status, check.Name, check.Details)
	}
}

// When formats a history timestamp with its relative age.
func When(ts, now time.Time) string {
	return fmt.Sprintf("%s (%s)", ts.Local().Format(domain.DisplayTimestampFormat), humanize.RelTime(ts, now, "ago", "from now"))
}

// PadRight pads s with spaces to width terminal cells.
func PadRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// FormatAmount groups thousands and keeps at most two decimals.
func FormatAmount(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}
