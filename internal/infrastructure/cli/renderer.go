package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/budgetq/internal/app"
	"github.com/doeshing/budgetq/internal/application/query"
	"github.com/doeshing/budgetq/internal/application/visual"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/infrastructure/cli/helpers"
)

const msgProcessing = "Processing your query..."

func runAsk(cmd *cobra.Command, container *app.Container, text string, opts askOptions) error {
	ctx, cancel := opts.requestContext(cmd.Context())
	defer cancel()
	if err := applyVisualization(container, opts.visualization); err != nil {
		return err
	}

	container.Session.Lifecycle.SetQueryText(text)
	task, err := container.Session.Submit(ctx)
	if err != nil {
		return err
	}
	return finishTask(cmd, container, task, opts)
}

func runRerun(cmd *cobra.Command, container *app.Container, id string, opts askOptions) error {
	if err := applyVisualization(container, opts.visualization); err != nil {
		return err
	}
	ctx, cancel := opts.requestContext(cmd.Context())
	defer cancel()
	task, err := container.Session.Rerun(ctx, id)
	if err != nil {
		return err
	}
	return finishTask(cmd, container, task, opts)
}

// requestContext applies the --timeout override, if any.
func (o askOptions) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(parent, o.timeout)
	}
	return context.WithCancel(parent)
}

func applyVisualization(container *app.Container, raw string) error {
	if raw == "" {
		return nil
	}
	mode, ok := domain.ParseVisualizationMode(raw)
	if !ok {
		return fmt.Errorf("unknown visualization %q (bar|line|pie|doughnut)", raw)
	}
	container.Session.Lifecycle.SetVisualizationMode(mode)
	return nil
}

// finishTask waits for the task behind a spinner and renders the lifecycle
// state it left behind.
func finishTask(cmd *cobra.Command, container *app.Container, task *query.Task, opts askOptions) error {
	NewSpinner(cmd.ErrOrStderr(), msgProcessing).Until(task.Done())

	out := cmd.OutOrStdout()
	switch task.Outcome() {
	case query.OutcomeDiscarded:
		fmt.Fprintln(out, "Response discarded: a newer query replaced it.")
		return nil
	case query.OutcomeFailed:
		helpers.NewPrinter(out).State(container.Session.Lifecycle.State())
		return fmt.Errorf("query failed: %w", task.Err())
	}

	state := container.Session.Lifecycle.State()
	helpers.NewPrinter(out).State(state)
	if state.Results == nil {
		return nil
	}

	if opts.chartOut != "" {
		format := chartFormat(container, opts)
		if err := writeChart(container, *state.Results, state.Visualization, opts.chartOut, format); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nChart written to %s\n", opts.chartOut)
	}

	if opts.copy {
		if err := copyInsights(container, *state.Results); err != nil {
			helpers.PrintWarnings(cmd.ErrOrStderr(), []string{err.Error()})
		} else {
			fmt.Fprintln(out, "Insights copied to clipboard.")
		}
	}
	return nil
}

func chartFormat(container *app.Container, opts askOptions) domain.ChartFormat {
	switch {
	case strings.EqualFold(opts.format, string(domain.ChartFormatSVG)):
		return domain.ChartFormatSVG
	case strings.EqualFold(opts.format, string(domain.ChartFormatPNG)):
		return domain.ChartFormatPNG
	}
	switch strings.ToLower(filepath.Ext(opts.chartOut)) {
	case ".svg":
		return domain.ChartFormatSVG
	case ".png":
		return domain.ChartFormatPNG
	}
	return container.Config.GetChartFormat()
}

func writeChart(container *app.Container, payload domain.ResultPayload, mode domain.VisualizationMode, path string, format domain.ChartFormat) error {
	pres := visual.Present(payload, mode)
	if pres.NoData {
		return domain.ErrNoChartData
	}
	if container.Renderer == nil {
		return fmt.Errorf("chart renderer unavailable")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := container.Renderer.Render(f, pres.Chart, pres.Mode, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s chart: %w", pres.Mode, err)
	}
	return f.Close()
}

func copyInsights(container *app.Container, payload domain.ResultPayload) error {
	if container.Clipboard == nil || !container.Clipboard.Enabled() {
		return fmt.Errorf("clipboard unavailable")
	}
	if strings.TrimSpace(payload.Insights) == "" {
		return fmt.Errorf("no insights to copy")
	}
	return container.Clipboard.Copy(payload.Insights)
}
