package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/budgetq/internal/app"
	"github.com/doeshing/budgetq/internal/infrastructure/cli/commands"
	"github.com/doeshing/budgetq/internal/infrastructure/tui"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.Prompter = NewPrompter(nil, nil)
	container.Clipboard = NewClipboard()
	return NewRootCommand(container), nil
}

// NewRootCommand builds the command tree around an existing container.
func NewRootCommand(container *app.Container) *cobra.Command {
	root := &cobra.Command{
		Use:   "budgetq [question]",
		Short: "budgetq - ask budget questions from the terminal",
		Long:  "budgetq sends natural-language budget questions to the query service and renders the insights, parameters, data and charts it returns.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runAsk(cmd, container, strings.Join(args, " "), askOptions{})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	historyCmd := commands.NewHistoryCommand(container)
	historyCmd.AddCommand(newRerunCommand(container))

	root.AddCommand(
		newAskCommand(container),
		newTUICommand(container),
		historyCmd,
		commands.NewExamplesCommand(),
		commands.NewLoginCommand(container),
		commands.NewRegisterCommand(container),
		commands.NewLogoutCommand(container),
		commands.NewAuthCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewConfigCommand(container),
		commands.NewVersionCommand(),
	)
	return root
}

func newAskCommand(container *app.Container) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the query service a budget question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, container, strings.Join(args, " "), opts)
		},
	}

	addResultFlags(cmd, &opts)
	return cmd
}

func newRerunCommand(container *app.Container) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "rerun <id>",
		Short: "Submit a history entry's question again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRerun(cmd, container, args[0], opts)
		},
	}

	addResultFlags(cmd, &opts)
	return cmd
}

func newTUICommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive query view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), container.Session)
		},
	}
}

func addResultFlags(cmd *cobra.Command, opts *askOptions) {
	cmd.Flags().StringVarP(&opts.visualization, "viz", "v", "", "Visualization mode (bar|line|pie|doughnut)")
	cmd.Flags().StringVarP(&opts.chartOut, "chart-out", "o", "", "Write the chart to this file")
	cmd.Flags().StringVar(&opts.format, "format", "", "Chart file format (png|svg, default from extension or config)")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the insights to the clipboard")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Override request timeout (default from config)")
}

type askOptions struct {
	visualization string
	chartOut      string
	format        string
	copy          bool
	timeout       time.Duration
}
