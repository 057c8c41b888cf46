package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/budgetq/internal/app"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/infrastructure/cli/helpers"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd, container, domain.DefaultHistoryLimit)
		},
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryShowCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
		newHistoryRemoteCommand(container),
		newHistoryFetchCommand(container),
	)

	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent queries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd, container, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show (0 for all)")
	return cmd
}

func newHistoryShowCommand(container *app.Container) *cobra.Command {
	var viz string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the stored result of a past query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistoryEntry(cmd, container, args[0], viz)
		},
	}

	cmd.Flags().StringVarP(&viz, "viz", "v", "", "Visualization mode (bar|line|pie|doughnut)")
	return cmd
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearHistory(cmd, container, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportHistory(cmd, container, args[0])
		},
	}
}

func newHistoryRemoteCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "remote",
		Short: "List the query history kept by the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Gateway == nil {
				return errors.New(ErrGatewayUnavailable)
			}
			if err := requireToken(container); err != nil {
				return err
			}
			records, err := container.Gateway.History(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch service history: %w", err)
			}
			helpers.NewPrinter(cmd.OutOrStdout()).Records(records)
			return nil
		},
	}
}

func newHistoryFetchCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <query-id>",
		Short: "Fetch one query record from the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Gateway == nil {
				return errors.New(ErrGatewayUnavailable)
			}
			record, err := container.Gateway.QueryDetails(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch query %s: %w", args[0], err)
			}
			helpers.NewPrinter(cmd.OutOrStdout()).Fields(record)
			return nil
		},
	}
}

func listHistoryEntries(cmd *cobra.Command, container *app.Container, limit int) error {
	store := container.Session.History
	entries := store.Entries()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	helpers.NewPrinter(cmd.OutOrStdout()).History(entries, store.SelectedID(), time.Now())
	return nil
}

func showHistoryEntry(cmd *cobra.Command, container *app.Container, id, viz string) error {
	store := container.Session.History
	entry, ok := store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrHistoryEntryNotFound, id)
	}
	store.Select(id)

	mode := container.Session.Lifecycle.State().Visualization
	if viz != "" {
		parsed, valid := domain.ParseVisualizationMode(viz)
		if !valid {
			return fmt.Errorf("unknown visualization %q (bar|line|pie|doughnut)", viz)
		}
		mode = parsed
	}
	helpers.NewPrinter(cmd.OutOrStdout()).Entry(entry, mode, time.Now())
	return nil
}

func clearHistory(cmd *cobra.Command, container *app.Container, yes bool) error {
	out := cmd.OutOrStdout()
	if !yes && container.Prompter != nil && container.Prompter.Enabled() {
		confirmed, err := container.Prompter.Confirm(fmt.Sprintf("Delete %d history entries?", container.Session.History.Len()))
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(out, MsgClearCancelled)
			return nil
		}
	}

	if err := container.Session.ClearHistory(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintln(out, MsgHistoryCleared)
	return nil
}

func exportHistory(cmd *cobra.Command, container *app.Container, path string) error {
	if container.HistoryRepo == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}
	if err := container.HistoryRepo.ExportJSON(path); err != nil {
		return fmt.Errorf("failed to export history to %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "History exported to %s\n", path)
	return nil
}
