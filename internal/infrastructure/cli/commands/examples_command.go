package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/budgetq/internal/domain"
)

// NewExamplesCommand lists sample questions to get started with.
func NewExamplesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List example budget questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, q := range domain.ExampleQueries {
				fmt.Fprintf(out, "%d. %s\n", i+1, q)
			}
			fmt.Fprintln(out, "\nTry: budgetq ask \""+domain.ExampleQueries[0]+"\"")
			return nil
		},
	}
}
