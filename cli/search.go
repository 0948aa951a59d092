package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tackle-labs/tacklebox/maintenance"
)

// NewSearchCmd creates the "search" subcommand group.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Build browser search queries",
	}
	cmd.AddCommand(newSearchQIDsCmd())
	return cmd
}

func newSearchQIDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qids <text…>",
		Short: "Turn pasted text into a qid: search query",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearchQIDs,
	}
}

func runSearchQIDs(cmd *cobra.Command, args []string) error {
	query := maintenance.BuildQIDQuery(strings.Join(args, " "))
	if query == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No question IDs found in the input.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), query)
	return nil
}
