package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewMenuCmd creates the "menu" subcommand.
func NewMenuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Load the manifest and render the toolbar menu tree",
		Args:  cobra.NoArgs,
		RunE:  runMenu,
	}

	addSessionFlag(cmd)
	cmd.Flags().String("tools", "", "Path to the tools manifest (overrides the session)")
	cmd.Flags().Bool("json", false, "Emit the per-record load report as JSON")

	return cmd
}

func runMenu(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	store, err := resolveStore(cmd, sess)
	if err != nil {
		return err
	}

	events, shutdown, err := setupTelemetry(ctx, sess)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(shutdown)

	tree, report, err := buildMenu(ctx, sess, store, events, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return exitError(exitRuntime, "encoding report: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), tree)
	fmt.Fprintf(cmd.OutOrStdout(), "\nLoaded %d of %d records (%d skipped)\n",
		report.Loaded(), len(report.Results), report.Skipped())
	return nil
}
