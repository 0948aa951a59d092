package cli

import (
	"github.com/spf13/cobra"

	"github.com/tackle-labs/tacklebox/maintenance"
	"github.com/tackle-labs/tacklebox/tui"
)

// NewEditCmd creates the "edit" subcommand.
func NewEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the tools manifest interactively",
		Args:  cobra.NoArgs,
		RunE:  runEdit,
	}

	addSessionFlag(cmd)
	cmd.Flags().String("tools", "", "Path to the tools manifest (overrides the session)")

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	store, err := resolveStore(cmd, sess)
	if err != nil {
		return err
	}

	// Registration never invokes the closures, so a collection-less
	// runner is enough to flag unresolved references in the table view.
	table, err := maintenanceTable(newRunner(sess, nil, nil), maintenance.ActionDeps{})
	if err != nil {
		return err
	}

	events, shutdown, err := setupTelemetry(ctx, sess)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(shutdown)

	model, err := tui.Load(ctx, store, table)
	if err != nil {
		return exitError(exitInputParse, "loading manifest: %v", err)
	}
	model.Events = events

	if err := tui.Run(model); err != nil {
		return exitError(exitRuntime, "editor: %v", err)
	}
	return nil
}
