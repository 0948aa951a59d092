package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tackle-labs/tacklebox/action"
	"github.com/tackle-labs/tacklebox/host"
	"github.com/tackle-labs/tacklebox/maintenance"
)

// NewRunCmd creates the "run" subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <module.function>",
		Short: "Execute one registered action against the collection",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}

	addSessionFlag(cmd)
	cmd.Flags().Duration("timeout", 5*time.Minute, "Execution timeout")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ref := args[0]
	if _, _, ok := action.SplitRef(ref); !ok {
		return exitError(exitValidation, "invalid action reference %q: want module.function", ref)
	}

	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	col, err := openCollection(sess)
	if err != nil {
		return err
	}
	defer func() { _ = col.Close() }()

	events, shutdown, err := setupTelemetry(cmd.Context(), sess)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(shutdown)

	runner := newRunner(sess, col, events)
	table, err := maintenanceTable(runner, maintenance.ActionDeps{
		Reporter: host.WriterReporter{Out: cmd.OutOrStdout()},
	})
	if err != nil {
		return err
	}

	fn, ok := table.Resolve(ref)
	if !ok {
		return exitError(exitValidation, "unknown action %q; registered actions:\n  %s",
			ref, strings.Join(table.Refs(), "\n  "))
	}

	ctx := cmd.Context()
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	_, elapsed, err := invokeAction(ctx, ref, fn, events)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return exitError(exitTimeout, "action %s timed out after %s", ref, elapsed.Round(time.Millisecond))
		}
		return exitError(exitRuntime, "action %s failed: %v", ref, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s completed in %s\n", ref, elapsed.Round(time.Millisecond))
	return nil
}
