package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tackle-labs/tacklebox/host"
	"github.com/tackle-labs/tacklebox/maintenance"
	"github.com/tackle-labs/tacklebox/schedule"
)

// NewScheduleCmd creates the "schedule" subcommand.
func NewScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the configured scan schedules in the foreground",
		Args:  cobra.NoArgs,
		RunE:  runSchedule,
	}

	addSessionFlag(cmd)
	cmd.Flags().Bool("once", false, "Fire every schedule immediately and exit")
	cmd.Flags().Duration("poll", 30*time.Second, "How often due schedules are checked")

	return cmd
}

func runSchedule(cmd *cobra.Command, args []string) error {
	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	if len(sess.Scans) == 0 {
		return exitError(exitValidation, "no scans configured: add a scans section to the session file")
	}

	col, err := openCollection(sess)
	if err != nil {
		return err
	}
	defer func() { _ = col.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, shutdown, err := setupTelemetry(ctx, sess)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(shutdown)

	// Headless: scan notices land in the log instead of a dialog.
	table, err := maintenanceTable(newRunner(sess, col, events), maintenance.ActionDeps{
		Reporter: host.LogReporter{},
	})
	if err != nil {
		return err
	}

	entries := make([]schedule.Entry, len(sess.Scans))
	for i, scan := range sess.Scans {
		entries[i] = schedule.Entry{Name: scan.Name, Action: scan.Action, Cron: scan.Cron}
	}

	// One collection handle: scans run one at a time, off the polling
	// goroutine.
	queue := host.NewGoQueue(1)

	poll, _ := cmd.Flags().GetDuration("poll")
	sched, err := schedule.New(schedule.Config{
		Entries:      entries,
		Table:        table,
		Queue:        queue,
		PollInterval: poll,
		Events:       events,
	})
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	printSchedules(cmd, sched.Entries())

	if once, _ := cmd.Flags().GetBool("once"); once {
		if err := sched.FireAll(ctx); err != nil {
			return exitError(exitRuntime, "firing schedules: %v", err)
		}
		queue.Wait()
		return nil
	}

	if err := sched.Start(); err != nil {
		return exitError(exitRuntime, "starting scheduler: %v", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return exitError(exitRuntime, "stopping scheduler: %v", err)
	}
	queue.Wait()
	return nil
}

func printSchedules(cmd *cobra.Command, entries []schedule.EntryInfo) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tACTION\tCRON\tNEXT")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Action, e.Cron, e.Next.UTC().Format(time.RFC3339))
	}
	_ = w.Flush()
}
