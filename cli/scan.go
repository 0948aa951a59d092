package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tackle-labs/tacklebox/maintenance"
)

// NewScanCmd creates the "scan" subcommand group for maintenance scans.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run maintenance scans against the collection",
	}

	addSessionFlag(cmd)

	cmd.AddCommand(newScanDupeImagesCmd())
	cmd.AddCommand(newScanMissingMediaCmd())
	cmd.AddCommand(newScanUnusedMediaCmd())
	cmd.AddCommand(newScanPruneNotetypesCmd())

	return cmd
}

func newScanDupeImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupe-images",
		Short: "Strip repeated inline images from tagged notes",
		Args:  cobra.NoArgs,
		RunE:  runScanDupeImages,
	}
	cmd.Flags().String("tag", "", "Tag selecting the notes to clean (default "+maintenance.DefaultDupeTag+")")
	cmd.Flags().StringSlice("fields", nil, "Field names the scan cleans (default: the standard question fields)")
	return cmd
}

func newScanMissingMediaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missing-media",
		Short: "List referenced media files absent from the media directory",
		Args:  cobra.NoArgs,
		RunE:  runScanMissingMedia,
	}
}

func newScanUnusedMediaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unused-media",
		Short: "List media files no note references",
		Args:  cobra.NoArgs,
		RunE:  runScanUnusedMedia,
	}
}

func newScanPruneNotetypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-notetypes",
		Short: "Remove note types whose notes generate no cards",
		Args:  cobra.NoArgs,
		RunE:  runScanPruneNotetypes,
	}
}

// withScanRunner opens the collection, wires telemetry, and hands a
// ready runner to the scan body.
func withScanRunner(cmd *cobra.Command, needMedia bool, scan func(*maintenance.Runner) error) error {
	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	if needMedia && strings.TrimSpace(sess.MediaDir) == "" {
		return exitError(exitValidation, "no media directory configured: set media_dir in the session file")
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

	return scan(newRunner(sess, col, events))
}

func runScanDupeImages(cmd *cobra.Command, args []string) error {
	return withScanRunner(cmd, false, func(runner *maintenance.Runner) error {
		runner.DupeTag, _ = cmd.Flags().GetString("tag")
		runner.DupeFields, _ = cmd.Flags().GetStringSlice("fields")

		res, err := runner.StripDuplicateImages(cmd.Context())
		if err != nil {
			return exitError(exitRuntime, "dupe-images scan: %v", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cleaned %d of %d notes tagged %s.\n", res.Cleaned(), res.NotesMatched, res.Tag)
		if res.BackupPath != "" {
			fmt.Fprintf(out, "Note IDs written to %s\n", res.BackupPath)
		}
		return nil
	})
}

func runScanMissingMedia(cmd *cobra.Command, args []string) error {
	return withScanRunner(cmd, true, func(runner *maintenance.Runner) error {
		res, err := runner.ExportMissingMedia(cmd.Context())
		if err != nil {
			return exitError(exitRuntime, "missing-media scan: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d referenced files are missing. List written to %s.\n",
			len(res.Missing), res.Referenced, res.ReportPath)
		return nil
	})
}

func runScanUnusedMedia(cmd *cobra.Command, args []string) error {
	return withScanRunner(cmd, true, func(runner *maintenance.Runner) error {
		res, err := runner.ExportUnusedMedia(cmd.Context())
		if err != nil {
			return exitError(exitRuntime, "unused-media scan: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d media files are unused. List written to %s.\n",
			len(res.Unused), res.Existing, res.ReportPath)
		return nil
	})
}

func runScanPruneNotetypes(cmd *cobra.Command, args []string) error {
	return withScanRunner(cmd, false, func(runner *maintenance.Runner) error {
		res, err := runner.PruneEmptyNotetypes(cmd.Context())
		if err != nil {
			return exitError(exitRuntime, "prune-notetypes scan: %v", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Removed %d of %d note types.\n", len(res.Pruned), res.Examined)
		for _, name := range res.Pruned {
			fmt.Fprintf(out, "  %s\n", name)
		}
		return nil
	})
}
