package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tackle-labs/tacklebox"
	"github.com/tackle-labs/tacklebox/config"
	"github.com/tackle-labs/tacklebox/manifest"
)

// NewWatchCmd creates the "watch" subcommand.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild and reprint the menu whenever the manifest or config changes",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}

	addSessionFlag(cmd)
	cmd.Flags().String("tools", "", "Path to the tools manifest (overrides the session)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	store, err := resolveStore(cmd, sess)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, shutdown, err := setupTelemetry(ctx, sess)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(shutdown)

	if err := reprintMenu(ctx, sess, store, events, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return exitError(exitRuntime, "creating watcher: %v", err)
	}
	defer func() { _ = watcher.Close() }()

	watched, err := watchManifestFiles(watcher, store, sess)
	if err != nil {
		return err
	}
	slog.Info("watching for changes", "files", watched)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchHit(event, watched) {
				continue
			}
			slog.Info("change detected, rebuilding", "path", event.Name, "op", event.Op.String())
			if err := reprintMenu(ctx, sess, store, events, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
				// A half-written manifest shows up as a parse error;
				// the next write triggers another attempt.
				slog.Error("rebuild failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", "error", err)
		}
	}
}

// watchManifestFiles registers the parent directories of the manifest
// and config files and returns the cleaned file paths to filter events
// against. Watching directories instead of the files themselves survives
// the rename dance atomic saves do.
func watchManifestFiles(watcher *fsnotify.Watcher, store *manifest.FileStore, sess config.Session) ([]string, error) {
	files := []string{filepath.Clean(store.Path())}
	if sess.ConfigFile != "" {
		files = append(files, filepath.Clean(sess.ConfigFile))
	}

	dirs := make(map[string]struct{}, len(files))
	for _, file := range files {
		dirs[filepath.Dir(file)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return nil, exitError(exitRuntime, "watching %s: %v", dir, err)
		}
	}
	return files, nil
}

// watchHit reports whether the event names one of the watched files with
// an op that changes its content.
func watchHit(event fsnotify.Event, watched []string) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	for _, file := range watched {
		if name == file {
			return true
		}
	}
	return false
}

// reprintMenu rebuilds the menu tree from the current file contents and
// prints it with a load summary.
func reprintMenu(ctx context.Context, sess config.Session, store *manifest.FileStore, events tacklebox.EventHandler, out, errW io.Writer) error {
	tree, report, err := buildMenu(ctx, sess, store, events, errW)
	if err != nil {
		return err
	}
	fmt.Fprint(out, tree)
	fmt.Fprintf(out, "\nLoaded %d of %d records (%d skipped)\n",
		report.Loaded(), len(report.Results), report.Skipped())
	return nil
}
