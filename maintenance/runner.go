// Package maintenance implements the collection clean-up scans: stripping
// duplicate inline images, exporting missing and unused media lists, and
// pruning note types that no longer generate cards. Scans read the host
// collection through the collection package, write their findings through
// a ReportWriter, and emit scan.* events; none of them talk to widgets, so
// they run equally well from a menu callback, the CLI, or the scheduler.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tackle-labs/tacklebox"
	"github.com/tackle-labs/tacklebox/collection"
)

// Scan names used in events, logs, and the scheduler.
const (
	ScanDupeImages     = "dupe-images"
	ScanMissingMedia   = "missing-media"
	ScanUnusedMedia    = "unused-media"
	ScanPruneNotetypes = "prune-notetypes"
)

// Runner executes maintenance scans against one open collection. Zero
// values for the optional fields mean: defaults for the dupe-image tag and
// fields, no events, default logger.
type Runner struct {
	// Col is the open collection. Required for everything except the
	// pure helpers.
	Col *collection.Collection

	// MediaDir is the collection's media directory, used by the media
	// scans.
	MediaDir string

	// Reports receives scan output files.
	Reports ReportWriter

	// DupeTag narrows the duplicate-image scan to notes carrying this
	// tag. Empty uses DefaultDupeTag.
	DupeTag string

	// DupeFields names the fields the duplicate-image scan cleans.
	// Empty uses DefaultDupeFields.
	DupeFields []string

	// Events receives scan.started / scan.finished / scan.failed. Nil
	// drops them.
	Events tacklebox.EventHandler

	// Logger receives per-scan progress lines. Nil uses the default
	// logger.
	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) emit(e tacklebox.Event) {
	if r.Events != nil {
		r.Events(e)
	}
}

// run wraps one scan in started/finished/failed events and timing. The
// payload func is only consulted on success.
func (r *Runner) run(ctx context.Context, name string, fn func(context.Context) (map[string]any, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runID := uuid.NewString()
	start := time.Now()
	r.emit(tacklebox.NewEvent(tacklebox.EventScanStarted, runID).WithRef(name))
	r.logger().Info("scan started", "scan", name, "run_id", runID)

	payload, err := fn(ctx)
	elapsed := time.Since(start)
	if err != nil {
		r.emit(tacklebox.NewEvent(tacklebox.EventScanFailed, runID).
			WithRef(name).
			WithElapsed(elapsed).
			WithPayload("error", err.Error()))
		r.logger().Error("scan failed", "scan", name, "run_id", runID, "error", err)
		return err
	}

	finished := tacklebox.NewEvent(tacklebox.EventScanFinished, runID).
		WithRef(name).
		WithElapsed(elapsed)
	for k, v := range payload {
		finished = finished.WithPayload(k, v)
	}
	r.emit(finished)
	r.logger().Info("scan finished", "scan", name, "run_id", runID, "elapsed", elapsed)
	return nil
}
