package loader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tackle-labs/tacklebox"
	"github.com/tackle-labs/tacklebox/action"
	"github.com/tackle-labs/tacklebox/config"
	"github.com/tackle-labs/tacklebox/host"
	"github.com/tackle-labs/tacklebox/manifest"
)

// SettingsEntryName is the display name of the hardcoded editor entry
// registered after every load. It never appears in the manifest file.
const SettingsEntryName = "Toolbar Settings"

// AddonConfigSubmenu holds the per-add-on configuration entries.
const AddonConfigSubmenu = "Add-ons Configurations"

// reportTitle heads Reporter notices raised during loading.
const reportTitle = "Custom toolbar"

// Options configure a load pass. Table and Toolbar are required; the
// rest default to quiet no-ops.
type Options struct {
	// Config supplies toolbar gating and add-on decorations.
	Config config.Config

	// Reporter receives unresolved-record notices and tool failures.
	// Nil discards them.
	Reporter tacklebox.Reporter

	// Events receives record.* and tool.* events. Nil drops them.
	Events tacklebox.EventHandler

	// Logger receives debug lines for malformed records. Nil uses the
	// default logger.
	Logger *slog.Logger

	// Queue runs tool callbacks off the activation path. Nil runs them
	// inline.
	Queue host.TaskQueue

	// Settings opens the toolbar editor. Nil renders the entry disabled.
	Settings func()

	// AddonConfigs opens other add-ons' configuration dialogs. Nil skips
	// those entries even when the config enables them.
	AddonConfigs host.AddonConfigOpener
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) reporter() tacklebox.Reporter {
	if o.Reporter != nil {
		return o.Reporter
	}
	return tacklebox.NopReporter{}
}

func (o Options) queue() host.TaskQueue {
	if o.Queue != nil {
		return o.Queue
	}
	return host.SyncQueue{}
}

func (o Options) emit(e tacklebox.Event) {
	if o.Events != nil {
		o.Events(e)
	}
}

// Load processes records in file order against the action table,
// registering each through the toolbar, then appends the hardcoded
// Toolbar Settings entry and, when enabled, the add-on configuration
// shortcuts. It returns one result per record.
//
// Load never fails on record content. Malformed records skip silently,
// unresolved references are reported and skipped, and everything else
// registers. Only a canceled context stops the pass early.
func Load(ctx context.Context, toolbar *tacklebox.Toolbar, records []manifest.Record, table *action.Table, opts Options) (Report, error) {
	report := Report{}

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rec := raw.Normalized()
		switch {
		case rec.IsSeparator():
			toolbar.RegisterSeparator(rec.Submenu)
			report.add(RecordResult{Index: i, Name: rec.Name, Kind: ResultSeparator})

		case rec.IsLabel() && rec.Validate() == "":
			toolbar.RegisterLabel(rec.Submenu, rec.Name)
			report.add(RecordResult{Index: i, Name: rec.Name, Kind: ResultLabel})

		default:
			report.add(loadAction(toolbar, table, i, rec, opts))
		}
	}

	registerSettings(toolbar, opts)
	registerAddonConfigs(toolbar, opts)

	return report, nil
}

func loadAction(toolbar *tacklebox.Toolbar, table *action.Table, index int, rec manifest.Record, opts Options) RecordResult {
	if issue := rec.Validate(); issue != "" {
		opts.logger().Debug("skipping malformed record", "index", index, "issue", issue)
		opts.emit(tacklebox.NewEvent(tacklebox.EventRecordSkipped, "").
			WithPath(rec.Submenu).
			WithPayload("index", index).
			WithPayload("reason", issue))
		return RecordResult{Index: index, Name: rec.Name, Kind: ResultSkippedMalformed, Detail: issue}
	}

	ref := rec.Ref()
	fn, ok := table.Resolve(ref)
	if !ok {
		detail := fmt.Sprintf("no registered action %q", ref)
		opts.reporter().Error(reportTitle,
			fmt.Sprintf("Failed to load %q: %s. The entry was skipped.", rec.Name, detail), ref)
		opts.emit(tacklebox.NewEvent(tacklebox.EventRecordSkipped, "").
			WithRef(ref).
			WithPath(rec.Submenu).
			WithPayload("index", index).
			WithPayload("reason", "unresolved"))
		return RecordResult{Index: index, Name: rec.Name, Ref: ref, Kind: ResultSkippedUnresolved, Detail: detail}
	}

	toolbar.Register(rec.Name, invoker(rec.Name, ref, fn, opts), rec.Submenu, rec.Icon, rec.EnabledOrDefault())
	opts.emit(tacklebox.NewEvent(tacklebox.EventRecordLoaded, "").
		WithRef(ref).
		WithPath(rec.Submenu).
		WithPayload("index", index).
		WithPayload("name", rec.Name))
	return RecordResult{Index: index, Name: rec.Name, Ref: ref, Kind: ResultLoaded}
}

// invoker wraps a table function into a menu callback: run id, events,
// queue submission, and failure reporting. Success stays quiet here;
// actions that want a completion notice raise it themselves.
func invoker(name, ref string, fn action.Func, opts Options) func() {
	return func() {
		runID := uuid.NewString()
		start := time.Now()
		opts.emit(tacklebox.NewEvent(tacklebox.EventToolStarted, runID).WithRef(ref))

		opts.queue().Submit(context.Background(), fn, func(err error) {
			elapsed := time.Since(start)
			if err != nil {
				opts.emit(tacklebox.NewEvent(tacklebox.EventToolFailed, runID).
					WithRef(ref).
					WithElapsed(elapsed).
					WithPayload("error", err.Error()))
				opts.reporter().Error(reportTitle,
					fmt.Sprintf("%q failed: %v", name, err), ref)
				return
			}
			opts.emit(tacklebox.NewEvent(tacklebox.EventToolFinished, runID).
				WithRef(ref).
				WithElapsed(elapsed))
		})
	}
}

// registerSettings appends the editor entry. It is not a manifest
// record, so editing the manifest cannot lose the way back into the
// editor.
func registerSettings(toolbar *tacklebox.Toolbar, opts Options) {
	toolbar.Register(SettingsEntryName, opts.Settings, "", "", true)
}

func registerAddonConfigs(toolbar *tacklebox.Toolbar, opts Options) {
	if !opts.Config.EnableToolbarSettings || opts.AddonConfigs == nil {
		return
	}
	for _, id := range opts.Config.OtherAddonNames {
		label := opts.Config.DisplayLabel(id)
		toolbar.Register(label, openAddonConfig(id, opts), AddonConfigSubmenu, opts.Config.DefaultIcon, true)
	}
}

func openAddonConfig(id string, opts Options) func() {
	return func() {
		if err := opts.AddonConfigs.OpenAddonConfig(id); err != nil {
			opts.reporter().Error(reportTitle,
				fmt.Sprintf("Could not open the configuration for %q: %v", id, err), "")
		}
	}
}
