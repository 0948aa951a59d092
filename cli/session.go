package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tackle-labs/tacklebox"
	"github.com/tackle-labs/tacklebox/action"
	"github.com/tackle-labs/tacklebox/collection"
	"github.com/tackle-labs/tacklebox/config"
	"github.com/tackle-labs/tacklebox/host"
	"github.com/tackle-labs/tacklebox/loader"
	"github.com/tackle-labs/tacklebox/maintenance"
	"github.com/tackle-labs/tacklebox/manifest"
	"github.com/tackle-labs/tacklebox/otel"
)

// addSessionFlag registers the shared --session flag on a command. Leaf
// commands get it directly; group commands register it as persistent so
// subcommands inherit it.
func addSessionFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("session", "", "Path to the session file (default: ./tacklebox.yaml, then ~/.tacklebox/config.yaml)")
}

// loadSession resolves and parses the session file. No session anywhere
// is not an error: commands that can work without one get a zero value.
func loadSession(cmd *cobra.Command) (config.Session, error) {
	explicit, _ := cmd.Flags().GetString("session")

	path, found, err := config.DiscoverSessionPath(explicit)
	if err != nil {
		return config.Session{}, exitError(exitFileNotFound, "%v", err)
	}
	if !found {
		return config.Session{}, nil
	}

	sess, err := config.LoadSession(path)
	if err != nil {
		return config.Session{}, exitError(exitInputParse, "%v", err)
	}
	return sess, nil
}

// loadToolbarConfig reads the add-on config named by the session, or the
// defaults when the session names none.
func loadToolbarConfig(sess config.Session) (config.Config, error) {
	if strings.TrimSpace(sess.ConfigFile) == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(sess.ConfigFile)
	if err != nil {
		return config.Config{}, exitError(exitInputParse, "%v", err)
	}
	return cfg, nil
}

// resolveStore picks the manifest file: an explicit --tools flag wins,
// then the session's tools_file, then the per-user default.
func resolveStore(cmd *cobra.Command, sess config.Session) (*manifest.FileStore, error) {
	if f := cmd.Flags().Lookup("tools"); f != nil {
		if path, _ := cmd.Flags().GetString("tools"); strings.TrimSpace(path) != "" {
			return manifest.NewFileStore(path), nil
		}
	}
	if sess.ToolsFile != "" {
		return manifest.NewFileStore(sess.ToolsFile), nil
	}
	store, err := manifest.NewDefaultFileStore()
	if err != nil {
		return nil, exitError(exitRuntime, "resolving manifest path: %v", err)
	}
	return store, nil
}

// openCollection opens the session's collection database. Commands that
// actually execute actions need one; menu rendering does not.
func openCollection(sess config.Session) (*collection.Collection, error) {
	if strings.TrimSpace(sess.Collection) == "" {
		return nil, exitError(exitValidation, "no collection configured: set collection in the session file")
	}
	col, err := collection.Open(sess.Collection)
	if err != nil {
		return nil, exitError(exitRuntime, "opening collection: %v", err)
	}
	return col, nil
}

// newRunner assembles a maintenance runner from the session paths. col
// may be nil when the caller only needs reference resolution; the action
// closures never touch the database until invoked.
func newRunner(sess config.Session, col *collection.Collection, events tacklebox.EventHandler) *maintenance.Runner {
	reports := sess.ReportsDir
	if reports == "" {
		reports = "reports"
	}
	return &maintenance.Runner{
		Col:      col,
		MediaDir: sess.MediaDir,
		Reports: maintenance.ReportWriter{
			ReportsDir: reports,
			BackupsDir: sess.BackupsDir,
			Profile:    sess.Profile,
		},
		Events: events,
	}
}

// maintenanceTable registers the built-in maintenance actions against
// the runner and returns the populated table.
func maintenanceTable(runner *maintenance.Runner, deps maintenance.ActionDeps) (*action.Table, error) {
	table := action.NewTable()
	if err := maintenance.RegisterActions(table, runner, deps); err != nil {
		return nil, exitError(exitRuntime, "registering actions: %v", err)
	}
	return table, nil
}

// setupTelemetry wires OTLP export when the session names an endpoint.
// The returned handler is nil when telemetry is off; shutdown is always
// safe to call.
func setupTelemetry(ctx context.Context, sess config.Session) (tacklebox.EventHandler, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if sess.OTLPEndpoint == "" {
		return nil, noop, nil
	}

	// Desktop collectors listen on plain HTTP; the endpoint format
	// carries no scheme to say otherwise.
	tel, err := otel.Setup(ctx, otel.SetupConfig{
		Endpoint:    sess.OTLPEndpoint,
		ServiceName: "tacklebox",
		Insecure:    true,
	})
	if err != nil {
		return nil, noop, exitError(exitRuntime, "setting up telemetry: %v", err)
	}
	return tel.Handler(), tel.Shutdown, nil
}

// shutdownTelemetry flushes exporters with a bounded grace period.
func shutdownTelemetry(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

// buildMenu runs the full load pipeline against a text host and returns
// the rendered tree plus the per-record report. Unresolved and malformed
// records surface as reporter notices on errW.
func buildMenu(ctx context.Context, sess config.Session, store *manifest.FileStore, events tacklebox.EventHandler, errW io.Writer) (string, loader.Report, error) {
	cfg, err := loadToolbarConfig(sess)
	if err != nil {
		return "", loader.Report{}, err
	}

	records, err := store.Load(ctx)
	if err != nil {
		return "", loader.Report{}, exitError(exitInputParse, "loading manifest: %v", err)
	}

	table, err := maintenanceTable(newRunner(sess, nil, events), maintenance.ActionDeps{})
	if err != nil {
		return "", loader.Report{}, err
	}

	textHost := host.NewTextHost()
	toolbar := tacklebox.NewToolbar(textHost, tacklebox.RebuildOptions{
		Title:  cfg.ToolbarTitle,
		Icons:  &tacklebox.IconResolver{PluginDir: sess.PluginDir},
		Events: events,
	})

	report, err := loader.Load(ctx, toolbar, records, table, loader.Options{
		Config:   cfg,
		Reporter: host.WriterReporter{Out: errW},
		Events:   events,
		Queue:    host.SyncQueue{},
	})
	if err != nil {
		return "", loader.Report{}, exitError(exitRuntime, "building menu: %v", err)
	}
	return textHost.String(), report, nil
}

// invokeAction executes one resolved action inline, bracketed by the
// same run events a menu activation emits.
func invokeAction(ctx context.Context, ref string, fn action.Func, events tacklebox.EventHandler) (string, time.Duration, error) {
	runID := uuid.NewString()
	emit := func(e tacklebox.Event) {
		if events != nil {
			events(e)
		}
	}

	emit(tacklebox.NewEvent(tacklebox.EventToolStarted, runID).WithRef(ref))
	start := time.Now()

	var runErr error
	host.SyncQueue{}.Submit(ctx, fn, func(err error) {
		elapsed := time.Since(start)
		if err != nil {
			runErr = err
			emit(tacklebox.NewEvent(tacklebox.EventToolFailed, runID).
				WithRef(ref).
				WithElapsed(elapsed).
				WithPayload("error", err.Error()))
			return
		}
		emit(tacklebox.NewEvent(tacklebox.EventToolFinished, runID).
			WithRef(ref).
			WithElapsed(elapsed))
	})
	return runID, time.Since(start), runErr
}
