package host

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tackle-labs/tacklebox"
)

// LogReporter routes notices into structured logs. Headless runs (the
// scheduler, the CLI with --quiet) use it where a desktop host would pop
// a dialog.
type LogReporter struct {
	Logger *slog.Logger
}

// Info implements tacklebox.Reporter.
func (r LogReporter) Info(title, message string) {
	r.logger().Info(message, "title", title)
}

// Error implements tacklebox.Reporter.
func (r LogReporter) Error(title, message, detail string) {
	if detail != "" {
		r.logger().Error(message, "title", title, "detail", detail)
		return
	}
	r.logger().Error(message, "title", title)
}

func (r LogReporter) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// WriterReporter prints notices to a writer, the CLI's stand-in for
// modal dialogs.
type WriterReporter struct {
	Out io.Writer
}

// Info implements tacklebox.Reporter.
func (r WriterReporter) Info(title, message string) {
	fmt.Fprintf(r.Out, "%s: %s\n", title, message)
}

// Error implements tacklebox.Reporter.
func (r WriterReporter) Error(title, message, detail string) {
	fmt.Fprintf(r.Out, "%s: %s\n", title, message)
	if detail != "" {
		fmt.Fprintf(r.Out, "  %s\n", detail)
	}
}

var (
	_ tacklebox.Reporter = LogReporter{}
	_ tacklebox.Reporter = WriterReporter{}
)
