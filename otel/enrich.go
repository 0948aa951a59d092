package otel

import (
	"github.com/tackle-labs/tacklebox"
)

// EnrichHandler wraps next so events carrying a run ID with an open span
// also carry that span's identifiers in their payload ("trace_id",
// "span_id"). Log sinks downstream of the wrapper can then correlate
// event lines with exported traces.
//
// The wrapper must run before the TracingHandler sees terminal events:
// wrap the whole handler chain, tracing included, so finished/failed
// events are enriched while their span is still open. Started events
// pass through unenriched because their span does not exist yet.
func EnrichHandler(next tacklebox.EventHandler, tracing *TracingHandler) tacklebox.EventHandler {
	return func(e tacklebox.Event) {
		if e.RunID != "" {
			if sc := tracing.ActiveRunSpanContext(e.RunID); sc.IsValid() {
				e = e.WithPayload("trace_id", sc.TraceID().String()).
					WithPayload("span_id", sc.SpanID().String())
			}
		}
		next(e)
	}
}
