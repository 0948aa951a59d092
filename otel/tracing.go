// Package otel translates tacklebox events into OpenTelemetry traces
// and metrics. Handlers attach to the event stream like any other
// EventHandler; nothing in the toolkit imports this package, so hosts
// that do not export telemetry never pay for it.
package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tackle-labs/tacklebox"
)

// TracingHandler turns tool and scan run events into spans. One span
// covers one run ID, from its started event to its finished or failed
// event; registry-level events carry no run ID and produce no spans.
type TracingHandler struct {
	tracer trace.Tracer

	mu       sync.RWMutex
	runSpans map[string]trace.Span
}

// NewTracingHandler creates a TracingHandler over the given tracer.
func NewTracingHandler(tracer trace.Tracer) *TracingHandler {
	return &TracingHandler{
		tracer:   tracer,
		runSpans: make(map[string]trace.Span),
	}
}

// Handle processes one event. It is a tacklebox.EventHandler.
func (h *TracingHandler) Handle(e tacklebox.Event) {
	switch e.Kind {
	case tacklebox.EventToolStarted:
		h.startRun(e, "tool:")
	case tacklebox.EventScanStarted:
		h.startRun(e, "scan:")
	case tacklebox.EventToolFinished, tacklebox.EventScanFinished:
		h.finishRun(e)
	case tacklebox.EventToolFailed, tacklebox.EventScanFailed:
		h.failRun(e)
	}
}

func (h *TracingHandler) startRun(e tacklebox.Event, prefix string) {
	if e.RunID == "" {
		return
	}

	spanName := prefix + e.Ref
	if e.Ref == "" {
		spanName = prefix + e.RunID
	}

	// Runs are flat, so every run span is a root span.
	_, span := h.tracer.Start(context.Background(), spanName,
		trace.WithAttributes(
			attribute.String("tacklebox.run_id", e.RunID),
			attribute.String("tacklebox.ref", e.Ref),
		),
		trace.WithTimestamp(e.Time),
	)

	h.mu.Lock()
	h.runSpans[e.RunID] = span
	h.mu.Unlock()
}

func (h *TracingHandler) finishRun(e tacklebox.Event) {
	span, ok := h.takeSpan(e.RunID)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("tacklebox.duration", e.Elapsed.String()))
	span.SetStatus(codes.Ok, "")
	span.End(trace.WithTimestamp(e.Time))
}

func (h *TracingHandler) failRun(e tacklebox.Event) {
	span, ok := h.takeSpan(e.RunID)
	if !ok {
		return
	}

	errMsg := "unknown error"
	if msg, found := e.Payload["error"]; found {
		if s, ok := msg.(string); ok {
			errMsg = s
		}
	}
	span.SetAttributes(attribute.String("tacklebox.duration", e.Elapsed.String()))
	span.SetStatus(codes.Error, errMsg)
	span.RecordError(spanError(errMsg), trace.WithTimestamp(e.Time))
	span.End(trace.WithTimestamp(e.Time))
}

func (h *TracingHandler) takeSpan(runID string) (trace.Span, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	span, ok := h.runSpans[runID]
	if ok {
		delete(h.runSpans, runID)
	}
	return span, ok
}

// ActiveRunSpanContext returns the SpanContext of the run's open span,
// or an empty SpanContext when the run is unknown or already ended.
func (h *TracingHandler) ActiveRunSpanContext(runID string) trace.SpanContext {
	h.mu.RLock()
	span, ok := h.runSpans[runID]
	h.mu.RUnlock()

	if !ok {
		return trace.SpanContext{}
	}
	return span.SpanContext()
}

// spanError is a simple error type for recording span errors.
type spanError string

func (e spanError) Error() string { return string(e) }
