package otel_test

import (
	"testing"
	"time"

	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tackle-labs/tacklebox"
	tbotel "github.com/tackle-labs/tacklebox/otel"
)

// newTestTracer returns a tracer backed by an in-memory span exporter.
func newTestTracer() (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	return exporter, tp
}

func TestTracingHandler_ToolRunCreatesSpan(t *testing.T) {
	exporter, tp := newTestTracer()
	h := tbotel.NewTracingHandler(tp.Tracer("test"))

	now := time.Now()

	h.Handle(tacklebox.Event{
		Kind:  tacklebox.EventToolStarted,
		RunID: "run-1",
		Ref:   "images.strip_duplicates",
		Time:  now,
	})

	// Span is open until the terminal event arrives.
	if sc := h.ActiveRunSpanContext("run-1"); !sc.IsValid() {
		t.Fatal("expected valid span context after tool.started")
	}

	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventToolFinished,
		RunID:   "run-1",
		Ref:     "images.strip_duplicates",
		Time:    now.Add(100 * time.Millisecond),
		Elapsed: 100 * time.Millisecond,
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	span := spans[0]
	if span.Name != "tool:images.strip_duplicates" {
		t.Errorf("expected span name 'tool:images.strip_duplicates', got %q", span.Name)
	}
	if span.Status.Code != otelcodes.Ok {
		t.Errorf("expected status Ok, got %v", span.Status.Code)
	}

	foundRunID := false
	foundRef := false
	for _, attr := range span.Attributes {
		if string(attr.Key) == "tacklebox.run_id" && attr.Value.AsString() == "run-1" {
			foundRunID = true
		}
		if string(attr.Key) == "tacklebox.ref" && attr.Value.AsString() == "images.strip_duplicates" {
			foundRef = true
		}
	}
	if !foundRunID {
		t.Error("expected tacklebox.run_id attribute on span")
	}
	if !foundRef {
		t.Error("expected tacklebox.ref attribute on span")
	}
}

func TestTracingHandler_ScanRunUsesScanPrefix(t *testing.T) {
	exporter, tp := newTestTracer()
	h := tbotel.NewTracingHandler(tp.Tracer("test"))

	now := time.Now()

	h.Handle(tacklebox.Event{
		Kind:  tacklebox.EventScanStarted,
		RunID: "run-2",
		Ref:   "unused_media",
		Time:  now,
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventScanFinished,
		RunID:   "run-2",
		Ref:     "unused_media",
		Time:    now.Add(50 * time.Millisecond),
		Elapsed: 50 * time.Millisecond,
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "scan:unused_media" {
		t.Errorf("expected span name 'scan:unused_media', got %q", spans[0].Name)
	}
}

func TestTracingHandler_StartedUsesRunIDWhenNoRef(t *testing.T) {
	exporter, tp := newTestTracer()
	h := tbotel.NewTracingHandler(tp.Tracer("test"))

	now := time.Now()

	h.Handle(tacklebox.Event{
		Kind:  tacklebox.EventToolStarted,
		RunID: "run-no-ref",
		Time:  now,
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventToolFinished,
		RunID:   "run-no-ref",
		Time:    now.Add(time.Millisecond),
		Elapsed: time.Millisecond,
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "tool:run-no-ref" {
		t.Errorf("expected span name 'tool:run-no-ref', got %q", spans[0].Name)
	}
}

func TestTracingHandler_FailedRunRecordsError(t *testing.T) {
	exporter, tp := newTestTracer()
	h := tbotel.NewTracingHandler(tp.Tracer("test"))

	now := time.Now()

	h.Handle(tacklebox.Event{
		Kind:  tacklebox.EventScanStarted,
		RunID: "run-3",
		Ref:   "missing_media",
		Time:  now,
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventScanFailed,
		RunID:   "run-3",
		Ref:     "missing_media",
		Time:    now.Add(10 * time.Millisecond),
		Elapsed: 10 * time.Millisecond,
		Payload: map[string]any{"error": "media directory unreadable"},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	span := spans[0]
	if span.Status.Code != otelcodes.Error {
		t.Errorf("expected status Error, got %v", span.Status.Code)
	}
	if span.Status.Description != "media directory unreadable" {
		t.Errorf("expected error description, got %q", span.Status.Description)
	}
	if len(span.Events) == 0 {
		t.Fatal("expected a recorded error event on span")
	}
	if span.Events[0].Name != "exception" {
		t.Errorf("expected exception event, got %q", span.Events[0].Name)
	}
}

func TestTracingHandler_FailedRunWithoutErrorPayload(t *testing.T) {
	exporter, tp := newTestTracer()
	h := tbotel.NewTracingHandler(tp.Tracer("test"))

	now := time.Now()

	h.Handle(tacklebox.Event{
		Kind:  tacklebox.EventToolStarted,
		RunID: "run-4",
		Ref:   "notetypes.prune_empty",
		Time:  now,
	})
	h.Handle(tacklebox.Event{
		Kind:  tacklebox.EventToolFailed,
		RunID: "run-4",
		Ref:   "notetypes.prune_empty",
		Time:  now.Add(time.Millisecond),
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Description != "unknown error" {
		t.Errorf("expected fallback error description, got %q", spans[0].Status.Description)
	}
}

func TestTracingHandler_SpanTimestampsFollowEvents(t *testing.T) {
	exporter, tp := newTestTracer()
	h := tbotel.NewTracingHandler(tp.Tracer("test"))

	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	finished := started.Add(250 * time.Millisecond)

	h.Handle(tacklebox.Event{
		Kind:  tacklebox.EventToolStarted,
		RunID: "run-5",
		Ref:   "media.export_unused",
		Time:  started,
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventToolFinished,
		RunID:   "run-5",
		Ref:     "media.export_unused",
		Time:    finished,
		Elapsed: 250 * time.Millisecond,
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if !spans[0].StartTime.Equal(started) {
		t.Errorf("expected span start %v, got %v", started, spans[0].StartTime)
	}
	if !spans[0].EndTime.Equal(finished) {
		t.Errorf("expected span end %v, got %v", finished, spans[0].EndTime)
	}
}

func TestTracingHandler_IgnoresEventsWithoutRunID(t *testing.T) {
	exporter, tp := newTestTracer()
	h := tbotel.NewTracingHandler(tp.Tracer("test"))

	h.Handle(tacklebox.Event{
		Kind: tacklebox.EventMenuRebuilt,
		Time: time.Now(),
	})
	h.Handle(tacklebox.Event{
		Kind: tacklebox.EventToolStarted,
		Time: time.Now(),
	})

	if got := len(exporter.GetSpans()); got != 0 {
		t.Errorf("expected 0 spans, got %d", got)
	}
}

func TestTracingHandler_TerminalEventForUnknownRunIsNoop(t *testing.T) {
	exporter, tp := newTestTracer()
	h := tbotel.NewTracingHandler(tp.Tracer("test"))

	h.Handle(tacklebox.Event{
		Kind:  tacklebox.EventToolFinished,
		RunID: "never-started",
		Time:  time.Now(),
	})

	if got := len(exporter.GetSpans()); got != 0 {
		t.Errorf("expected 0 spans, got %d", got)
	}
}

func TestTracingHandler_ActiveRunSpanContextAfterEnd(t *testing.T) {
	_, tp := newTestTracer()
	h := tbotel.NewTracingHandler(tp.Tracer("test"))

	now := time.Now()

	h.Handle(tacklebox.Event{
		Kind:  tacklebox.EventToolStarted,
		RunID: "run-6",
		Ref:   "browser.search_qids",
		Time:  now,
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventToolFinished,
		RunID:   "run-6",
		Ref:     "browser.search_qids",
		Time:    now.Add(time.Millisecond),
		Elapsed: time.Millisecond,
	})

	if sc := h.ActiveRunSpanContext("run-6"); sc.IsValid() {
		t.Error("expected invalid span context after run ended")
	}
	if sc := h.ActiveRunSpanContext("unknown"); sc.IsValid() {
		t.Error("expected invalid span context for unknown run")
	}
}
