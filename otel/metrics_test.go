package otel_test

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tackle-labs/tacklebox"
	tbotel "github.com/tackle-labs/tacklebox/otel"
)

// newTestMeter returns a meter backed by a manual reader for collecting
// metrics in tests.
func newTestMeter() (*metric.ManualReader, *metric.MeterProvider) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	return reader, mp
}

// collectMetrics reads all metrics from the reader.
func collectMetrics(t *testing.T, reader *metric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return &rm
}

// findMetric searches for a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, scope := range rm.ScopeMetrics {
		for i := range scope.Metrics {
			if scope.Metrics[i].Name == name {
				return &scope.Metrics[i]
			}
		}
	}
	return nil
}

// hasStringAttr reports whether any data point carries the given
// attribute key/value pair.
func hasStringAttr(dps []metricdata.HistogramDataPoint[float64], key, value string) bool {
	for _, dp := range dps {
		for _, attr := range dp.Attributes.ToSlice() {
			if string(attr.Key) == key && attr.Value.AsString() == value {
				return true
			}
		}
	}
	return false
}

func TestMetricsHandler_ToolFinishedIncrementsCounterAndRecordsDuration(t *testing.T) {
	reader, mp := newTestMeter()

	h, err := tbotel.NewMetricsHandler(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetricsHandler: %v", err)
	}

	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventToolFinished,
		RunID:   "run-1",
		Ref:     "images.strip_duplicates",
		Time:    time.Now(),
		Elapsed: 150 * time.Millisecond,
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventToolFinished,
		RunID:   "run-2",
		Ref:     "media.export_missing",
		Time:    time.Now(),
		Elapsed: 50 * time.Millisecond,
	})

	rm := collectMetrics(t, reader)

	invMetric := findMetric(rm, "tacklebox.tool.invocations")
	if invMetric == nil {
		t.Fatal("tacklebox.tool.invocations metric not found")
	}
	sumData, ok := invMetric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] data, got %T", invMetric.Data)
	}
	// One data point per ref.
	if len(sumData.DataPoints) != 2 {
		t.Fatalf("expected 2 data points, got %d", len(sumData.DataPoints))
	}
	for _, dp := range sumData.DataPoints {
		if dp.Value != 1 {
			t.Errorf("expected counter value 1, got %d", dp.Value)
		}
	}

	durMetric := findMetric(rm, "tacklebox.tool.duration")
	if durMetric == nil {
		t.Fatal("tacklebox.tool.duration metric not found")
	}
	histData, ok := durMetric.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64] data, got %T", durMetric.Data)
	}
	if len(histData.DataPoints) != 2 {
		t.Fatalf("expected 2 histogram data points, got %d", len(histData.DataPoints))
	}
	for _, dp := range histData.DataPoints {
		if dp.Count != 1 {
			t.Errorf("expected histogram count 1, got %d", dp.Count)
		}
	}
	if !hasStringAttr(histData.DataPoints, "ref", "images.strip_duplicates") {
		t.Error("expected ref attribute on duration data point")
	}
}

func TestMetricsHandler_ToolFailedIncrementsFailureCounter(t *testing.T) {
	reader, mp := newTestMeter()

	h, err := tbotel.NewMetricsHandler(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetricsHandler: %v", err)
	}

	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventToolFailed,
		RunID:   "run-1",
		Ref:     "notetypes.prune_empty",
		Time:    time.Now(),
		Elapsed: 10 * time.Millisecond,
		Payload: map[string]any{"error": "database locked"},
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventToolFailed,
		RunID:   "run-2",
		Ref:     "notetypes.prune_empty",
		Time:    time.Now(),
		Elapsed: 20 * time.Millisecond,
		Payload: map[string]any{"error": "database locked again"},
	})

	rm := collectMetrics(t, reader)

	failMetric := findMetric(rm, "tacklebox.tool.failures")
	if failMetric == nil {
		t.Fatal("tacklebox.tool.failures metric not found")
	}
	sumData, ok := failMetric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] data, got %T", failMetric.Data)
	}
	if len(sumData.DataPoints) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(sumData.DataPoints))
	}
	if sumData.DataPoints[0].Value != 2 {
		t.Errorf("expected failure count 2, got %d", sumData.DataPoints[0].Value)
	}

	// Failures must not count as invocations.
	if m := findMetric(rm, "tacklebox.tool.invocations"); m != nil {
		t.Error("expected no invocation data for failed runs")
	}
}

func TestMetricsHandler_ScanLifecycle(t *testing.T) {
	reader, mp := newTestMeter()

	h, err := tbotel.NewMetricsHandler(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetricsHandler: %v", err)
	}

	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventScanFinished,
		RunID:   "run-1",
		Ref:     "unused_media",
		Time:    time.Now(),
		Elapsed: 2 * time.Second,
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventScanFailed,
		RunID:   "run-2",
		Ref:     "missing_media",
		Time:    time.Now(),
		Elapsed: time.Second,
		Payload: map[string]any{"error": "collection closed"},
	})

	rm := collectMetrics(t, reader)

	runsMetric := findMetric(rm, "tacklebox.scan.runs")
	if runsMetric == nil {
		t.Fatal("tacklebox.scan.runs metric not found")
	}
	runsData, ok := runsMetric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] data, got %T", runsMetric.Data)
	}
	if len(runsData.DataPoints) != 1 || runsData.DataPoints[0].Value != 1 {
		t.Errorf("expected one scan run recorded, got %+v", runsData.DataPoints)
	}

	failMetric := findMetric(rm, "tacklebox.scan.failures")
	if failMetric == nil {
		t.Fatal("tacklebox.scan.failures metric not found")
	}
	failData, ok := failMetric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] data, got %T", failMetric.Data)
	}
	if len(failData.DataPoints) != 1 || failData.DataPoints[0].Value != 1 {
		t.Errorf("expected one scan failure recorded, got %+v", failData.DataPoints)
	}

	durMetric := findMetric(rm, "tacklebox.scan.duration")
	if durMetric == nil {
		t.Fatal("tacklebox.scan.duration metric not found")
	}
	histData, ok := durMetric.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64] data, got %T", durMetric.Data)
	}
	if len(histData.DataPoints) != 1 {
		t.Fatalf("expected 1 histogram data point, got %d", len(histData.DataPoints))
	}
	if histData.DataPoints[0].Sum != 2.0 {
		t.Errorf("expected duration sum 2.0s, got %v", histData.DataPoints[0].Sum)
	}
	if !hasStringAttr(histData.DataPoints, "scan", "unused_media") {
		t.Error("expected scan attribute on duration data point")
	}
}

func TestMetricsHandler_MenuRebuiltIncrementsCounter(t *testing.T) {
	reader, mp := newTestMeter()

	h, err := tbotel.NewMetricsHandler(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetricsHandler: %v", err)
	}

	for i := 0; i < 3; i++ {
		h.Handle(tacklebox.Event{
			Kind: tacklebox.EventMenuRebuilt,
			Time: time.Now(),
		})
	}

	rm := collectMetrics(t, reader)

	rebuildMetric := findMetric(rm, "tacklebox.menu.rebuilds")
	if rebuildMetric == nil {
		t.Fatal("tacklebox.menu.rebuilds metric not found")
	}
	sumData, ok := rebuildMetric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] data, got %T", rebuildMetric.Data)
	}
	if len(sumData.DataPoints) != 1 || sumData.DataPoints[0].Value != 3 {
		t.Errorf("expected rebuild count 3, got %+v", sumData.DataPoints)
	}
}

func TestMetricsHandler_RecordSkippedTracksReason(t *testing.T) {
	reader, mp := newTestMeter()

	h, err := tbotel.NewMetricsHandler(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetricsHandler: %v", err)
	}

	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventRecordSkipped,
		Time:    time.Now(),
		Payload: map[string]any{"reason": "disabled"},
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventRecordSkipped,
		Time:    time.Now(),
		Payload: map[string]any{"reason": "disabled"},
	})
	h.Handle(tacklebox.Event{
		Kind:    tacklebox.EventRecordSkipped,
		Time:    time.Now(),
		Payload: map[string]any{"reason": "unresolved"},
	})

	rm := collectMetrics(t, reader)

	skipMetric := findMetric(rm, "tacklebox.records.skipped")
	if skipMetric == nil {
		t.Fatal("tacklebox.records.skipped metric not found")
	}
	sumData, ok := skipMetric.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] data, got %T", skipMetric.Data)
	}
	// One data point per reason.
	if len(sumData.DataPoints) != 2 {
		t.Fatalf("expected 2 data points, got %d", len(sumData.DataPoints))
	}

	byReason := make(map[string]int64)
	for _, dp := range sumData.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if string(attr.Key) == "reason" {
				byReason[attr.Value.AsString()] = dp.Value
			}
		}
	}
	if byReason["disabled"] != 2 {
		t.Errorf("expected 2 skips for reason 'disabled', got %d", byReason["disabled"])
	}
	if byReason["unresolved"] != 1 {
		t.Errorf("expected 1 skip for reason 'unresolved', got %d", byReason["unresolved"])
	}
}

func TestMetricsHandler_IgnoresUnrelatedEvents(t *testing.T) {
	reader, mp := newTestMeter()

	h, err := tbotel.NewMetricsHandler(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetricsHandler: %v", err)
	}

	h.Handle(tacklebox.Event{Kind: tacklebox.EventToolStarted, RunID: "run-1", Time: time.Now()})
	h.Handle(tacklebox.Event{Kind: tacklebox.EventScanStarted, RunID: "run-2", Time: time.Now()})
	h.Handle(tacklebox.Event{Kind: tacklebox.EventRecordLoaded, Time: time.Now()})
	h.Handle(tacklebox.Event{Kind: tacklebox.EventManifestSaved, Time: time.Now()})

	rm := collectMetrics(t, reader)

	for _, name := range []string{
		"tacklebox.tool.invocations",
		"tacklebox.tool.failures",
		"tacklebox.scan.runs",
		"tacklebox.scan.failures",
	} {
		if m := findMetric(rm, name); m != nil {
			t.Errorf("expected no data for %s, found some", name)
		}
	}
}
