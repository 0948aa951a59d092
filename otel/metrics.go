package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tackle-labs/tacklebox"
)

// MetricsHandler records counters and histograms for tool invocations,
// maintenance scans, menu rebuilds, and skipped manifest records.
type MetricsHandler struct {
	toolInvocations metric.Int64Counter
	toolFailures    metric.Int64Counter
	toolDuration    metric.Float64Histogram
	scanRuns        metric.Int64Counter
	scanFailures    metric.Int64Counter
	scanDuration    metric.Float64Histogram
	menuRebuilds    metric.Int64Counter
	recordsSkipped  metric.Int64Counter
}

// NewMetricsHandler creates the instruments on the given meter.
func NewMetricsHandler(meter metric.Meter) (*MetricsHandler, error) {
	toolInv, err := meter.Int64Counter("tacklebox.tool.invocations",
		metric.WithDescription("Number of completed tool invocations"),
	)
	if err != nil {
		return nil, err
	}

	toolFail, err := meter.Int64Counter("tacklebox.tool.failures",
		metric.WithDescription("Number of failed tool invocations"),
	)
	if err != nil {
		return nil, err
	}

	toolDur, err := meter.Float64Histogram("tacklebox.tool.duration",
		metric.WithDescription("Duration of tool invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	scanRuns, err := meter.Int64Counter("tacklebox.scan.runs",
		metric.WithDescription("Number of completed maintenance scans"),
	)
	if err != nil {
		return nil, err
	}

	scanFail, err := meter.Int64Counter("tacklebox.scan.failures",
		metric.WithDescription("Number of failed maintenance scans"),
	)
	if err != nil {
		return nil, err
	}

	scanDur, err := meter.Float64Histogram("tacklebox.scan.duration",
		metric.WithDescription("Duration of maintenance scans in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rebuilds, err := meter.Int64Counter("tacklebox.menu.rebuilds",
		metric.WithDescription("Number of full menu rebuilds"),
	)
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter("tacklebox.records.skipped",
		metric.WithDescription("Number of manifest records skipped during loading"),
	)
	if err != nil {
		return nil, err
	}

	return &MetricsHandler{
		toolInvocations: toolInv,
		toolFailures:    toolFail,
		toolDuration:    toolDur,
		scanRuns:        scanRuns,
		scanFailures:    scanFail,
		scanDuration:    scanDur,
		menuRebuilds:    rebuilds,
		recordsSkipped:  skipped,
	}, nil
}

// Handle processes one event. It is a tacklebox.EventHandler.
func (h *MetricsHandler) Handle(e tacklebox.Event) {
	ctx := context.Background()
	switch e.Kind {
	case tacklebox.EventToolFinished:
		attrs := metric.WithAttributes(attribute.String("ref", e.Ref))
		h.toolInvocations.Add(ctx, 1, attrs)
		h.toolDuration.Record(ctx, e.Elapsed.Seconds(), attrs)
	case tacklebox.EventToolFailed:
		h.toolFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("ref", e.Ref)))
	case tacklebox.EventScanFinished:
		attrs := metric.WithAttributes(attribute.String("scan", e.Ref))
		h.scanRuns.Add(ctx, 1, attrs)
		h.scanDuration.Record(ctx, e.Elapsed.Seconds(), attrs)
	case tacklebox.EventScanFailed:
		h.scanFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("scan", e.Ref)))
	case tacklebox.EventMenuRebuilt:
		h.menuRebuilds.Add(ctx, 1)
	case tacklebox.EventRecordSkipped:
		reason := ""
		if r, found := e.Payload["reason"]; found {
			if s, ok := r.(string); ok {
				reason = s
			}
		}
		h.recordsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}
