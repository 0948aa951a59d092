package otel_test

import (
	"context"
	"testing"
	"time"

	"github.com/tackle-labs/tacklebox"
	tbotel "github.com/tackle-labs/tacklebox/otel"
)

func TestSetup_RequiresEndpoint(t *testing.T) {
	_, err := tbotel.Setup(context.Background(), tbotel.SetupConfig{})
	if err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}

func TestSetup_WiresHandlers(t *testing.T) {
	// The exporter connects lazily, so no collector is needed here.
	tel, err := tbotel.Setup(context.Background(), tbotel.SetupConfig{
		Endpoint: "localhost:4318",
		Insecure: true,
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = tel.Shutdown(ctx)
	}()

	if tel.Tracing == nil {
		t.Error("expected tracing handler")
	}
	if tel.Metrics == nil {
		t.Error("expected metrics handler")
	}

	var seen []tacklebox.Event
	handler := tel.Handler(func(e tacklebox.Event) {
		seen = append(seen, e)
	})

	handler(tacklebox.Event{Kind: tacklebox.EventMenuRebuilt, Time: time.Now()})
	if len(seen) != 1 {
		t.Fatalf("expected extra handler to see 1 event, got %d", len(seen))
	}
}
