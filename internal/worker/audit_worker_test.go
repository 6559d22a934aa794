package worker

import (
	"context"
	"testing"
	"time"

	"factoring/internal/amqp"
	exportmem "factoring/internal/export/memory"
)

func TestHandleEventAppendsTrail(t *testing.T) {
	trail := exportmem.New()
	w := NewAuditWorker(trail)

	event := amqp.NewBatchIngestedEvent(10, 8, 2)
	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	events := trail.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 trail event, got %d", len(events))
	}
	got := events[0]
	if got.Event != amqp.EventBatchIngested {
		t.Errorf("event = %q, want %q", got.Event, amqp.EventBatchIngested)
	}
	if got.BatchSize != 10 || got.Inserted != 8 || got.DuplicatesSkipped != 2 {
		t.Errorf("counts = (%d, %d, %d), want (10, 8, 2)",
			got.BatchSize, got.Inserted, got.DuplicatesSkipped)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("stale timestamp: %v", got.Timestamp)
	}
}

func TestHandleEventWithoutAppender(t *testing.T) {
	w := NewAuditWorker(nil)

	if err := w.HandleEvent(context.Background(), amqp.NewRateMissEvent("JPY", "EUR", 3)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if err := w.HandleEvent(context.Background(), amqp.NewStoreResetEvent()); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func TestHandleEventUnknown(t *testing.T) {
	w := NewAuditWorker(nil)

	err := w.HandleEvent(context.Background(), &amqp.AuditEvent{Event: "bogus"})
	if err == nil {
		t.Fatal("expected error for unknown event")
	}
}
