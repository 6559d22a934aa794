package worker

import (
	"context"
	"fmt"
	"log/slog"

	"factoring/internal/amqp"
	"factoring/internal/export"
)

// AuditWorker consumes ingest audit events and records them. When an
// appender is configured the events are also written to an external trail.
type AuditWorker struct {
	appender export.AuditAppender
}

func NewAuditWorker(appender export.AuditAppender) *AuditWorker {
	return &AuditWorker{appender: appender}
}

// HandleEvent processes a single audit event from the queue.
func (w *AuditWorker) HandleEvent(ctx context.Context, event *amqp.AuditEvent) error {
	switch event.Event {
	case amqp.EventBatchIngested:
		slog.InfoContext(ctx, "Batch ingested",
			"batch_size", event.BatchSize,
			"inserted", event.Inserted,
			"duplicates_skipped", event.DuplicatesSkipped,
			"timestamp", event.Timestamp)
	case amqp.EventRateMiss:
		slog.WarnContext(ctx, "Missing conversion rate",
			"from_currency", event.FromCurrency,
			"to_currency", event.ToCurrency,
			"count", event.Count,
			"timestamp", event.Timestamp)
	case amqp.EventStoreReset:
		slog.InfoContext(ctx, "Store reset",
			"timestamp", event.Timestamp)
	default:
		return fmt.Errorf("unknown audit event: %q", event.Event)
	}

	if w.appender == nil {
		return nil
	}

	ref, err := w.appender.Append(ctx, event)
	if err != nil {
		return fmt.Errorf("append audit trail: %w", err)
	}

	slog.DebugContext(ctx, "Recorded audit event", "event", event.Event, "ref", ref)
	return nil
}
