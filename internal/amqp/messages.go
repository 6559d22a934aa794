package amqp

import (
	"encoding/json"
	"time"
)

// Audit event types. These surface the two silent ingestion behaviors
// (duplicate skip, missing rate pair) so downstream consumers can observe
// them without changing the wire-level semantics.
const (
	EventBatchIngested = "batch_ingested"
	EventRateMiss      = "rate_miss"
	EventStoreReset    = "store_reset"
)

// AuditEvent is the single message shape published on the audit queue.
// Fields outside the common set are populated per event type.
type AuditEvent struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`

	// batch_ingested
	BatchSize         int `json:"batch_size,omitempty"`
	Inserted          int `json:"inserted,omitempty"`
	DuplicatesSkipped int `json:"duplicates_skipped,omitempty"`

	// rate_miss
	FromCurrency string `json:"from_currency,omitempty"`
	ToCurrency   string `json:"to_currency,omitempty"`
	Count        int    `json:"count,omitempty"`
}

// NewBatchIngestedEvent records the outcome of one accepted batch.
func NewBatchIngestedEvent(batchSize, inserted, skipped int) *AuditEvent {
	return &AuditEvent{
		Event:             EventBatchIngested,
		Timestamp:         time.Now(),
		BatchSize:         batchSize,
		Inserted:          inserted,
		DuplicatesSkipped: skipped,
	}
}

// NewRateMissEvent records records aggregated without conversion because
// their currency pair was absent from the rate table.
func NewRateMissEvent(from, to string, count int) *AuditEvent {
	return &AuditEvent{
		Event:        EventRateMiss,
		Timestamp:    time.Now(),
		FromCurrency: from,
		ToCurrency:   to,
		Count:        count,
	}
}

// NewStoreResetEvent records a full store wipe.
func NewStoreResetEvent() *AuditEvent {
	return &AuditEvent{
		Event:     EventStoreReset,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *AuditEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// AuditEventFromJSON creates an event from JSON bytes
func AuditEventFromJSON(data []byte) (*AuditEvent, error) {
	var e AuditEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
