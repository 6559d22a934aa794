package export

import (
	"context"

	"factoring/internal/amqp"
)

// Ports for outbound audit-trail adapters.
type (
	// AuditAppender persists a single audit event to an external trail.
	AuditAppender interface {
		Append(ctx context.Context, event *amqp.AuditEvent) (rowRef string, err error)
	}
)
