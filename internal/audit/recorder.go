package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Recorder stamps entries with the caller and time and hands them to a sink.
// Delivery failures are logged, never returned.
type Recorder struct {
	sink   Sink
	logger *logger.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder. A nil sink discards entries.
func NewRecorder(sink Sink, log *logger.Logger) *Recorder {
	return &Recorder{sink: sink, logger: log, now: time.Now}
}

// Record builds and delivers one entry for a successful write
func (r *Recorder) Record(ctx context.Context, action, resource string, id uuid.UUID, details string) {
	if r == nil || r.sink == nil {
		return
	}

	entry := contracts.AuditEntry{
		Action:     action,
		Resource:   resource,
		ResourceID: id.String(),
		Details:    details,
		OccurredAt: r.now().UTC(),
	}
	if p, ok := contracts.PrincipalFrom(ctx); ok {
		entry.UserEmail = p.Email
	}

	if err := r.sink.Record(ctx, entry); err != nil {
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"audit_action": action,
			"resource":     resource,
			"resource_id":  entry.ResourceID,
		}).Warn("Audit delivery failed")
	}
}
