package audit

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
)

type recorderImpl struct {
	audit.AuditRepository
}

func NewRecorder(auditRepository audit.AuditRepository) audit.Recorder {
	return &recorderImpl{AuditRepository: auditRepository}
}

// Record writes an audit entry. It runs detached from ctx cancellation so a
// finished HTTP request does not abort the write; failures are only logged.
func (r *recorderImpl) Record(ctx context.Context, actorID string, action audit.Action, entityType, entityID string, note string) {
	entry := audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if actorID != "" {
		entry.ActorUserID = &actorID
	}
	if note != "" {
		entry.Note = &note
	}

	if err := r.AuditRepository.Create(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("failed to record audit entry",
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err,
		)
	}
}
