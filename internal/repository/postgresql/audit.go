package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepositoryImpl{db: db}
}

// Create implements audit.AuditRepository.
func (r *auditRepositoryImpl) Create(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_log (actor_user_id, action, entity_type, entity_id, note)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := q.Exec(ctx, query, entry.ActorUserID, entry.Action, entry.EntityType, entry.EntityID, entry.Note); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	return nil
}
