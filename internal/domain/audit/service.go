package audit

import "context"

// Recorder appends audit entries on a best-effort basis. Failures are logged
// by the implementation and never reach the caller.
type Recorder interface {
	Record(ctx context.Context, actorID string, action Action, entityType, entityID string, note string)
}
