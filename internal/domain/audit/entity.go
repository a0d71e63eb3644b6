package audit

import "time"

type Action string

const (
	ActionRequestCreated     Action = "request_created"
	ActionRequestApproved    Action = "request_approved"
	ActionRequestRejected    Action = "request_rejected"
	ActionInviteSent         Action = "invite_sent"
	ActionInviteResent       Action = "invite_resent"
	ActionInviteRevoked      Action = "invite_revoked"
	ActionInviteAccepted     Action = "invite_accepted"
	ActionEntitlementChanged Action = "entitlement_changed"
)

const (
	EntityLeaveRequest = "leave_requests"
	EntityInvite       = "invite"
	EntityEntitlement  = "entitlements"
	EntityUser         = "users"
)

// Entry is an append-only record of an administrative or workflow event.
type Entry struct {
	ID          string
	ActorUserID *string
	Action      Action
	EntityType  string
	EntityID    string
	Note        *string
	CreatedAt   time.Time
}
