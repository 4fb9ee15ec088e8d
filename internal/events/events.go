// Package events defines the wire shape of platform role-change signals as
// they travel between the gateway and the reconciliation consumer.
package events

import "time"

// Role event types.
const (
	RoleGranted = "role_granted"
	RoleRevoked = "role_revoked"
)

// RoleEvent is one role assignment change observed on the chat platform.
type RoleEvent struct {
	Type   string `json:"type"`
	RoleID string `json:"role_id"`
	UserID string `json:"user_id"`

	// ObservedAt is when the gateway saw the event; informational only,
	// reconciliation is order-insensitive thanks to its idempotence.
	ObservedAt time.Time `json:"observed_at"`
}
