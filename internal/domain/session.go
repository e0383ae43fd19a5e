package domain

import "time"

// Session event types delivered to session subscribers.
const (
	SessionSignedIn  = "SIGNED_IN"
	SessionSignedOut = "SIGNED_OUT"
)

// SessionEvent notifies listeners that a user's session state changed.
type SessionEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}
