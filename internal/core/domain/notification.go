package domain

import "time"

// SettlementMessage is the informational message emitted when a swap settles.
const SettlementMessage = "Currency has been processed"

// Notification is an informational event for the UI toast collaborator.
type Notification struct {
	SessionID string     `json:"sessionID"`
	Message   string     `json:"message"`
	Result    SwapResult `json:"result"`
	At        time.Time  `json:"at"`
}
