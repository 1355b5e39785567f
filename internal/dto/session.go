package dto

import "time"

// CreateSessionResponse is returned when a swap session is opened.
type CreateSessionResponse struct {
	SessionID string    `json:"sessionID"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
