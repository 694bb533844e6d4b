package models

import "time"

// IssuedCredential is the server-side audit record for a chat credential
// minted by the token exchange (PostgreSQL).
type IssuedCredential struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	ChannelID string    `json:"channel_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
