// Package chat bridges application identities to the hosted chat/video
// backend: channel lookup-or-create, membership, and short-lived credential
// minting. The backend itself owns message delivery and call signaling.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
)

var (
	// ErrNotAllowed is returned when a member operation violates the
	// channel's authorization rules.
	ErrNotAllowed = errors.New("chat: operation not allowed")
	// ErrGroupTooSmall is returned when a group is created with fewer than
	// the creator plus two other members.
	ErrGroupTooSmall = errors.New("chat: a group needs the creator and at least two other members")
	// ErrChannelNotFound is returned when the referenced channel does not exist.
	ErrChannelNotFound = errors.New("chat: channel not found")
)

// User is the identity shape pushed to the chat backend.
type User struct {
	ID   string
	Name string
}

// Backend is the boundary to the external chat SDK.
type Backend interface {
	// CreateToken mints a credential scoped to the user, valid until expire.
	CreateToken(userID string, expire time.Time) (string, error)
	// UpsertUsers creates the backend user records or updates their names.
	UpsertUsers(ctx context.Context, users ...User) error
	// CreateChannel creates a channel; an already-existing channel id is
	// success, not failure.
	CreateChannel(ctx context.Context, channelID, creatorID, name string, members []string) error
	// AddMembers adds users to a channel without duplicating membership.
	AddMembers(ctx context.Context, channelID string, userIDs ...string) error
	// RemoveMembers removes users from a channel.
	RemoveMembers(ctx context.Context, channelID string, userIDs ...string) error
	// HideChannel hides a channel for one user only; the other members keep
	// seeing it.
	HideChannel(ctx context.Context, channelID, userID string) error
	// DeleteChannel destroys a channel for everyone.
	DeleteChannel(ctx context.Context, channelID string) error
	// Channel returns the channel's creator and member list.
	Channel(ctx context.Context, channelID string) (models.Channel, error)
}
