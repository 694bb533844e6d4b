package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ihere-app/ihere-backend/internal/models"
)

// defaultGroupName mirrors the name new groups start with in the app.
const defaultGroupName = "New Group"

// DirectChannelID derives the deterministic one-on-one channel id by sorting
// the two member ids and joining them. Both sides of a conversation compute
// the same id, so concurrent creation attempts converge on one channel.
func DirectChannelID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// ChannelBridge maps application identities onto the chat backend's
// channel/membership model.
type ChannelBridge struct {
	backend Backend
}

// NewChannelBridge creates a bridge over the given backend.
func NewChannelBridge(backend Backend) *ChannelBridge {
	return &ChannelBridge{backend: backend}
}

// GetOrCreateDirect resolves the one-on-one channel between two users,
// creating it if needed. The call is idempotent: repeating it returns the
// same channel id without duplicating membership.
func (b *ChannelBridge) GetOrCreateDirect(ctx context.Context, a, peer User) (string, error) {
	if a.ID == "" || peer.ID == "" {
		return "", errors.New("chat: both user ids are required")
	}
	if a.ID == peer.ID {
		return "", errors.New("chat: a direct channel needs two distinct users")
	}

	if err := b.backend.UpsertUsers(ctx, a, peer); err != nil {
		return "", fmt.Errorf("upsert chat users: %w", err)
	}

	channelID := DirectChannelID(a.ID, peer.ID)
	if err := b.backend.CreateChannel(ctx, channelID, a.ID, "Private Chat", []string{a.ID, peer.ID}); err != nil {
		return "", fmt.Errorf("create direct channel %s: %w", channelID, err)
	}
	if err := b.backend.AddMembers(ctx, channelID, a.ID, peer.ID); err != nil {
		return "", fmt.Errorf("join direct channel %s: %w", channelID, err)
	}
	return channelID, nil
}

// CreateGroup creates a group channel with a fresh random id. The creator
// plus at least two other members are required.
func (b *ChannelBridge) CreateGroup(ctx context.Context, creator User, members []User, name string) (string, error) {
	all := []User{creator}
	ids := []string{creator.ID}
	for _, m := range members {
		if m.ID == creator.ID {
			continue
		}
		all = append(all, m)
		ids = append(ids, m.ID)
	}
	if len(ids) < 3 {
		return "", ErrGroupTooSmall
	}
	if name == "" {
		name = defaultGroupName
	}

	if err := b.backend.UpsertUsers(ctx, all...); err != nil {
		return "", fmt.Errorf("upsert chat users: %w", err)
	}

	channelID := "group_" + uuid.NewString()
	if err := b.backend.CreateChannel(ctx, channelID, creator.ID, name, ids); err != nil {
		return "", fmt.Errorf("create group channel: %w", err)
	}
	return channelID, nil
}

// AddMember adds a user to a channel. Only the channel's creator may add
// members.
func (b *ChannelBridge) AddMember(ctx context.Context, channelID, actorID string, member User) error {
	ch, err := b.backend.Channel(ctx, channelID)
	if err != nil {
		return err
	}
	if ch.CreatorID != actorID {
		return ErrNotAllowed
	}
	if err := b.backend.UpsertUsers(ctx, member); err != nil {
		return fmt.Errorf("upsert chat user: %w", err)
	}
	return b.backend.AddMembers(ctx, channelID, member.ID)
}

// RemoveMember removes a user from a channel. Only the creator, or the
// member themself, may remove a member.
func (b *ChannelBridge) RemoveMember(ctx context.Context, channelID, actorID, userID string) error {
	ch, err := b.backend.Channel(ctx, channelID)
	if err != nil {
		return err
	}
	if actorID != ch.CreatorID && actorID != userID {
		return ErrNotAllowed
	}
	return b.backend.RemoveMembers(ctx, channelID, userID)
}

// Members returns a channel's member list; any authenticated user may view it.
func (b *ChannelBridge) Members(ctx context.Context, channelID string) ([]string, error) {
	ch, err := b.backend.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return ch.Members, nil
}

// Hide hides a channel for the calling user only. The other participants'
// view is untouched.
func (b *ChannelBridge) Hide(ctx context.Context, channelID, userID string) error {
	return b.backend.HideChannel(ctx, channelID, userID)
}

// DeleteGroup destroys a group channel; only its creator may do so.
func (b *ChannelBridge) DeleteGroup(ctx context.Context, channelID, actorID string) error {
	ch, err := b.backend.Channel(ctx, channelID)
	if err != nil {
		return err
	}
	if ch.CreatorID != actorID {
		return ErrNotAllowed
	}
	return b.backend.DeleteChannel(ctx, channelID)
}

// channelKind infers direct versus group from the id scheme.
func channelKind(channelID string) string {
	if len(channelID) > 6 && channelID[:6] == "group_" {
		return models.ChannelGroup
	}
	return models.ChannelDirect
}
