package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	stream "github.com/GetStream/stream-chat-go/v6"
	"github.com/ihere-app/ihere-backend/internal/models"
)

const streamChannelType = "messaging"

// StreamBackend implements Backend on the Stream Chat API.
type StreamBackend struct {
	client *stream.Client
}

// NewStreamBackend creates a backend from the server-held API key and secret.
func NewStreamBackend(apiKey, apiSecret string) (*StreamBackend, error) {
	client, err := stream.NewClient(apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("stream client: %w", err)
	}
	return &StreamBackend{client: client}, nil
}

func (s *StreamBackend) CreateToken(userID string, expire time.Time) (string, error) {
	return s.client.CreateToken(userID, expire)
}

func (s *StreamBackend) UpsertUsers(ctx context.Context, users ...User) error {
	streamUsers := make([]*stream.User, 0, len(users))
	for _, u := range users {
		streamUsers = append(streamUsers, &stream.User{ID: u.ID, Name: u.Name})
	}
	_, err := s.client.UpsertUsers(ctx, streamUsers...)
	return err
}

// CreateChannel relies on Stream's get-or-create semantics: creating an
// existing channel id returns the existing channel.
func (s *StreamBackend) CreateChannel(ctx context.Context, channelID, creatorID, name string, members []string) error {
	_, err := s.client.CreateChannel(ctx, streamChannelType, channelID, creatorID, &stream.ChannelRequest{
		Members:   members,
		ExtraData: map[string]interface{}{"name": name},
	})
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil
	}
	return err
}

func (s *StreamBackend) AddMembers(ctx context.Context, channelID string, userIDs ...string) error {
	ch := s.client.Channel(streamChannelType, channelID)
	_, err := ch.AddMembers(ctx, userIDs)
	return err
}

func (s *StreamBackend) RemoveMembers(ctx context.Context, channelID string, userIDs ...string) error {
	ch := s.client.Channel(streamChannelType, channelID)
	_, err := ch.RemoveMembers(ctx, userIDs, nil)
	return err
}

func (s *StreamBackend) HideChannel(ctx context.Context, channelID, userID string) error {
	ch := s.client.Channel(streamChannelType, channelID)
	_, err := ch.Hide(ctx, userID)
	return err
}

func (s *StreamBackend) DeleteChannel(ctx context.Context, channelID string) error {
	ch := s.client.Channel(streamChannelType, channelID)
	_, err := ch.Delete(ctx)
	return err
}

func (s *StreamBackend) Channel(ctx context.Context, channelID string) (models.Channel, error) {
	resp, err := s.client.QueryChannels(ctx, &stream.QueryOption{
		Filter: map[string]interface{}{"id": channelID},
	})
	if err != nil {
		return models.Channel{}, err
	}
	if len(resp.Channels) == 0 {
		return models.Channel{}, ErrChannelNotFound
	}

	ch := resp.Channels[0]
	out := models.Channel{
		ID:   channelID,
		Kind: channelKind(channelID),
	}
	if name, ok := ch.ExtraData["name"].(string); ok {
		out.Name = name
	}
	if ch.CreatedBy != nil {
		out.CreatorID = ch.CreatedBy.ID
	}
	for _, m := range ch.Members {
		if m.User != nil {
			out.Members = append(out.Members, m.User.ID)
		}
	}
	return out, nil
}
