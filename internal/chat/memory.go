package chat

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ihere-app/ihere-backend/internal/models"
)

// MemoryBackend implements Backend in process. It backs the "memory" chat
// driver for local development and the test suites; tokens are real signed
// JWTs so clients can still treat them as opaque capabilities.
type MemoryBackend struct {
	secret []byte

	mu       sync.Mutex
	users    map[string]User
	channels map[string]*memChannel
}

type memChannel struct {
	creatorID string
	name      string
	members   []string
	hiddenFor map[string]bool
}

// NewMemoryBackend creates an empty in-process backend signing tokens with
// the given secret.
func NewMemoryBackend(secret string) *MemoryBackend {
	return &MemoryBackend{
		secret:   []byte(secret),
		users:    make(map[string]User),
		channels: make(map[string]*memChannel),
	}
}

func (m *MemoryBackend) CreateToken(userID string, expire time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     expire.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *MemoryBackend) UpsertUsers(ctx context.Context, users ...User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		m.users[u.ID] = u
	}
	return nil
}

func (m *MemoryBackend) CreateChannel(ctx context.Context, channelID, creatorID, name string, members []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.channels[channelID]; exists {
		return nil
	}
	ch := &memChannel{creatorID: creatorID, name: name, hiddenFor: make(map[string]bool)}
	for _, id := range members {
		ch.addMember(id)
	}
	m.channels[channelID] = ch
	return nil
}

func (m *MemoryBackend) AddMembers(ctx context.Context, channelID string, userIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channelID]
	if !ok {
		return ErrChannelNotFound
	}
	for _, id := range userIDs {
		ch.addMember(id)
	}
	return nil
}

func (m *MemoryBackend) RemoveMembers(ctx context.Context, channelID string, userIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channelID]
	if !ok {
		return ErrChannelNotFound
	}
	for _, id := range userIDs {
		for i, member := range ch.members {
			if member == id {
				ch.members = append(ch.members[:i], ch.members[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (m *MemoryBackend) HideChannel(ctx context.Context, channelID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channelID]
	if !ok {
		return ErrChannelNotFound
	}
	ch.hiddenFor[userID] = true
	return nil
}

func (m *MemoryBackend) DeleteChannel(ctx context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[channelID]; !ok {
		return ErrChannelNotFound
	}
	delete(m.channels, channelID)
	return nil
}

func (m *MemoryBackend) Channel(ctx context.Context, channelID string) (models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channelID]
	if !ok {
		return models.Channel{}, ErrChannelNotFound
	}
	members := make([]string, len(ch.members))
	copy(members, ch.members)
	return models.Channel{
		ID:        channelID,
		Kind:      channelKind(channelID),
		Name:      ch.name,
		CreatorID: ch.creatorID,
		Members:   members,
	}, nil
}

// Hidden reports whether the channel is hidden for the user; tests use it to
// verify hide is per-user rather than destructive.
func (m *MemoryBackend) Hidden(channelID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channelID]
	return ok && ch.hiddenFor[userID]
}

func (ch *memChannel) addMember(id string) {
	for _, member := range ch.members {
		if member == id {
			return
		}
	}
	ch.members = append(ch.members, id)
}
