package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ana  = User{ID: "ana", Name: "Ana"}
	ben  = User{ID: "ben", Name: "Ben"}
	cleo = User{ID: "cleo", Name: "Cleo"}
	dave = User{ID: "dave", Name: "Dave"}
)

func newBridge() (*MemoryBackend, *ChannelBridge) {
	backend := NewMemoryBackend("test-secret")
	return backend, NewChannelBridge(backend)
}

func TestDirectChannelID_OrderIndependent(t *testing.T) {
	assert.Equal(t, "ana_ben", DirectChannelID("ana", "ben"))
	assert.Equal(t, "ana_ben", DirectChannelID("ben", "ana"))
}

func TestChannelBridge_GetOrCreateDirect(t *testing.T) {
	backend, bridge := newBridge()
	ctx := context.Background()

	id, err := bridge.GetOrCreateDirect(ctx, ana, ben)
	require.NoError(t, err)
	assert.Equal(t, "ana_ben", id)

	ch, err := backend.Channel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ChannelDirect, ch.Kind)
	assert.ElementsMatch(t, []string{"ana", "ben"}, ch.Members)
}

func TestChannelBridge_DirectIsIdempotentFromEitherSide(t *testing.T) {
	backend, bridge := newBridge()
	ctx := context.Background()

	first, err := bridge.GetOrCreateDirect(ctx, ana, ben)
	require.NoError(t, err)
	second, err := bridge.GetOrCreateDirect(ctx, ben, ana)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	ch, err := backend.Channel(ctx, first)
	require.NoError(t, err)
	assert.Len(t, ch.Members, 2, "repeat creation must not duplicate members")
}

func TestChannelBridge_DirectRejectsSelf(t *testing.T) {
	_, bridge := newBridge()
	_, err := bridge.GetOrCreateDirect(context.Background(), ana, ana)
	assert.Error(t, err)
}

func TestChannelBridge_CreateGroup(t *testing.T) {
	backend, bridge := newBridge()
	ctx := context.Background()

	id, err := bridge.CreateGroup(ctx, ana, []User{ben, cleo}, "Trip")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "group_"))

	ch, err := backend.Channel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ChannelGroup, ch.Kind)
	assert.Equal(t, "Trip", ch.Name)
	assert.Equal(t, "ana", ch.CreatorID)
	assert.ElementsMatch(t, []string{"ana", "ben", "cleo"}, ch.Members)
}

func TestChannelBridge_CreateGroupDefaultsName(t *testing.T) {
	backend, bridge := newBridge()
	ctx := context.Background()

	id, err := bridge.CreateGroup(ctx, ana, []User{ben, cleo}, "")
	require.NoError(t, err)

	ch, err := backend.Channel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New Group", ch.Name)
}

func TestChannelBridge_CreateGroupTooSmall(t *testing.T) {
	_, bridge := newBridge()
	ctx := context.Background()

	_, err := bridge.CreateGroup(ctx, ana, []User{ben}, "Tiny")
	assert.ErrorIs(t, err, ErrGroupTooSmall)

	// Listing the creator among the members does not count them twice.
	_, err = bridge.CreateGroup(ctx, ana, []User{ana, ben}, "Tiny")
	assert.ErrorIs(t, err, ErrGroupTooSmall)
}

func TestChannelBridge_GroupIDsAreUnique(t *testing.T) {
	_, bridge := newBridge()
	ctx := context.Background()

	a, err := bridge.CreateGroup(ctx, ana, []User{ben, cleo}, "One")
	require.NoError(t, err)
	b, err := bridge.CreateGroup(ctx, ana, []User{ben, cleo}, "Two")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestChannelBridge_AddMemberCreatorOnly(t *testing.T) {
	backend, bridge := newBridge()
	ctx := context.Background()

	id, err := bridge.CreateGroup(ctx, ana, []User{ben, cleo}, "Trip")
	require.NoError(t, err)

	err = bridge.AddMember(ctx, id, "ben", dave)
	assert.ErrorIs(t, err, ErrNotAllowed)

	require.NoError(t, bridge.AddMember(ctx, id, "ana", dave))

	// Adding the same member twice keeps the list deduplicated.
	require.NoError(t, bridge.AddMember(ctx, id, "ana", dave))

	ch, err := backend.Channel(ctx, id)
	require.NoError(t, err)
	assert.Len(t, ch.Members, 4)
}

func TestChannelBridge_RemoveMemberCreatorOrSelf(t *testing.T) {
	backend, bridge := newBridge()
	ctx := context.Background()

	id, err := bridge.CreateGroup(ctx, ana, []User{ben, cleo}, "Trip")
	require.NoError(t, err)

	// A regular member cannot remove someone else.
	err = bridge.RemoveMember(ctx, id, "ben", "cleo")
	assert.ErrorIs(t, err, ErrNotAllowed)

	// But may leave on their own.
	require.NoError(t, bridge.RemoveMember(ctx, id, "ben", "ben"))

	// And the creator can remove anyone.
	require.NoError(t, bridge.RemoveMember(ctx, id, "ana", "cleo"))

	ch, err := backend.Channel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, ch.Members)
}

func TestChannelBridge_HideIsPerUser(t *testing.T) {
	backend, bridge := newBridge()
	ctx := context.Background()

	id, err := bridge.GetOrCreateDirect(ctx, ana, ben)
	require.NoError(t, err)

	require.NoError(t, bridge.Hide(ctx, id, "ana"))

	assert.True(t, backend.Hidden(id, "ana"))
	assert.False(t, backend.Hidden(id, "ben"))

	// The channel itself is untouched.
	ch, err := backend.Channel(ctx, id)
	require.NoError(t, err)
	assert.Len(t, ch.Members, 2)
}

func TestChannelBridge_DeleteGroupCreatorOnly(t *testing.T) {
	backend, bridge := newBridge()
	ctx := context.Background()

	id, err := bridge.CreateGroup(ctx, ana, []User{ben, cleo}, "Trip")
	require.NoError(t, err)

	err = bridge.DeleteGroup(ctx, id, "ben")
	assert.ErrorIs(t, err, ErrNotAllowed)

	require.NoError(t, bridge.DeleteGroup(ctx, id, "ana"))

	_, err = backend.Channel(ctx, id)
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestChannelBridge_MembersMissingChannel(t *testing.T) {
	_, bridge := newBridge()
	_, err := bridge.Members(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}
