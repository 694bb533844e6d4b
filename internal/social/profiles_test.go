package social

import (
	"context"
	"testing"

	"github.com/ihere-app/ihere-backend/internal/cache"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth records which identities were deleted.
type fakeAuth struct {
	deleted []string
}

func (f *fakeAuth) DeleteUser(ctx context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func newProfileFixture() (*store.MemoryClient, *ProfileService, *fakeAuth) {
	mem := store.NewMemoryClient()
	users := cache.NewEntityCache(mem, models.CollectionUsers)
	posts := NewPostService(mem, nil)
	auth := &fakeAuth{}
	return mem, NewProfileService(mem, users, posts, auth), auth
}

func TestProfileService_CreateAndGet(t *testing.T) {
	_, svc, _ := newProfileFixture()
	ctx := context.Background()

	u, err := svc.Create(ctx, "u1", models.CreateProfileRequest{Username: "ana", FullName: "Ana B", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
	assert.Equal(t, "Ana B", got.FullName)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileService_UpdateRefreshesCache(t *testing.T) {
	_, svc, _ := newProfileFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", models.CreateProfileRequest{Username: "ana"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "u1", models.UpdateProfileRequest{FullName: "Ana Updated", Location: "Lima"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Updated", updated.FullName)
	assert.Equal(t, "Lima", updated.Location)
	assert.Equal(t, "ana", updated.Username, "untouched fields survive")

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Updated", got.FullName)
}

func TestProfileService_UpdateMissing(t *testing.T) {
	_, svc, _ := newProfileFixture()
	_, err := svc.Update(context.Background(), "ghost", models.UpdateProfileRequest{FullName: "X"})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileService_SearchCaseInsensitive(t *testing.T) {
	_, svc, _ := newProfileFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", models.CreateProfileRequest{Username: "anagram", FullName: "Grace"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u2", models.CreateProfileRequest{Username: "bob", FullName: "Diana Prince"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u3", models.CreateProfileRequest{Username: "carol", FullName: "Carol"})
	require.NoError(t, err)

	found, err := svc.Search(ctx, "ANA")
	require.NoError(t, err)
	require.Len(t, found, 2, "matches username and full name")

	ids := []string{found[0].ID, found[1].ID}
	assert.Contains(t, ids, "u1")
	assert.Contains(t, ids, "u2")
}

func TestProfileService_DeleteAccountCascades(t *testing.T) {
	mem, svc, auth := newProfileFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", models.CreateProfileRequest{Username: "ana"})
	require.NoError(t, err)

	posts := NewPostService(mem, nil)
	p, err := posts.Create(ctx, "u1", models.CreatePostRequest{Caption: "mine"})
	require.NoError(t, err)

	// A like on the victim's post from someone else produced a notification
	// addressed to the victim.
	fanout := NewFanout(mem)
	toggle := NewLikeToggle(mem, fanout, models.User{ID: "other"}, models.Post{ID: p.ID, UserID: "u1", Caption: "mine"})
	require.NoError(t, toggle.Like(ctx))

	require.NoError(t, svc.DeleteAccount(ctx, "u1"))

	_, err = svc.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	remaining, err := mem.GetAll(ctx, store.Query{Collection: models.CollectionPosts})
	require.NoError(t, err)
	assert.Empty(t, remaining)

	notifs, err := mem.GetAll(ctx, store.Query{Collection: models.CollectionNotifications})
	require.NoError(t, err)
	assert.Empty(t, notifs)

	assert.Equal(t, []string{"u1"}, auth.deleted)
}

func TestProfileService_SetProfilePicture(t *testing.T) {
	_, svc, _ := newProfileFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", models.CreateProfileRequest{Username: "ana"})
	require.NoError(t, err)

	require.NoError(t, svc.SetProfilePicture(ctx, "u1", "https://cdn/pic.jpg"))

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/pic.jpg", got.ProfilePic)
}
