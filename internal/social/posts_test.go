package social

import (
	"context"
	"testing"
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreateAndGet(t *testing.T) {
	mem := store.NewMemoryClient()
	svc := NewPostService(mem, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, "bob", models.CreatePostRequest{Caption: "sunset", MediaURL: "https://cdn/x.jpg", MediaType: models.MediaImage})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.Equal(t, models.MediaImage, p.MediaType)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "sunset", got.Caption)
	assert.Equal(t, "bob", got.UserID)
	assert.Equal(t, 0, got.LikeCount)
	assert.Equal(t, 0, got.CommentCount)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_CreateDefaultsMediaType(t *testing.T) {
	mem := store.NewMemoryClient()
	svc := NewPostService(mem, nil)

	p, err := svc.Create(context.Background(), "bob", models.CreatePostRequest{Caption: "text only"})
	require.NoError(t, err)
	assert.Equal(t, models.MediaNone, p.MediaType)
}

func TestPostService_GetDerivesCounts(t *testing.T) {
	mem := store.NewMemoryClient()
	svc := NewPostService(mem, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, "bob", models.CreatePostRequest{Caption: "sunset"})
	require.NoError(t, err)

	require.NoError(t, mem.Set(ctx, store.Path(models.LikesCollection(p.ID), "alice"), map[string]interface{}{"userId": "alice"}))
	require.NoError(t, mem.Set(ctx, store.Path(models.LikesCollection(p.ID), "carol"), map[string]interface{}{"userId": "carol"}))
	_, err = mem.Add(ctx, models.CommentsCollection(p.ID), map[string]interface{}{"userId": "alice", "text": "nice"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LikeCount)
	assert.Equal(t, 1, got.CommentCount)
}

func TestPostService_FeedNewestFirst(t *testing.T) {
	mem := store.NewMemoryClient()
	svc := NewPostService(mem, nil)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, caption := range []string{"oldest", "middle", "newest"} {
		tm := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return tm }
		_, err := svc.Create(ctx, "bob", models.CreatePostRequest{Caption: caption})
		require.NoError(t, err)
	}

	feed, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "newest", feed[0].Caption)
	assert.Equal(t, "oldest", feed[2].Caption)
}

func TestPostService_UpdateAuthorOnly(t *testing.T) {
	mem := store.NewMemoryClient()
	svc := NewPostService(mem, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, "bob", models.CreatePostRequest{Caption: "before"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "alice", p.ID, models.UpdatePostRequest{Caption: "hacked"})
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	updated, err := svc.Update(ctx, "bob", p.ID, models.UpdatePostRequest{Caption: "after"})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Caption)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Caption)
}

func TestPostService_DeleteCascades(t *testing.T) {
	mem := store.NewMemoryClient()
	svc := NewPostService(mem, nil)
	fanout := NewFanout(mem)
	ctx := context.Background()

	p, err := svc.Create(ctx, "bob", models.CreatePostRequest{Caption: "sunset"})
	require.NoError(t, err)
	post := models.Post{ID: p.ID, UserID: "bob", Caption: "sunset"}

	// Build up attached state: a like, a comment, and their notifications.
	toggle := NewLikeToggle(mem, fanout, alice, post)
	require.NoError(t, toggle.Like(ctx))
	comments := NewCommentService(mem, fanout)
	_, err = comments.Add(ctx, alice, p.ID, "nice")
	require.NoError(t, err)

	err = svc.Delete(ctx, "alice", p.ID)
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	require.NoError(t, svc.Delete(ctx, "bob", p.ID))

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	likes, err := mem.GetAll(ctx, store.Query{Collection: models.LikesCollection(p.ID)})
	require.NoError(t, err)
	assert.Empty(t, likes)

	cs, err := mem.GetAll(ctx, store.Query{Collection: models.CommentsCollection(p.ID)})
	require.NoError(t, err)
	assert.Empty(t, cs)

	notifs, err := mem.GetAll(ctx, store.Query{Collection: models.CollectionNotifications})
	require.NoError(t, err)
	assert.Empty(t, notifs, "notifications referencing the post are swept")
}

func TestPostService_ListByAuthor(t *testing.T) {
	mem := store.NewMemoryClient()
	svc := NewPostService(mem, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "bob", models.CreatePostRequest{Caption: "one"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", models.CreatePostRequest{Caption: "two"})
	require.NoError(t, err)

	posts, err := svc.ListByAuthor(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "one", posts[0].Caption)
}
