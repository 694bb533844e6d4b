package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_SetGetDelete(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	err := c.Set(ctx, "users/u1", map[string]interface{}{"username": "ana"})
	require.NoError(t, err)

	doc, err := c.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.ID)
	assert.Equal(t, "ana", doc.Data["username"])

	_, err = c.Get(ctx, "users/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Delete(ctx, "users/u1"))
	_, err = c.Get(ctx, "users/u1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing document is a no-op.
	assert.NoError(t, c.Delete(ctx, "users/u1"))
}

func TestMemoryClient_GetReturnsCopy(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "users/u1", map[string]interface{}{"username": "ana"}))

	doc, err := c.Get(ctx, "users/u1")
	require.NoError(t, err)
	doc.Data["username"] = "mutated"

	again, err := c.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, "ana", again.Data["username"])
}

func TestMemoryClient_Update(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "users/u1", map[string]interface{}{"username": "ana", "location": "Rio"}))
	require.NoError(t, c.Update(ctx, "users/u1", map[string]interface{}{"location": "Lima"}))

	doc, err := c.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, "ana", doc.Data["username"])
	assert.Equal(t, "Lima", doc.Data["location"])

	assert.ErrorIs(t, c.Update(ctx, "users/missing", map[string]interface{}{"x": 1}), ErrNotFound)
}

func TestMemoryClient_GetAllFiltersAndOrder(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, c.Set(ctx, "posts/p1", map[string]interface{}{"userId": "a", "createdAt": base}))
	require.NoError(t, c.Set(ctx, "posts/p2", map[string]interface{}{"userId": "b", "createdAt": base.Add(time.Hour)}))
	require.NoError(t, c.Set(ctx, "posts/p3", map[string]interface{}{"userId": "a", "createdAt": base.Add(2 * time.Hour)}))

	docs, err := c.GetAll(ctx, Query{
		Collection: "posts",
		Filters:    []Filter{{Field: "userId", Op: "==", Value: "a"}},
		OrderBy:    "createdAt",
		Direction:  Descending,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "p3", docs[0].ID)
	assert.Equal(t, "p1", docs[1].ID)

	docs, err = c.GetAll(ctx, Query{Collection: "posts", OrderBy: "createdAt", Direction: Ascending, Limit: 2})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "p1", docs[0].ID)
	assert.Equal(t, "p2", docs[1].ID)
}

func TestMemoryClient_GetAllInFilter(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "users/u1", map[string]interface{}{"id": "u1"}))
	require.NoError(t, c.Set(ctx, "users/u2", map[string]interface{}{"id": "u2"}))
	require.NoError(t, c.Set(ctx, "users/u3", map[string]interface{}{"id": "u3"}))

	docs, err := c.GetAll(ctx, Query{
		Collection: "users",
		Filters:    []Filter{{Field: "id", Op: "in", Value: []string{"u1", "u3", "nope"}}},
	})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestMemoryClient_SubcollectionsAreIsolated(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "posts/p1/likes/u1", map[string]interface{}{"userId": "u1"}))
	require.NoError(t, c.Set(ctx, "posts/p2/likes/u1", map[string]interface{}{"userId": "u1"}))

	docs, err := c.GetAll(ctx, Query{Collection: "posts/p1/likes"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "u1", docs[0].ID)
}

func TestMemoryClient_ListenDeliversInitialAndChanges(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "posts/p1", map[string]interface{}{"userId": "a"}))

	var snaps []Snapshot
	cancel, err := c.Listen(ctx, Query{Collection: "posts"}, func(s Snapshot) {
		snaps = append(snaps, s)
	})
	require.NoError(t, err)

	require.Len(t, snaps, 1)
	assert.Len(t, snaps[0].Docs, 1)

	require.NoError(t, c.Set(ctx, "posts/p2", map[string]interface{}{"userId": "b"}))
	require.Len(t, snaps, 2)
	assert.Len(t, snaps[1].Docs, 2)

	// A write to another collection does not fire the listener.
	require.NoError(t, c.Set(ctx, "users/u1", map[string]interface{}{"id": "u1"}))
	assert.Len(t, snaps, 2)

	cancel()
	cancel() // idempotent
	assert.Equal(t, 0, c.ListenerCount())

	require.NoError(t, c.Set(ctx, "posts/p3", map[string]interface{}{"userId": "c"}))
	assert.Len(t, snaps, 2)
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "posts/p1/likes/u1", Path("posts", "p1", "likes", "u1"))
	assert.Equal(t, "posts/p1/likes", parentCollection("posts/p1/likes/u1"))
	assert.Equal(t, "u1", docID("posts/p1/likes/u1"))
}
