package social

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ihere-app/ihere-backend/internal/livequery"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/store"
)

// SyncState tracks how far a locally displayed value has been confirmed by
// the store.
type SyncState int

const (
	StateConfirmed SyncState = iota
	StatePending
	StateRolledBack
)

func (s SyncState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRolledBack:
		return "rolled_back"
	}
	return "confirmed"
}

// LikeToggle is the optimistic like state machine for one (post, user) pair.
// The like document is the sole source of truth; the local count is only a
// display value that is rolled back when a write fails and reconciled
// through the likes sub-collection listener.
type LikeToggle struct {
	client store.Client
	fanout *Fanout
	actor  models.User
	post   models.Post
	now    func() time.Time

	mu    sync.Mutex
	liked bool
	count int
	state SyncState
}

// NewLikeToggle creates a toggle for the actor on the post.
func NewLikeToggle(client store.Client, fanout *Fanout, actor models.User, post models.Post) *LikeToggle {
	return &LikeToggle{
		client: client,
		fanout: fanout,
		actor:  actor,
		post:   post,
		now:    time.Now,
	}
}

func (t *LikeToggle) likePath() string {
	return store.Path(models.LikesCollection(t.post.ID), t.actor.ID)
}

// Refresh loads the confirmed server state (count and liked flag) as the
// baseline for optimistic updates.
func (t *LikeToggle) Refresh(ctx context.Context) error {
	docs, err := t.client.GetAll(ctx, store.Query{Collection: models.LikesCollection(t.post.ID)})
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.applyConfirmed(docs)
	t.mu.Unlock()
	return nil
}

// Toggle flips between liked and not-liked based on the current record.
func (t *LikeToggle) Toggle(ctx context.Context) error {
	_, err := t.client.Get(ctx, t.likePath())
	switch {
	case err == nil:
		return t.Unlike(ctx)
	case errors.Is(err, store.ErrNotFound):
		return t.Like(ctx)
	default:
		return err
	}
}

// Like creates the like record. Liking an already-liked post is a no-op, so
// retries are idempotent. The displayed count is incremented before the
// write and rolled back if the write fails. On success a notification is
// emitted unless the actor owns the post; fanout failures never undo the
// like itself.
func (t *LikeToggle) Like(ctx context.Context) error {
	_, err := t.client.Get(ctx, t.likePath())
	if err == nil {
		t.mu.Lock()
		t.liked = true
		t.mu.Unlock()
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	t.mu.Lock()
	t.liked = true
	t.count++
	t.state = StatePending
	t.mu.Unlock()

	like := models.Like{PostID: t.post.ID, UserID: t.actor.ID, CreatedAt: t.now()}
	if err := t.client.Set(ctx, t.likePath(), like.Doc()); err != nil {
		t.mu.Lock()
		t.liked = false
		t.count--
		t.state = StateRolledBack
		t.mu.Unlock()
		return err
	}

	t.mu.Lock()
	t.state = StateConfirmed
	t.mu.Unlock()

	if t.fanout != nil {
		if err := t.fanout.Apply(ctx, Action{Kind: ActionLikeCreated, Actor: t.actor, Post: t.post}); err != nil {
			log.Printf("like fanout for post %s: %v", t.post.ID, err)
		}
	}
	return nil
}

// Unlike removes the like record and retracts the matching notification.
// Unliking a post that is not liked is a no-op.
func (t *LikeToggle) Unlike(ctx context.Context) error {
	_, err := t.client.Get(ctx, t.likePath())
	if errors.Is(err, store.ErrNotFound) {
		t.mu.Lock()
		t.liked = false
		t.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.liked = false
	t.count--
	t.state = StatePending
	t.mu.Unlock()

	if err := t.client.Delete(ctx, t.likePath()); err != nil {
		t.mu.Lock()
		t.liked = true
		t.count++
		t.state = StateRolledBack
		t.mu.Unlock()
		return err
	}

	t.mu.Lock()
	t.state = StateConfirmed
	t.mu.Unlock()

	if t.fanout != nil {
		if err := t.fanout.Apply(ctx, Action{Kind: ActionLikeRemoved, Actor: t.actor, Post: t.post}); err != nil {
			log.Printf("like retract for post %s: %v", t.post.ID, err)
		}
	}
	return nil
}

// Attach reconciles the toggle through a live query on the likes
// sub-collection, anchoring the displayed state to the like records.
func (t *LikeToggle) Attach(ctx context.Context, lq *livequery.Manager, viewKey string) (func(), error) {
	return lq.Subscribe(ctx, viewKey, store.Query{Collection: models.LikesCollection(t.post.ID)}, func(docs []store.Document) {
		t.mu.Lock()
		t.applyConfirmed(docs)
		t.mu.Unlock()
	})
}

func (t *LikeToggle) applyConfirmed(docs []store.Document) {
	t.count = len(docs)
	t.liked = false
	for _, d := range docs {
		if d.ID == t.actor.ID {
			t.liked = true
			break
		}
	}
	t.state = StateConfirmed
}

// Liked reports the current local liked flag.
func (t *LikeToggle) Liked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.liked
}

// Count returns the displayed like count and its sync state.
func (t *LikeToggle) Count() (int, SyncState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count, t.state
}
