package social

import (
	"context"
	"fmt"
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/store"
)

// commentPreviewLimit bounds the comment text echoed into a notification.
const commentPreviewLimit = 120

// ActionKind identifies a mutating action the fanout rules react to.
type ActionKind string

const (
	ActionLikeCreated    ActionKind = "like_created"
	ActionLikeRemoved    ActionKind = "like_removed"
	ActionCommentCreated ActionKind = "comment_created"
	ActionBookingCreated ActionKind = "booking_created"
)

// Action describes a mutating action together with its actor and target.
type Action struct {
	Kind        ActionKind
	Actor       models.User
	Post        models.Post
	CommentText string
	Booking     models.Booking
}

// Decide is the pure fanout rule: it returns the notification an action
// produces, or false when the action produces none. Self-actions on likes
// and comments never notify; removals never emit (they retract instead).
func Decide(a Action) (models.Notification, bool) {
	switch a.Kind {
	case ActionLikeCreated:
		if a.Actor.ID == a.Post.UserID {
			return models.Notification{}, false
		}
		return models.Notification{
			RecipientID: a.Post.UserID,
			SenderID:    a.Actor.ID,
			PostID:      a.Post.ID,
			Type:        models.NotificationLike,
			Message:     fmt.Sprintf("%s liked your post: %q.", a.Actor.DisplayName(), a.Post.Caption),
		}, true
	case ActionCommentCreated:
		if a.Actor.ID == a.Post.UserID {
			return models.Notification{}, false
		}
		return models.Notification{
			RecipientID: a.Post.UserID,
			SenderID:    a.Actor.ID,
			PostID:      a.Post.ID,
			Type:        models.NotificationComment,
			Message: fmt.Sprintf("%s commented '%s' on your post: %q.",
				a.Actor.DisplayName(), truncate(a.CommentText, commentPreviewLimit), a.Post.Caption),
		}, true
	case ActionBookingCreated:
		return models.Notification{
			RecipientID: a.Booking.BookedUser,
			SenderID:    a.Booking.BookedBy,
			Type:        models.NotificationBooking,
			Message: fmt.Sprintf("You have been booked for %q on %s",
				a.Booking.JobTitle, a.Booking.Date.Format("Mon Jan 02 2006")),
		}, true
	}
	return models.Notification{}, false
}

// Fanout applies fanout decisions against the notifications collection.
type Fanout struct {
	client store.Client
	now    func() time.Time
}

// NewFanout creates a fanout writer over the given store.
func NewFanout(client store.Client) *Fanout {
	return &Fanout{client: client, now: time.Now}
}

// Apply runs the decision for an action and writes (or retracts) the
// resulting notification.
func (f *Fanout) Apply(ctx context.Context, a Action) error {
	if a.Kind == ActionLikeRemoved {
		return f.Retract(ctx, a.Post.UserID, a.Actor.ID, a.Post.ID)
	}
	n, ok := Decide(a)
	if !ok {
		return nil
	}
	doc := n.Doc()
	doc["createdAt"] = f.now()
	if _, err := f.client.Add(ctx, models.CollectionNotifications, doc); err != nil {
		return fmt.Errorf("emit notification: %w", err)
	}
	return nil
}

// Retract deletes every notification matching (recipient, sender, post).
// Zero matches is a no-op, so rapid toggle races and duplicate delete
// attempts stay idempotent.
func (f *Fanout) Retract(ctx context.Context, recipientID, senderID, postID string) error {
	docs, err := f.client.GetAll(ctx, store.Query{
		Collection: models.CollectionNotifications,
		Filters: []store.Filter{
			{Field: "userId", Op: "==", Value: recipientID},
			{Field: "senderId", Op: "==", Value: senderID},
			{Field: "postId", Op: "==", Value: postID},
		},
	})
	if err != nil {
		return fmt.Errorf("find notifications to retract: %w", err)
	}
	for _, d := range docs {
		if err := f.client.Delete(ctx, store.Path(models.CollectionNotifications, d.ID)); err != nil {
			return fmt.Errorf("retract notification %s: %w", d.ID, err)
		}
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
