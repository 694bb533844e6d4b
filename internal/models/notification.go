package models

import (
	"time"

	"github.com/ihere-app/ihere-backend/internal/store"
)

// Notification kinds.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationBooking = "booking"
)

// Notification represents a notification document. Notifications are created
// only as a side effect of another entity's creation and are never mutated;
// a like notification is deleted again when the triggering like is undone.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"userId"`
	SenderID    string    `json:"senderId,omitempty"`
	PostID      string    `json:"postId,omitempty"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Doc flattens the notification into a store document.
func (n Notification) Doc() map[string]interface{} {
	return map[string]interface{}{
		"userId":    n.RecipientID,
		"senderId":  n.SenderID,
		"postId":    n.PostID,
		"type":      n.Type,
		"message":   n.Message,
		"createdAt": n.CreatedAt,
	}
}

// NotificationFromDoc rebuilds a Notification from a store document.
func NotificationFromDoc(d store.Document) Notification {
	return Notification{
		ID:          d.ID,
		RecipientID: DocString(d.Data, "userId"),
		SenderID:    DocString(d.Data, "senderId"),
		PostID:      DocString(d.Data, "postId"),
		Type:        DocString(d.Data, "type"),
		Message:     DocString(d.Data, "message"),
		CreatedAt:   DocTime(d.Data, "createdAt"),
	}
}
