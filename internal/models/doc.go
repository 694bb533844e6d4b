package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names at the document-store boundary.
const (
	CollectionUsers         = "users"
	CollectionPosts         = "posts"
	CollectionNotifications = "notifications"
	CollectionBookings      = "bookings"
)

// LikesCollection returns the per-post likes sub-collection path.
func LikesCollection(postID string) string {
	return CollectionPosts + "/" + postID + "/likes"
}

// CommentsCollection returns the per-post comments sub-collection path.
func CommentsCollection(postID string) string {
	return CollectionPosts + "/" + postID + "/comments"
}

// DocString reads a string field from raw document data.
func DocString(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

// DocTime reads a timestamp field from raw document data. The store's native
// timestamp type differs per backend (time.Time from Firestore and the
// memory store, primitive.DateTime from MongoDB).
func DocTime(data map[string]interface{}, key string) time.Time {
	switch t := data[key].(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	}
	return time.Time{}
}

// EpochSeconds converts a timestamp to epoch seconds for display.
func EpochSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
