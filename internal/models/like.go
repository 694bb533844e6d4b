package models

import (
	"time"

	"github.com/ihere-app/ihere-backend/internal/store"
)

// Like represents a like document stored at posts/{postID}/likes/{userID}.
// Its existence is the system of record for "did this user like this post";
// at most one exists per (post, user) pair because the user id is the
// document id.
type Like struct {
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Path returns the like's document path.
func (l Like) Path() string {
	return store.Path(LikesCollection(l.PostID), l.UserID)
}

// Doc flattens the like into a store document.
func (l Like) Doc() map[string]interface{} {
	return map[string]interface{}{
		"userId":    l.UserID,
		"createdAt": l.CreatedAt,
	}
}
