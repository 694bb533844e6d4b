package models

import (
	"time"

	"github.com/ihere-app/ihere-backend/internal/store"
)

// Comment represents a comment document in a post's comments sub-collection.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Doc flattens the comment into a store document.
func (c Comment) Doc() map[string]interface{} {
	return map[string]interface{}{
		"userId":    c.UserID,
		"text":      c.Text,
		"createdAt": c.CreatedAt,
	}
}

// CommentFromDoc rebuilds a Comment from a store document.
func CommentFromDoc(postID string, d store.Document) Comment {
	return Comment{
		ID:        d.ID,
		PostID:    postID,
		UserID:    DocString(d.Data, "userId"),
		Text:      DocString(d.Data, "text"),
		CreatedAt: DocTime(d.Data, "createdAt"),
	}
}

// CreateCommentRequest defines the request body for commenting on a post.
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
