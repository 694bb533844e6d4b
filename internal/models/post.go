package models

import (
	"time"

	"github.com/ihere-app/ihere-backend/internal/store"
)

// Media kinds a post may carry.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
	MediaNone  = "none"
)

// Post represents a post document. The like count is never persisted on the
// post itself; it is always derived from the likes sub-collection.
type Post struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Caption      string    `json:"caption"`
	MediaURL     string    `json:"imageUrl,omitempty"`
	MediaPath    string    `json:"-"`
	MediaType    string    `json:"mediaType,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
}

// Doc flattens the post into a store document. MediaPath is the object path
// inside the storage bucket, kept so deletes can reach the blob.
func (p Post) Doc() map[string]interface{} {
	return map[string]interface{}{
		"userId":    p.UserID,
		"caption":   p.Caption,
		"imageUrl":  p.MediaURL,
		"mediaPath": p.MediaPath,
		"mediaType": p.MediaType,
		"createdAt": p.CreatedAt,
	}
}

// PostFromDoc rebuilds a Post from a store document. Like and comment counts
// are derived elsewhere.
func PostFromDoc(d store.Document) Post {
	return Post{
		ID:        d.ID,
		UserID:    DocString(d.Data, "userId"),
		Caption:   DocString(d.Data, "caption"),
		MediaURL:  DocString(d.Data, "imageUrl"),
		MediaPath: DocString(d.Data, "mediaPath"),
		MediaType: DocString(d.Data, "mediaType"),
		CreatedAt: DocTime(d.Data, "createdAt"),
	}
}

// CreatePostRequest defines the request body for creating a new post.
type CreatePostRequest struct {
	Caption   string `json:"caption" validate:"required,min=1,max=2200"`
	MediaURL  string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	MediaPath string `json:"mediaPath,omitempty"`
	MediaType string `json:"mediaType,omitempty" validate:"omitempty,oneof=image video audio none"`
}

// UpdatePostRequest defines the request body for editing an existing post.
type UpdatePostRequest struct {
	Caption   string `json:"caption,omitempty" validate:"omitempty,min=1,max=2200"`
	MediaURL  string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	MediaPath string `json:"mediaPath,omitempty"`
	MediaType string `json:"mediaType,omitempty" validate:"omitempty,oneof=image video audio none"`
}
