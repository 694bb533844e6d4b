// Package storage writes media blobs to the object storage bucket and hands
// back durable download URIs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
)

// PostMediaPath is the write path for post media: posts/{userId}/{epochMillis}.
func PostMediaPath(userID string, now time.Time) string {
	return fmt.Sprintf("posts/%s/%d", userID, now.UnixMilli())
}

// ProfilePicturePath is the avatar path, overwritten in place per user.
func ProfilePicturePath(userID string) string {
	return fmt.Sprintf("profilePictures/%s", userID)
}

// MediaStore wraps the storage bucket for media blobs.
type MediaStore struct {
	bucket *gcs.BucketHandle
}

// NewMediaStore wraps an initialized bucket handle.
func NewMediaStore(bucket *gcs.BucketHandle) *MediaStore {
	return &MediaStore{bucket: bucket}
}

// Upload writes the blob at objectPath and returns its download URI.
func (m *MediaStore) Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error) {
	obj := m.bucket.Object(objectPath)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return "", fmt.Errorf("attrs %s: %w", objectPath, err)
	}
	return attrs.MediaLink, nil
}

// DownloadURL returns the durable download URI of an existing object.
func (m *MediaStore) DownloadURL(ctx context.Context, objectPath string) (string, error) {
	attrs, err := m.bucket.Object(objectPath).Attrs(ctx)
	if err != nil {
		return "", fmt.Errorf("attrs %s: %w", objectPath, err)
	}
	return attrs.MediaLink, nil
}

// Delete removes the blob; a missing object is a no-op.
func (m *MediaStore) Delete(ctx context.Context, objectPath string) error {
	err := m.bucket.Object(objectPath).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return nil
}
