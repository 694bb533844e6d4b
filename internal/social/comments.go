package social

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/store"
)

// ErrNotCommentAuthor is returned when a user deletes someone else's comment.
var ErrNotCommentAuthor = errors.New("social: only the author may delete a comment")

// ErrCommentNotFound is returned when the referenced comment does not exist.
var ErrCommentNotFound = errors.New("social: comment not found")

// CommentService owns the per-post comments sub-collections.
type CommentService struct {
	client store.Client
	fanout *Fanout
	now    func() time.Time
}

// NewCommentService creates a comment service.
func NewCommentService(client store.Client, fanout *Fanout) *CommentService {
	return &CommentService{client: client, fanout: fanout, now: time.Now}
}

// Add writes a comment and notifies the post author unless the commenter is
// the author. Fanout failures never undo the comment.
func (s *CommentService) Add(ctx context.Context, actor models.User, postID, text string) (models.Comment, error) {
	postDoc, err := s.client.Get(ctx, store.Path(models.CollectionPosts, postID))
	if errors.Is(err, store.ErrNotFound) {
		return models.Comment{}, ErrPostNotFound
	}
	if err != nil {
		return models.Comment{}, err
	}
	post := models.PostFromDoc(*postDoc)

	c := models.Comment{PostID: postID, UserID: actor.ID, Text: text, CreatedAt: s.now()}
	id, err := s.client.Add(ctx, models.CommentsCollection(postID), c.Doc())
	if err != nil {
		return models.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	c.ID = id

	if err := s.fanout.Apply(ctx, Action{
		Kind:        ActionCommentCreated,
		Actor:       actor,
		Post:        post,
		CommentText: text,
	}); err != nil {
		log.Printf("comment fanout for post %s: %v", postID, err)
	}
	return c, nil
}

// List returns a post's comments oldest first.
func (s *CommentService) List(ctx context.Context, postID string) ([]models.Comment, error) {
	docs, err := s.client.GetAll(ctx, store.Query{
		Collection: models.CommentsCollection(postID),
		OrderBy:    "createdAt",
		Direction:  store.Ascending,
	})
	if err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, models.CommentFromDoc(postID, d))
	}
	return comments, nil
}

// Delete removes a comment; only its author may do so.
func (s *CommentService) Delete(ctx context.Context, actorID, postID, commentID string) error {
	path := store.Path(models.CommentsCollection(postID), commentID)
	doc, err := s.client.Get(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	if models.DocString(doc.Data, "userId") != actorID {
		return ErrNotCommentAuthor
	}
	return s.client.Delete(ctx, path)
}
