package social

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/storage"
	"github.com/ihere-app/ihere-backend/internal/store"
)

// ErrNotPostAuthor is returned when a user edits or deletes a post they do
// not own.
var ErrNotPostAuthor = errors.New("social: only the author may modify a post")

// ErrPostNotFound is returned when the referenced post does not exist.
var ErrPostNotFound = errors.New("social: post not found")

// PostService owns the posts collection and its sub-collections.
type PostService struct {
	client store.Client
	media  *storage.MediaStore
	now    func() time.Time
}

// NewPostService creates a post service. media may be nil when no storage
// bucket is configured; blob cleanup is then skipped.
func NewPostService(client store.Client, media *storage.MediaStore) *PostService {
	return &PostService{client: client, media: media, now: time.Now}
}

// Create writes a new post document for the author.
func (s *PostService) Create(ctx context.Context, authorID string, req models.CreatePostRequest) (models.Post, error) {
	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = models.MediaNone
	}
	p := models.Post{
		UserID:    authorID,
		Caption:   req.Caption,
		MediaURL:  req.MediaURL,
		MediaPath: req.MediaPath,
		MediaType: mediaType,
		CreatedAt: s.now(),
	}
	id, err := s.client.Add(ctx, models.CollectionPosts, p.Doc())
	if err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	p.ID = id
	return p, nil
}

// Get returns a post with its derived like and comment counts. The counts
// are recomputed from the sub-collections on every read; no persisted
// counter exists that could drift.
func (s *PostService) Get(ctx context.Context, id string) (models.Post, error) {
	doc, err := s.client.Get(ctx, store.Path(models.CollectionPosts, id))
	if errors.Is(err, store.ErrNotFound) {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}
	p := models.PostFromDoc(*doc)
	if err := s.attachCounts(ctx, &p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// ListByAuthor returns the author's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	docs, err := s.client.GetAll(ctx, store.Query{
		Collection: models.CollectionPosts,
		Filters:    []store.Filter{{Field: "userId", Op: "==", Value: authorID}},
		OrderBy:    "createdAt",
		Direction:  store.Descending,
	})
	if err != nil {
		return nil, err
	}
	return s.postsFromDocs(ctx, docs)
}

// Update edits a post's caption or media. Only the author may edit. When the
// media is replaced, the old blob is deleted from the bucket.
func (s *PostService) Update(ctx context.Context, actorID, postID string, req models.UpdatePostRequest) (models.Post, error) {
	doc, err := s.client.Get(ctx, store.Path(models.CollectionPosts, postID))
	if errors.Is(err, store.ErrNotFound) {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}
	p := models.PostFromDoc(*doc)
	if p.UserID != actorID {
		return models.Post{}, ErrNotPostAuthor
	}

	updates := map[string]interface{}{}
	if req.Caption != "" {
		p.Caption = req.Caption
		updates["caption"] = req.Caption
	}
	if req.MediaURL != "" && req.MediaURL != p.MediaURL {
		if p.MediaPath != "" && s.media != nil {
			if err := s.media.Delete(ctx, p.MediaPath); err != nil {
				log.Printf("delete replaced media %s: %v", p.MediaPath, err)
			}
		}
		p.MediaURL = req.MediaURL
		p.MediaPath = req.MediaPath
		p.MediaType = req.MediaType
		updates["imageUrl"] = req.MediaURL
		updates["mediaPath"] = req.MediaPath
		updates["mediaType"] = req.MediaType
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.client.Update(ctx, store.Path(models.CollectionPosts, postID), updates); err != nil {
		return models.Post{}, fmt.Errorf("update post %s: %w", postID, err)
	}
	return p, nil
}

// Delete removes a post and cascades: the media blob, the likes and comments
// sub-collections, and any notifications referencing the post.
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	doc, err := s.client.Get(ctx, store.Path(models.CollectionPosts, postID))
	if errors.Is(err, store.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}
	p := models.PostFromDoc(*doc)
	if p.UserID != actorID {
		return ErrNotPostAuthor
	}

	if p.MediaPath != "" && s.media != nil {
		if err := s.media.Delete(ctx, p.MediaPath); err != nil {
			log.Printf("delete media %s: %v", p.MediaPath, err)
		}
	}

	for _, coll := range []string{models.LikesCollection(postID), models.CommentsCollection(postID)} {
		docs, err := s.client.GetAll(ctx, store.Query{Collection: coll})
		if err != nil {
			return err
		}
		for _, d := range docs {
			if err := s.client.Delete(ctx, store.Path(coll, d.ID)); err != nil {
				return err
			}
		}
	}

	notifs, err := s.client.GetAll(ctx, store.Query{
		Collection: models.CollectionNotifications,
		Filters:    []store.Filter{{Field: "postId", Op: "==", Value: postID}},
	})
	if err != nil {
		return err
	}
	for _, n := range notifs {
		if err := s.client.Delete(ctx, store.Path(models.CollectionNotifications, n.ID)); err != nil {
			return err
		}
	}

	return s.client.Delete(ctx, store.Path(models.CollectionPosts, postID))
}

// Feed returns all posts newest first with derived counts.
func (s *PostService) Feed(ctx context.Context) ([]models.Post, error) {
	docs, err := s.client.GetAll(ctx, store.Query{
		Collection: models.CollectionPosts,
		OrderBy:    "createdAt",
		Direction:  store.Descending,
	})
	if err != nil {
		return nil, err
	}
	return s.postsFromDocs(ctx, docs)
}

// PostsFromSnapshot converts a feed snapshot into posts with derived counts;
// the live feed stream uses it on every delivery.
func (s *PostService) PostsFromSnapshot(ctx context.Context, docs []store.Document) ([]models.Post, error) {
	return s.postsFromDocs(ctx, docs)
}

func (s *PostService) postsFromDocs(ctx context.Context, docs []store.Document) ([]models.Post, error) {
	posts := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		p := models.PostFromDoc(d)
		if err := s.attachCounts(ctx, &p); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (s *PostService) attachCounts(ctx context.Context, p *models.Post) error {
	likes, err := s.client.GetAll(ctx, store.Query{Collection: models.LikesCollection(p.ID)})
	if err != nil {
		return err
	}
	comments, err := s.client.GetAll(ctx, store.Query{Collection: models.CommentsCollection(p.ID)})
	if err != nil {
		return err
	}
	p.LikeCount = len(likes)
	p.CommentCount = len(comments)
	return nil
}
