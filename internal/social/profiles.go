package social

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ihere-app/ihere-backend/internal/cache"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/store"
)

// ErrProfileNotFound is returned when the referenced user does not exist.
var ErrProfileNotFound = errors.New("social: profile not found")

// AuthDeleter removes a user from the identity platform; *auth.Client from
// the Firebase SDK satisfies it.
type AuthDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

// ProfileService owns the users collection and the account lifecycle.
type ProfileService struct {
	client store.Client
	users  *cache.EntityCache
	posts  *PostService
	auth   AuthDeleter
	now    func() time.Time
}

// NewProfileService creates a profile service. auth may be nil; the identity
// record is then left to the platform's own cleanup.
func NewProfileService(client store.Client, users *cache.EntityCache, posts *PostService, auth AuthDeleter) *ProfileService {
	return &ProfileService{client: client, users: users, posts: posts, auth: auth, now: time.Now}
}

// Create writes the caller's profile document after signup.
func (s *ProfileService) Create(ctx context.Context, uid string, req models.CreateProfileRequest) (models.User, error) {
	u := models.User{
		ID:        uid,
		Username:  req.Username,
		FullName:  req.FullName,
		Email:     req.Email,
		Location:  req.Location,
		CreatedAt: s.now(),
	}
	if err := s.client.Set(ctx, store.Path(models.CollectionUsers, uid), u.Doc()); err != nil {
		return models.User{}, fmt.Errorf("create profile: %w", err)
	}
	s.users.Put(store.Document{ID: uid, Data: u.Doc()})
	return u, nil
}

// Get returns a profile through the entity cache; a missing profile yields
// ErrProfileNotFound so callers can render an explicit empty state.
func (s *ProfileService) Get(ctx context.Context, uid string) (models.User, error) {
	doc, err := s.users.Get(ctx, uid)
	if err != nil {
		return models.User{}, err
	}
	if doc == nil {
		return models.User{}, ErrProfileNotFound
	}
	return models.UserFromDoc(*doc), nil
}

// Update edits the caller's own profile and refreshes the cache entry.
func (s *ProfileService) Update(ctx context.Context, uid string, req models.UpdateProfileRequest) (models.User, error) {
	updates := map[string]interface{}{}
	if req.FullName != "" {
		updates["fullName"] = req.FullName
	}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if len(updates) > 0 {
		if err := s.client.Update(ctx, store.Path(models.CollectionUsers, uid), updates); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return models.User{}, ErrProfileNotFound
			}
			return models.User{}, fmt.Errorf("update profile %s: %w", uid, err)
		}
	}
	s.users.Invalidate(uid)
	return s.Get(ctx, uid)
}

// SetProfilePicture records the avatar's download URI on the profile.
func (s *ProfileService) SetProfilePicture(ctx context.Context, uid, url string) error {
	if err := s.client.Update(ctx, store.Path(models.CollectionUsers, uid), map[string]interface{}{"profilePic": url}); err != nil {
		return fmt.Errorf("set profile picture for %s: %w", uid, err)
	}
	s.users.Invalidate(uid)
	return nil
}

// Search returns users whose username or full name contains the query,
// case-insensitively. The document store has no substring operator, so the
// filter runs client-side over the users collection.
func (s *ProfileService) Search(ctx context.Context, query string) ([]models.User, error) {
	docs, err := s.client.GetAll(ctx, store.Query{Collection: models.CollectionUsers})
	if err != nil {
		return nil, err
	}
	var out []models.User
	for _, d := range docs {
		u := models.UserFromDoc(d)
		if containsFold(u.Username, query) || containsFold(u.FullName, query) {
			out = append(out, u)
		}
	}
	return out, nil
}

// DeleteAccount cascades an account deletion: the user's posts (with their
// media, likes, comments and notifications), the notifications addressed to
// the user, the profile document, and finally the identity record.
func (s *ProfileService) DeleteAccount(ctx context.Context, uid string) error {
	posts, err := s.client.GetAll(ctx, store.Query{
		Collection: models.CollectionPosts,
		Filters:    []store.Filter{{Field: "userId", Op: "==", Value: uid}},
	})
	if err != nil {
		return err
	}
	for _, d := range posts {
		if err := s.posts.Delete(ctx, uid, d.ID); err != nil {
			return fmt.Errorf("delete post %s: %w", d.ID, err)
		}
	}

	notifs, err := s.client.GetAll(ctx, store.Query{
		Collection: models.CollectionNotifications,
		Filters:    []store.Filter{{Field: "userId", Op: "==", Value: uid}},
	})
	if err != nil {
		return err
	}
	for _, n := range notifs {
		if err := s.client.Delete(ctx, store.Path(models.CollectionNotifications, n.ID)); err != nil {
			return err
		}
	}

	if err := s.client.Delete(ctx, store.Path(models.CollectionUsers, uid)); err != nil {
		return err
	}
	s.users.Invalidate(uid)

	if s.auth != nil {
		if err := s.auth.DeleteUser(ctx, uid); err != nil {
			log.Printf("delete auth record %s: %v", uid, err)
		}
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
