package handlers

import (
	"errors"
	"net/http"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/social"
	"github.com/ihere-app/ihere-backend/internal/store"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to post likes
type LikeHandler struct {
	client   store.Client
	fanout   *social.Fanout
	posts    *social.PostService
	profiles *social.ProfileService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(client store.Client, fanout *social.Fanout, posts *social.PostService, profiles *social.ProfileService) *LikeHandler {
	return &LikeHandler{client: client, fanout: fanout, posts: posts, profiles: profiles}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.PUT("/posts/:post_id/likes", h.ToggleLike)
	g.GET("/posts/:post_id/likes", h.GetLikeStatus)
}

// likeResponse is the shared response shape of the like endpoints
type likeResponse struct {
	PostID    string `json:"postId"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"likeCount"`
	SyncState string `json:"syncState"`
}

// toggleFor loads the caller and the post and seeds a like toggle with the
// confirmed server state.
func (h *LikeHandler) toggleFor(c echo.Context) (*social.LikeToggle, error) {
	uid, err := currentUserID(c)
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()

	actor, err := h.profiles.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, social.ErrProfileNotFound) {
			// Likes do not require a stored profile; fall back to the bare UID.
			actor = models.User{ID: uid}
		} else {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	post, err := h.posts.Get(ctx, c.Param("post_id"))
	if err != nil {
		if errors.Is(err, social.ErrPostNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	toggle := social.NewLikeToggle(h.client, h.fanout, actor, post)
	if err := toggle.Refresh(ctx); err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return toggle, nil
}

func (h *LikeHandler) respond(c echo.Context, status int, toggle *social.LikeToggle) error {
	count, state := toggle.Count()
	return c.JSON(status, likeResponse{
		PostID:    c.Param("post_id"),
		Liked:     toggle.Liked(),
		LikeCount: count,
		SyncState: state.String(),
	})
}

// LikePost records the caller's like; liking twice is a no-op
func (h *LikeHandler) LikePost(c echo.Context) error {
	toggle, err := h.toggleFor(c)
	if err != nil {
		return err
	}

	if err := toggle.Like(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.respond(c, http.StatusOK, toggle)
}

// UnlikePost removes the caller's like and retracts the notification
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	toggle, err := h.toggleFor(c)
	if err != nil {
		return err
	}

	if err := toggle.Unlike(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.respond(c, http.StatusOK, toggle)
}

// ToggleLike flips the caller's like state
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	toggle, err := h.toggleFor(c)
	if err != nil {
		return err
	}

	if err := toggle.Toggle(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.respond(c, http.StatusOK, toggle)
}

// GetLikeStatus returns the like count and whether the caller has liked
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	toggle, err := h.toggleFor(c)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, toggle)
}
