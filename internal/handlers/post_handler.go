package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/social"
	"github.com/ihere-app/ihere-backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *social.PostService
	media *storage.MediaStore // nil when media uploads are disabled
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *social.PostService, media *storage.MediaStore) *PostHandler {
	return &PostHandler{posts: posts, media: media}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.POST("/posts/media", h.UploadMedia)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), uid, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, post)
}

// UploadMedia stores an uploaded media blob and returns its URL and object
// path, for the client to reference from a subsequent post create.
func (h *PostHandler) UploadMedia(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	if h.media == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "Media storage is not configured")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Form file 'file' is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not open uploaded file")
	}
	defer src.Close()

	objectPath := storage.PostMediaPath(uid, time.Now())
	url, err := h.media.Upload(c.Request().Context(), objectPath, src, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"imageUrl":  url,
		"mediaPath": objectPath,
	})
}

// GetPost retrieves a post by ID, with its like and comment counts
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, social.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, post)
}

// GetPosts retrieves all posts, or the posts of a single author
func (h *PostHandler) GetPosts(c echo.Context) error {
	userID := c.QueryParam("user_id")

	var posts []models.Post
	var err error

	if userID != "" {
		posts, err = h.posts.ListByAuthor(c.Request().Context(), userID)
	} else {
		posts, err = h.posts.Feed(c.Request().Context())
	}

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, posts)
}

// UpdatePost updates an existing post; only the author may do so
func (h *PostHandler) UpdatePost(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Update(c.Request().Context(), uid, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, social.ErrPostNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		case errors.Is(err, social.ErrNotPostAuthor):
			return echo.NewHTTPError(http.StatusForbidden, "Only the author may edit this post")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post along with its likes, comments, notifications
// and media blob; only the author may do so
func (h *PostHandler) DeletePost(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.posts.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, social.ErrPostNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		case errors.Is(err, social.ErrNotPostAuthor):
			return echo.NewHTTPError(http.StatusForbidden, "Only the author may delete this post")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
