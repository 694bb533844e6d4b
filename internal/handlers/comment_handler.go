package handlers

import (
	"errors"
	"net/http"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/social"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to post comments
type CommentHandler struct {
	comments *social.CommentService
	profiles *social.ProfileService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *social.CommentService, profiles *social.ProfileService) *CommentHandler {
	return &CommentHandler{comments: comments, profiles: profiles}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetComments)
	g.DELETE("/posts/:post_id/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment and notifies the post author
func (h *CommentHandler) CreateComment(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	actor, err := h.profiles.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, social.ErrProfileNotFound) {
			actor = models.User{ID: uid}
		} else {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	comment, err := h.comments.Add(ctx, actor, c.Param("post_id"), req.Text)
	if err != nil {
		if errors.Is(err, social.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetComments lists a post's comments in chronological order
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.comments.List(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, comments)
}

// DeleteComment removes a comment; only its author may do so
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	err = h.comments.Delete(c.Request().Context(), uid, c.Param("post_id"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, social.ErrCommentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		case errors.Is(err, social.ErrNotCommentAuthor):
			return echo.NewHTTPError(http.StatusForbidden, "Only the author may delete this comment")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
