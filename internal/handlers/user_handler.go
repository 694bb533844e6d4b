package handlers

import (
	"errors"
	"net/http"

	"github.com/ihere-app/ihere-backend/internal/cache"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/social"
	"github.com/ihere-app/ihere-backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	profiles *social.ProfileService
	users    *cache.EntityCache
	media    *storage.MediaStore // nil when media uploads are disabled
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *social.ProfileService, users *cache.EntityCache, media *storage.MediaStore) *UserHandler {
	return &UserHandler{profiles: profiles, users: users, media: media}
}

// RegisterUserRoutes registers user profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/users", h.CreateProfile)
	g.GET("/users/me", h.GetMe)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
	g.POST("/users/batch", h.BatchUsers)
	g.PUT("/users/me", h.UpdateProfile)
	g.PUT("/users/me/picture", h.UploadProfilePicture)
	g.DELETE("/users/me", h.DeleteAccount)
}

// CreateProfile creates the caller's profile document
func (h *UserHandler) CreateProfile(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.profiles.Create(c.Request().Context(), uid, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, user)
}

// GetMe retrieves the caller's own profile
func (h *UserHandler) GetMe(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}
	return h.getUserByID(c, uid)
}

// GetUser retrieves a profile by user ID
func (h *UserHandler) GetUser(c echo.Context) error {
	return h.getUserByID(c, c.Param("id"))
}

func (h *UserHandler) getUserByID(c echo.Context, uid string) error {
	user, err := h.profiles.Get(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, social.ErrProfileNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// BatchUsers resolves many profiles at once, preserving request order.
// Unknown IDs come back as null entries.
func (h *UserHandler) BatchUsers(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}

	var req models.BatchUsersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	docs, err := h.users.GetBatch(c.Request().Context(), req.IDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	users := make([]*models.User, len(docs))
	for i, d := range docs {
		if d == nil {
			continue
		}
		u := models.UserFromDoc(*d)
		users[i] = &u
	}

	return c.JSON(http.StatusOK, users)
}

// SearchUsers finds profiles whose username or full name contains the query
func (h *UserHandler) SearchUsers(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}

	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'q' is required")
	}

	users, err := h.profiles.Search(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, users)
}

// UpdateProfile updates the caller's profile fields
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.profiles.Update(c.Request().Context(), uid, req)
	if err != nil {
		if errors.Is(err, social.ErrProfileNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// UploadProfilePicture stores the uploaded image and points the profile at it
func (h *UserHandler) UploadProfilePicture(c echo.Context) error {
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

	ctx := c.Request().Context()
	url, err := h.media.Upload(ctx, storage.ProfilePicturePath(uid), src, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.profiles.SetProfilePicture(ctx, uid, url); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"profilePic": url})
}

// DeleteAccount removes the caller's profile, posts and notifications
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.profiles.DeleteAccount(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
