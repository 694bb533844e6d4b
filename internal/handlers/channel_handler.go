package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ihere-app/ihere-backend/internal/chat"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/social"
	"github.com/labstack/echo/v4"
)

// ChannelHandler handles HTTP requests related to chat channels
type ChannelHandler struct {
	bridge   *chat.ChannelBridge
	profiles *social.ProfileService
}

// NewChannelHandler creates a new ChannelHandler
func NewChannelHandler(bridge *chat.ChannelBridge, profiles *social.ProfileService) *ChannelHandler {
	return &ChannelHandler{bridge: bridge, profiles: profiles}
}

// RegisterChannelRoutes registers channel-related routes
func (h *ChannelHandler) RegisterChannelRoutes(g *echo.Group) {
	g.POST("/channels/direct", h.CreateDirectChannel)
	g.POST("/channels/group", h.CreateGroupChannel)
	g.GET("/channels/:id/members", h.GetMembers)
	g.POST("/channels/:id/members", h.AddMember)
	g.DELETE("/channels/:id/members/:user_id", h.RemoveMember)
	g.POST("/channels/:id/hide", h.HideChannel)
	g.DELETE("/channels/:id", h.DeleteChannel)
}

// chatUser resolves a profile into the messaging backend's user shape,
// falling back to the bare UID for users without a stored profile.
func (h *ChannelHandler) chatUser(ctx context.Context, uid string) (chat.User, error) {
	profile, err := h.profiles.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, social.ErrProfileNotFound) {
			return chat.User{ID: uid}, nil
		}
		return chat.User{}, err
	}
	return chat.User{ID: uid, Name: profile.DisplayName()}, nil
}

// CreateDirectChannel opens (or resumes) a one-on-one conversation
func (h *ChannelHandler) CreateDirectChannel(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateDirectChannelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if req.RecipientID == uid {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot open a direct channel with yourself")
	}

	ctx := c.Request().Context()
	caller, err := h.chatUser(ctx, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	peer, err := h.chatUser(ctx, req.RecipientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	channelID, err := h.bridge.GetOrCreateDirect(ctx, caller, peer)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{"channelId": channelID})
}

// CreateGroupChannel opens a group conversation with the creator plus at
// least two other members
func (h *ChannelHandler) CreateGroupChannel(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateGroupChannelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	creator, err := h.chatUser(ctx, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	members := make([]chat.User, 0, len(req.MemberIDs))
	for _, id := range req.MemberIDs {
		member, err := h.chatUser(ctx, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		members = append(members, member)
	}

	channelID, err := h.bridge.CreateGroup(ctx, creator, members, req.Name)
	if err != nil {
		if errors.Is(err, chat.ErrGroupTooSmall) {
			return echo.NewHTTPError(http.StatusBadRequest, "A group needs at least two members besides the creator")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{"channelId": channelID})
}

// GetMembers lists a channel's member IDs
func (h *ChannelHandler) GetMembers(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}

	members, err := h.bridge.Members(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, chat.ErrChannelNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Channel not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string][]string{"members": members})
}

// AddMember adds a user to a channel; only the creator may do so
func (h *ChannelHandler) AddMember(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.AddMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	member, err := h.chatUser(ctx, req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.bridge.AddMember(ctx, c.Param("id"), uid, member); err != nil {
		return h.bridgeError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RemoveMember removes a user from a channel; the creator may remove anyone,
// members may remove themselves
func (h *ChannelHandler) RemoveMember(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	err = h.bridge.RemoveMember(c.Request().Context(), c.Param("id"), uid, c.Param("user_id"))
	if err != nil {
		return h.bridgeError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// HideChannel hides a channel for the caller only
func (h *ChannelHandler) HideChannel(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.bridge.Hide(c.Request().Context(), c.Param("id"), uid); err != nil {
		return h.bridgeError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteChannel deletes a group channel; only the creator may do so
func (h *ChannelHandler) DeleteChannel(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.bridge.DeleteGroup(c.Request().Context(), c.Param("id"), uid); err != nil {
		return h.bridgeError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ChannelHandler) bridgeError(err error) error {
	switch {
	case errors.Is(err, chat.ErrChannelNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Channel not found")
	case errors.Is(err, chat.ErrNotAllowed):
		return echo.NewHTTPError(http.StatusForbidden, "Not allowed")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
