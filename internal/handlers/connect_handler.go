package handlers

import (
	"net/http"

	"github.com/ihere-app/ihere-backend/internal/chat"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/labstack/echo/v4"
)

// ConnectHandler exchanges authenticated identities for chat credentials
type ConnectHandler struct {
	exchange *chat.TokenExchange
}

// NewConnectHandler creates a new ConnectHandler
func NewConnectHandler(exchange *chat.TokenExchange) *ConnectHandler {
	return &ConnectHandler{exchange: exchange}
}

// RegisterConnectRoutes registers the chat credential routes
func (h *ConnectHandler) RegisterConnectRoutes(g *echo.Group) {
	g.POST("/connect", h.Connect)
	g.POST("/privChat", h.PrivateChat)
	g.GET("/connect/credentials", h.ListCredentials)
}

// Connect mints a chat token for the caller
func (h *ConnectHandler) Connect(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.ConnectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	// The caller cannot mint tokens for anyone but themselves.
	req.UserID = uid
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.exchange.Connect(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, models.ConnectResponse{Token: token})
}

// PrivateChat mints a chat token and resolves the direct channel with the
// recipient in one round trip
func (h *ConnectHandler) PrivateChat(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.PrivateChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.UserID = uid
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.RecipientID == uid {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot open a private chat with yourself")
	}

	token, channelID, err := h.exchange.PrivateChat(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, models.PrivateChatResponse{Token: token, ChannelID: channelID})
}

// ListCredentials returns the caller's issued chat credentials, newest first
func (h *ConnectHandler) ListCredentials(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	creds, err := h.exchange.IssuedCredentials(uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if creds == nil {
		creds = []models.IssuedCredential{}
	}

	return c.JSON(http.StatusOK, creds)
}
