package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/ihere-app/ihere-backend/internal/livequery"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/store"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves a user's notification inbox
type NotificationHandler struct {
	client store.Client
	live   *livequery.Manager
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(client store.Client, live *livequery.Manager) *NotificationHandler {
	return &NotificationHandler{client: client, live: live}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/stream", h.StreamNotifications)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

func inboxQuery(uid string) store.Query {
	return store.Query{
		Collection: models.CollectionNotifications,
		Filters:    []store.Filter{{Field: "userId", Op: "==", Value: uid}},
		OrderBy:    "createdAt",
		Direction:  store.Descending,
	}
}

// GetNotifications lists the caller's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	snap, err := h.client.GetAll(c.Request().Context(), inboxQuery(uid))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	notifications := make([]models.Notification, 0, len(snap))
	for _, d := range snap {
		notifications = append(notifications, models.NotificationFromDoc(d))
	}

	return c.JSON(http.StatusOK, notifications)
}

// StreamNotifications upgrades to a websocket and pushes the caller's inbox
// on every change
func (h *NotificationHandler) StreamNotifications(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	snapshots := make(chan []store.Document, 1)
	viewKey := "notifications:" + uid + ":" + uuid.NewString()
	unsubscribe, err := h.live.Subscribe(c.Request().Context(), viewKey, inboxQuery(uid), func(docs []store.Document) {
		select {
		case <-snapshots:
		default:
		}
		snapshots <- docs
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return nil
		case docs := <-snapshots:
			notifications := make([]models.Notification, 0, len(docs))
			for _, d := range docs {
				notifications = append(notifications, models.NotificationFromDoc(d))
			}
			if err := conn.WriteJSON(notifications); err != nil {
				return nil
			}
		}
	}
}

// DeleteNotification removes a single notification from the caller's inbox
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	path := store.Path(models.CollectionNotifications, c.Param("id"))

	doc, err := h.client.Get(ctx, path)
	if err != nil {
		if err == store.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if models.DocString(doc.Data, "userId") != uid {
		return echo.NewHTTPError(http.StatusForbidden, "Not your notification")
	}

	if err := h.client.Delete(ctx, path); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
