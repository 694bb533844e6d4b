package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ihere-app/ihere-backend/internal/livequery"
	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/social"
	"github.com/ihere-app/ihere-backend/internal/store"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedHandler serves the global post feed, as a one-shot read or as a live
// websocket stream
type FeedHandler struct {
	posts *social.PostService
	live  *livequery.Manager
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *social.PostService, live *livequery.Manager) *FeedHandler {
	return &FeedHandler{posts: posts, live: live}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/feed/stream", h.StreamFeed)
}

// GetFeed returns all posts, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	posts, err := h.posts.Feed(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, posts)
}

// StreamFeed upgrades to a websocket and pushes the full feed snapshot on
// every change. The initial snapshot is delivered immediately.
func (h *FeedHandler) StreamFeed(c echo.Context) error {
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
	q := store.Query{
		Collection: models.CollectionPosts,
		OrderBy:    "createdAt",
		Direction:  store.Descending,
	}

	viewKey := "feed:" + uid + ":" + uuid.NewString()
	unsubscribe, err := h.live.Subscribe(c.Request().Context(), viewKey, q, func(docs []store.Document) {
		// Latest snapshot wins; a slow client only ever sees the newest state.
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
			posts, err := h.posts.PostsFromSnapshot(c.Request().Context(), docs)
			if err != nil {
				log.Printf("feed stream: building snapshot for %s: %v", uid, err)
				continue
			}
			if err := conn.WriteJSON(posts); err != nil {
				return nil
			}
		}
	}
}
