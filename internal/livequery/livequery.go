// Package livequery manages snapshot subscriptions against the document
// store. Consumers always receive the full current ordered result set, never
// a diff; internally each subscription compares against the previous snapshot
// and skips deliveries that would not change anything.
package livequery

import (
	"context"
	"reflect"
	"sync"

	"github.com/ihere-app/ihere-backend/internal/store"
)

// Manager owns the active subscriptions, keyed by view. At most one
// subscription is active per key: subscribing again on the same key tears
// down the previous listener first, so a remounted view cannot leak its
// predecessor.
type Manager struct {
	client store.Client

	mu    sync.Mutex
	views map[string]*subscription
}

type subscription struct {
	once   sync.Once
	cancel store.CancelFunc
}

func (s *subscription) stop() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// NewManager creates a subscription manager over the given store.
func NewManager(client store.Client) *Manager {
	return &Manager{client: client, views: make(map[string]*subscription)}
}

// Subscribe attaches a listener for the query under the given view key and
// returns an unsubscribe function. The unsubscribe is idempotent and safe to
// call after the backend connection has dropped. The callback receives the
// full result set on every effective change.
func (m *Manager) Subscribe(ctx context.Context, key string, q store.Query, fn func([]store.Document)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.views[key]; ok {
		prev.stop()
		delete(m.views, key)
	}

	var (
		prevMu    sync.Mutex
		prevDocs  []store.Document
		delivered bool
	)
	cancel, err := m.client.Listen(ctx, q, func(snap store.Snapshot) {
		prevMu.Lock()
		if delivered && equalDocs(prevDocs, snap.Docs) {
			prevMu.Unlock()
			return
		}
		prevDocs = snap.Docs
		delivered = true
		prevMu.Unlock()
		fn(snap.Docs)
	})
	if err != nil {
		return nil, err
	}

	sub := &subscription{cancel: cancel}
	m.views[key] = sub

	return func() {
		sub.stop()
		m.mu.Lock()
		if m.views[key] == sub {
			delete(m.views, key)
		}
		m.mu.Unlock()
	}, nil
}

// Shutdown cancels every active subscription.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, sub := range m.views {
		sub.stop()
		delete(m.views, key)
	}
}

// ActiveViews reports the number of live subscriptions.
func (m *Manager) ActiveViews() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views)
}

func equalDocs(a, b []store.Document) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !reflect.DeepEqual(a[i].Data, b[i].Data) {
			return false
		}
	}
	return true
}
