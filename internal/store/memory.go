package store

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryClient is an in-process Client used by the "memory" store driver and
// by tests. Listener callbacks run synchronously on the mutating call, which
// mirrors the single-threaded delivery order of the real backends closely
// enough for the consumers in this repo.
type MemoryClient struct {
	mu        sync.Mutex
	docs      map[string]memEntry
	listeners map[int]*memListener
	nextSeq   int64
	nextToken int
}

type memEntry struct {
	doc Document
	seq int64
}

type memListener struct {
	q  Query
	fn func(Snapshot)
}

// NewMemoryClient creates an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		docs:      make(map[string]memEntry),
		listeners: make(map[int]*memListener),
	}
}

func (c *MemoryClient) Get(ctx context.Context, path string) (*Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: e.doc.ID, Data: cloneData(e.doc.Data)}, nil
}

func (c *MemoryClient) Set(ctx context.Context, path string, data map[string]interface{}) error {
	c.mu.Lock()
	e, exists := c.docs[path]
	seq := e.seq
	if !exists {
		c.nextSeq++
		seq = c.nextSeq
	}
	c.docs[path] = memEntry{doc: Document{ID: docID(path), Data: cloneData(data)}, seq: seq}
	c.notifyLocked(parentCollection(path))
	return nil
}

func (c *MemoryClient) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.NewString()
	if err := c.Set(ctx, Path(collection, id), data); err != nil {
		return "", err
	}
	return id, nil
}

func (c *MemoryClient) Update(ctx context.Context, path string, data map[string]interface{}) error {
	c.mu.Lock()
	e, ok := c.docs[path]
	if !ok {
		c.mu.Unlock()
		return ErrNotFound
	}
	merged := cloneData(e.doc.Data)
	for k, v := range data {
		merged[k] = v
	}
	c.docs[path] = memEntry{doc: Document{ID: e.doc.ID, Data: merged}, seq: e.seq}
	c.notifyLocked(parentCollection(path))
	return nil
}

func (c *MemoryClient) Delete(ctx context.Context, path string) error {
	c.mu.Lock()
	if _, ok := c.docs[path]; !ok {
		c.mu.Unlock()
		return nil
	}
	delete(c.docs, path)
	c.notifyLocked(parentCollection(path))
	return nil
}

func (c *MemoryClient) GetAll(ctx context.Context, q Query) ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evaluateLocked(q), nil
}

// Listen registers a listener and delivers the initial snapshot immediately.
// The returned cancel is idempotent.
func (c *MemoryClient) Listen(ctx context.Context, q Query, fn func(Snapshot)) (CancelFunc, error) {
	c.mu.Lock()
	c.nextToken++
	token := c.nextToken
	c.listeners[token] = &memListener{q: q, fn: fn}
	initial := c.evaluateLocked(q)
	c.mu.Unlock()

	fn(Snapshot{Docs: initial})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, token)
			c.mu.Unlock()
		})
	}, nil
}

func (c *MemoryClient) Close() error { return nil }

// ListenerCount reports the number of active listeners; tests use it to
// verify subscriptions do not leak.
func (c *MemoryClient) ListenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// notifyLocked re-evaluates every listener on the touched collection and
// invokes the callbacks after releasing the lock. Callers must hold c.mu; it
// is released on return.
func (c *MemoryClient) notifyLocked(collection string) {
	type delivery struct {
		fn   func(Snapshot)
		snap Snapshot
	}
	var pending []delivery
	for _, l := range c.listeners {
		if l.q.Collection != collection {
			continue
		}
		pending = append(pending, delivery{fn: l.fn, snap: Snapshot{Docs: c.evaluateLocked(l.q)}})
	}
	c.mu.Unlock()
	for _, d := range pending {
		d.fn(d.snap)
	}
}

func (c *MemoryClient) evaluateLocked(q Query) []Document {
	var matched []memEntry
	for path, e := range c.docs {
		if parentCollection(path) != q.Collection {
			continue
		}
		if !matchesFilters(e.doc.Data, q.Filters) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if q.OrderBy != "" {
			cmp := compareValues(matched[i].doc.Data[q.OrderBy], matched[j].doc.Data[q.OrderBy])
			if cmp != 0 {
				if q.Direction == Descending {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		// Equal keys fall back to insertion order.
		return matched[i].seq < matched[j].seq
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	docs := make([]Document, 0, len(matched))
	for _, e := range matched {
		docs = append(docs, Document{ID: e.doc.ID, Data: cloneData(e.doc.Data)})
	}
	return docs
}

func matchesFilters(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		switch f.Op {
		case "==":
			if !ok || !reflect.DeepEqual(v, f.Value) {
				return false
			}
		case "in":
			if !ok || !containsValue(f.Value, v) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsValue(set interface{}, v interface{}) bool {
	rv := reflect.ValueOf(set)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if reflect.DeepEqual(rv.Index(i).Interface(), v) {
			return true
		}
	}
	return false
}

func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case int:
		if bv, ok := b.(int); ok {
			return av - bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	return 0
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
