package cache

import (
	"context"
	"sync"

	"github.com/ihere-app/ihere-backend/internal/store"
)

// batchLimit is the document store's bound on "field is one of" queries.
const batchLimit = 10

// EntityCache deduplicates reads of frequently referenced entities such as
// user profiles. A hit never goes back to the store. Entries live for the
// process lifetime; there is no eviction.
type EntityCache struct {
	client     store.Client
	collection string

	mu      sync.RWMutex
	entries map[string]store.Document
}

// NewEntityCache creates a cache over one collection.
func NewEntityCache(client store.Client, collection string) *EntityCache {
	return &EntityCache{
		client:     client,
		collection: collection,
		entries:    make(map[string]store.Document),
	}
}

// Get returns the entity by id, fetching and caching it on first use.
// A missing entity yields (nil, nil); misses are not cached. Returned
// documents are copies; mutating them does not touch the cached entry.
func (c *EntityCache) Get(ctx context.Context, id string) (*store.Document, error) {
	c.mu.RLock()
	if d, ok := c.entries[id]; ok {
		c.mu.RUnlock()
		out := cloneDocument(d)
		return &out, nil
	}
	c.mu.RUnlock()

	doc, err := c.client.Get(ctx, store.Path(c.collection, id))
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[id] = cloneDocument(*doc)
	c.mu.Unlock()
	return doc, nil
}

// GetBatch returns entities aligned to the input order, with nil entries for
// unknown ids. Uncached ids are fetched in chunks of at most ten to honor
// the store's bound on "in" queries.
func (c *EntityCache) GetBatch(ctx context.Context, ids []string) ([]*store.Document, error) {
	var uncached []string
	seen := make(map[string]bool, len(ids))
	c.mu.RLock()
	for _, id := range ids {
		if _, ok := c.entries[id]; ok || seen[id] {
			continue
		}
		seen[id] = true
		uncached = append(uncached, id)
	}
	c.mu.RUnlock()

	for start := 0; start < len(uncached); start += batchLimit {
		end := start + batchLimit
		if end > len(uncached) {
			end = len(uncached)
		}
		chunk := uncached[start:end]
		docs, err := c.client.GetAll(ctx, store.Query{
			Collection: c.collection,
			Filters:    []store.Filter{{Field: "id", Op: "in", Value: chunk}},
		})
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		for _, d := range docs {
			c.entries[d.ID] = cloneDocument(d)
		}
		c.mu.Unlock()
	}

	result := make([]*store.Document, len(ids))
	c.mu.RLock()
	for i, id := range ids {
		if d, ok := c.entries[id]; ok {
			doc := cloneDocument(d)
			result[i] = &doc
		}
	}
	c.mu.RUnlock()
	return result, nil
}

// Put stores an entity directly, e.g. right after it was written.
func (c *EntityCache) Put(doc store.Document) {
	c.mu.Lock()
	c.entries[doc.ID] = cloneDocument(doc)
	c.mu.Unlock()
}

// Invalidate drops an entry so the next read refetches it.
func (c *EntityCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

func cloneDocument(d store.Document) store.Document {
	data := make(map[string]interface{}, len(d.Data))
	for k, v := range d.Data {
		data[k] = v
	}
	return store.Document{ID: d.ID, Data: data}
}
