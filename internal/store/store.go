package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a document does not exist at the given path.
var ErrNotFound = errors.New("store: document not found")

// Direction controls the sort order of a query.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Filter narrows a query to documents whose field matches the value.
// Supported operators are "==" and "in" (value must be a slice for "in").
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Query describes a filtered, ordered read over one collection.
// Collection is a slash-separated path, e.g. "posts/p1/likes".
// Documents with equal order keys are returned in backend insertion order,
// which is not deterministic across backends.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Direction  Direction
	Limit      int
}

// Document is the client-side view of a stored record.
type Document struct {
	ID   string                 `json:"id"`
	Data map[string]interface{} `json:"data"`
}

// Snapshot carries the full current result set of a query. Listeners always
// receive complete snapshots, never incremental deltas.
type Snapshot struct {
	Docs []Document
}

// CancelFunc tears down a listener. Implementations must make it safe to
// call more than once and after the backend connection has dropped.
type CancelFunc func()

// Client is the boundary to the document store backing all entities.
type Client interface {
	// Get returns the document at path, or ErrNotFound.
	Get(ctx context.Context, path string) (*Document, error)
	// Set creates or fully overwrites the document at path.
	Set(ctx context.Context, path string, data map[string]interface{}) error
	// Add creates a document with a generated id and returns that id.
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	// Update merges the given fields into an existing document.
	Update(ctx context.Context, path string, data map[string]interface{}) error
	// Delete removes the document at path. Deleting a missing document is a no-op.
	Delete(ctx context.Context, path string) error
	// GetAll runs the query once and returns the matching documents.
	GetAll(ctx context.Context, q Query) ([]Document, error)
	// Listen delivers a full snapshot immediately and again after every
	// change to the query's result set, until cancelled.
	Listen(ctx context.Context, q Query, fn func(Snapshot)) (CancelFunc, error)
	Close() error
}

// Path joins document path segments.
func Path(parts ...string) string {
	return strings.Join(parts, "/")
}

// parentCollection returns the collection a document path belongs to.
func parentCollection(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// docID returns the last segment of a document path.
func docID(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return path
	}
	return path[i+1:]
}
