package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreClient implements Client on Cloud Firestore.
type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient wraps an initialized Firestore client.
func NewFirestoreClient(client *firestore.Client) *FirestoreClient {
	return &FirestoreClient{client: client}
}

// Get retrieves a document by path from Firestore.
func (c *FirestoreClient) Get(ctx context.Context, path string) (*Document, error) {
	snap, err := c.client.Doc(path).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get %s: %w", path, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// Set creates or overwrites a document in Firestore.
func (c *FirestoreClient) Set(ctx context.Context, path string, data map[string]interface{}) error {
	if _, err := c.client.Doc(path).Set(ctx, data); err != nil {
		return fmt.Errorf("firestore set %s: %w", path, err)
	}
	return nil
}

// Add creates a document with a server-generated id.
func (c *FirestoreClient) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	ref, _, err := c.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("firestore add to %s: %w", collection, err)
	}
	return ref.ID, nil
}

// Update merges fields into an existing document.
func (c *FirestoreClient) Update(ctx context.Context, path string, data map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(data))
	for k, v := range data {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if _, err := c.client.Doc(path).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore update %s: %w", path, err)
	}
	return nil
}

// Delete removes a document. Firestore treats missing documents as a no-op.
func (c *FirestoreClient) Delete(ctx context.Context, path string) error {
	if _, err := c.client.Doc(path).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s: %w", path, err)
	}
	return nil
}

func (c *FirestoreClient) buildQuery(q Query) firestore.Query {
	fq := c.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == Descending {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq
}

// GetAll runs a query once against Firestore.
func (c *FirestoreClient) GetAll(ctx context.Context, q Query) ([]Document, error) {
	snaps, err := c.buildQuery(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore query %s: %w", q.Collection, err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, s := range snaps {
		docs = append(docs, Document{ID: s.Ref.ID, Data: s.Data()})
	}
	return docs, nil
}

// Listen attaches a snapshot listener to the query. Firestore delivers the
// full result set on every change, which is exactly the contract Client
// promises. Transient read errors keep the last delivered snapshot in place.
func (c *FirestoreClient) Listen(ctx context.Context, q Query, fn func(Snapshot)) (CancelFunc, error) {
	it := c.buildQuery(q).Snapshots(ctx)
	go func() {
		for {
			qsnap, err := it.Next()
			if err != nil {
				// Cancelled or the connection dropped; the consumer keeps
				// its last-known-good data.
				return
			}
			snaps, err := qsnap.Documents.GetAll()
			if err != nil {
				continue
			}
			docs := make([]Document, 0, len(snaps))
			for _, s := range snaps {
				docs = append(docs, Document{ID: s.Ref.ID, Data: s.Data()})
			}
			fn(Snapshot{Docs: docs})
		}
	}()
	return it.Stop, nil
}

// Close releases the underlying Firestore client.
func (c *FirestoreClient) Close() error {
	return c.client.Close()
}
