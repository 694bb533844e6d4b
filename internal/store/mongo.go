package store

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoDocuments = "documents"

// mongoDoc is the persisted shape: the full slash path is the primary key and
// the parent collection is denormalized for querying.
type mongoDoc struct {
	Path       string                 `bson:"_id"`
	Collection string                 `bson:"collection"`
	Data       map[string]interface{} `bson:"data"`
}

// MongoClient implements Client on MongoDB. All logical collections live in a
// single "documents" collection keyed by path, and listeners are driven by a
// change stream that re-runs the query so consumers still receive full
// snapshots per change.
type MongoClient struct {
	coll *mongo.Collection
}

// NewMongoClient wraps a MongoDB database.
func NewMongoClient(db *mongo.Database) *MongoClient {
	return &MongoClient{coll: db.Collection(mongoDocuments)}
}

// Get retrieves a document by path.
func (c *MongoClient) Get(ctx context.Context, path string) (*Document, error) {
	var md mongoDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": path}).Decode(&md)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %s: %w", path, err)
	}
	return &Document{ID: docID(path), Data: md.Data}, nil
}

// Set creates or overwrites a document at path.
func (c *MongoClient) Set(ctx context.Context, path string, data map[string]interface{}) error {
	md := mongoDoc{Path: path, Collection: parentCollection(path), Data: data}
	opts := options.Replace().SetUpsert(true)
	if _, err := c.coll.ReplaceOne(ctx, bson.M{"_id": path}, md, opts); err != nil {
		return fmt.Errorf("mongo set %s: %w", path, err)
	}
	return nil
}

// Add creates a document with a generated id.
func (c *MongoClient) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := primitive.NewObjectID().Hex()
	if err := c.Set(ctx, Path(collection, id), data); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields into an existing document.
func (c *MongoClient) Update(ctx context.Context, path string, data map[string]interface{}) error {
	set := bson.M{}
	for k, v := range data {
		set["data."+k] = v
	}
	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": path}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mongo update %s: %w", path, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document; deleting a missing document is a no-op.
func (c *MongoClient) Delete(ctx context.Context, path string) error {
	if _, err := c.coll.DeleteOne(ctx, bson.M{"_id": path}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", path, err)
	}
	return nil
}

// GetAll runs a query once.
func (c *MongoClient) GetAll(ctx context.Context, q Query) ([]Document, error) {
	filter := bson.M{"collection": q.Collection}
	for _, f := range q.Filters {
		switch f.Op {
		case "==":
			filter["data."+f.Field] = f.Value
		case "in":
			filter["data."+f.Field] = bson.M{"$in": f.Value}
		default:
			return nil, fmt.Errorf("mongo query %s: unsupported operator %q", q.Collection, f.Op)
		}
	}

	opts := options.Find()
	if q.OrderBy != "" {
		order := 1
		if q.Direction == Descending {
			order = -1
		}
		opts.SetSort(bson.D{{Key: "data." + q.OrderBy, Value: order}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo query %s: %w", q.Collection, err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var md mongoDoc
		if err := cursor.Decode(&md); err != nil {
			return nil, fmt.Errorf("mongo query %s: %w", q.Collection, err)
		}
		docs = append(docs, Document{ID: docID(md.Path), Data: md.Data})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo query %s: %w", q.Collection, err)
	}
	return docs, nil
}

// Listen watches the change stream and re-runs the query whenever a document
// in its collection changes, delivering the full result set each time.
func (c *MongoClient) Listen(ctx context.Context, q Query, fn func(Snapshot)) (CancelFunc, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	cs, err := c.coll.Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("mongo watch %s: %w", q.Collection, err)
	}

	deliver := func() {
		docs, err := c.GetAll(streamCtx, q)
		if err != nil {
			// Leave the consumer's last-known-good snapshot in place.
			return
		}
		fn(Snapshot{Docs: docs})
	}

	go func() {
		defer cs.Close(context.Background())
		deliver()
		for cs.Next(streamCtx) {
			var event struct {
				DocumentKey struct {
					ID string `bson:"_id"`
				} `bson:"documentKey"`
			}
			if err := cs.Decode(&event); err != nil {
				continue
			}
			if parentCollection(event.DocumentKey.ID) != q.Collection {
				continue
			}
			deliver()
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

func (c *MongoClient) Close() error {
	return c.coll.Database().Client().Disconnect(context.Background())
}
