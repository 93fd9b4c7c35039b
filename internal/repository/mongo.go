package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoSeqField = "_seq"

// MongoStore keeps each collection in a MongoDB collection of the same name
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB using the provided URI
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(mongoDBName(uri))}, nil
}

// mongoDBName parses the database name from the URI, defaulting to "neighbors"
func mongoDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "neighbors"
	}
	return u.Path[1:]
}

// Put upserts a document; the insertion sequence is only set on first write
func (r *MongoStore) Put(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	var fields bson.M
	if err := bson.UnmarshalExtJSON(body, false, &fields); err != nil {
		return fmt.Errorf("failed to convert document: %w", err)
	}
	delete(fields, "_id")

	update := bson.M{
		"$set":         fields,
		"$setOnInsert": bson.M{mongoSeqField: time.Now().UnixNano()},
	}
	_, err = r.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store %s/%s: %w", collection, id, err)
	}
	return nil
}

// List retrieves every document of a collection in first-write order
func (r *MongoStore) List(ctx context.Context, collection string) ([][]byte, error) {
	opts := options.Find().SetSort(bson.D{{Key: mongoSeqField, Value: 1}})
	cursor, err := r.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs [][]byte
	for cursor.Next(ctx) {
		var fields bson.M
		if err := cursor.Decode(&fields); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		delete(fields, "_id")
		delete(fields, mongoSeqField)

		body, err := bson.MarshalExtJSON(fields, false, false)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s document: %w", collection, err)
		}
		docs = append(docs, body)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", collection, err)
	}

	return docs, nil
}

// Close disconnects the client
func (r *MongoStore) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
