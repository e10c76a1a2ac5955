package storage

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoEvent is the stored document. Field names match the collection
// written by earlier deployments so existing history stays readable.
type mongoEvent struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Tab              string             `bson:"tab"`
	Filename         string             `bson:"filename"`
	Timestamp        string             `bson:"timestamp"`
	Entities         []string           `bson:"entities"`
	SelectedEntities []string           `bson:"selected_entities"`
	CreatedAt        time.Time          `bson:"created_at"`
}

// MongoStorage implements Storage on a MongoDB collection.
type MongoStorage struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and uses database.collection for events.
func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongo")
	}
	return &MongoStorage{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// NewMongoStorage uses an existing collection. The caller owns the client.
func NewMongoStorage(coll *mongo.Collection) *MongoStorage {
	return &MongoStorage{coll: coll}
}

// Init verifies the deployment is reachable.
func (s *MongoStorage) Init(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "failed to ping mongo")
	}
	return nil
}

// RecordUsage inserts a document and returns the hex form of its ObjectID.
func (s *MongoStorage) RecordUsage(ctx context.Context, event UsageEvent) (string, error) {
	event = normalize(event)
	doc := mongoEvent{
		ID:               primitive.NewObjectID(),
		Tab:              event.Tab,
		Filename:         event.Filename,
		Timestamp:        event.Timestamp,
		Entities:         event.DetectedEntities,
		SelectedEntities: event.SelectedEntities,
		CreatedAt:        event.CreatedAt.UTC(),
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", errors.Wrap(err, "failed to insert usage document")
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.Newf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// GetUsageHistory returns matching documents in the collection's natural order.
func (s *MongoStorage) GetUsageHistory(ctx context.Context, filter Filter) ([]UsageEvent, error) {
	cursor, err := s.coll.Find(ctx, mongoQuery(filter))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query usage documents")
	}

	var docs []mongoEvent
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to decode usage documents")
	}

	events := make([]UsageEvent, 0, len(docs))
	for _, doc := range docs {
		events = append(events, normalize(UsageEvent{
			ID:               doc.ID.Hex(),
			Tab:              doc.Tab,
			Filename:         doc.Filename,
			Timestamp:        doc.Timestamp,
			DetectedEntities: doc.Entities,
			SelectedEntities: doc.SelectedEntities,
			CreatedAt:        doc.CreatedAt,
		}))
	}
	return events, nil
}

// Close disconnects the client if this store opened it.
func (s *MongoStorage) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mongoQuery translates a Filter into a find document.
func mongoQuery(f Filter) bson.M {
	query := bson.M{}
	if f.Tab != "" {
		query["tab"] = f.Tab
	}
	if f.Filename != "" {
		query["filename"] = f.Filename
	}
	if f.StartDate != "" || f.EndDate != "" {
		rng := bson.M{}
		if f.StartDate != "" {
			rng["$gte"] = f.StartDate
		}
		if f.EndDate != "" {
			rng["$lte"] = f.EndDate
		}
		query["timestamp"] = rng
	}
	return query
}
