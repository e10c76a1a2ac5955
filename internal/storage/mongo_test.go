package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStorage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("record usage returns object id hex", func(mt *mtest.T) {
		store := NewMongoStorage(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := store.RecordUsage(context.Background(), UsageEvent{
			Tab:       "redact-image",
			Filename:  "a.png",
			Timestamp: "2024-01-01 00:00:00",
			CreatedAt: time.Now(),
		})
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(id)
		assert.NoError(mt, err)
	})

	mt.Run("record usage surfaces write errors", func(mt *mtest.T) {
		store := NewMongoStorage(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := store.RecordUsage(context.Background(), UsageEvent{Tab: "t"})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to insert usage document")
	})

	mt.Run("history decodes documents", func(mt *mtest.T) {
		store := NewMongoStorage(mt.Coll)
		oid := primitive.NewObjectID()
		ns := mt.DB.Name() + "." + mt.Coll.Name()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: oid},
				{Key: "tab", Value: "redact-image"},
				{Key: "filename", Value: "a.png"},
				{Key: "timestamp", Value: "2024-01-01 00:00:00"},
				{Key: "entities", Value: bson.A{"face", "plate"}},
				{Key: "selected_entities", Value: bson.A{"face"}},
				{Key: "created_at", Value: time.Now()},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "tab", Value: "redact-image"},
				{Key: "filename", Value: "legacy.png"},
				{Key: "timestamp", Value: "2024-01-02 00:00:00"},
			},
		))

		got, err := store.GetUsageHistory(context.Background(), Filter{Tab: "redact-image"})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, oid.Hex(), got[0].ID)
		assert.Equal(mt, []string{"face", "plate"}, got[0].DetectedEntities)
		assert.Equal(mt, []string{"face"}, got[0].SelectedEntities)
		assert.Equal(mt, []string{}, got[1].DetectedEntities)
		assert.Equal(mt, []string{}, got[1].SelectedEntities)
	})
}

func TestMongoQuery(t *testing.T) {
	assert.Equal(t, bson.M{}, mongoQuery(Filter{}))

	assert.Equal(t, bson.M{
		"tab":      "redact-image",
		"filename": "a.png",
		"timestamp": bson.M{
			"$gte": "2024-01-01",
			"$lte": "2024-12-31",
		},
	}, mongoQuery(Filter{Tab: "redact-image", Filename: "a.png", StartDate: "2024-01-01", EndDate: "2024-12-31"}))

	assert.Equal(t, bson.M{"timestamp": bson.M{"$lte": "2024-12-31"}}, mongoQuery(Filter{EndDate: "2024-12-31"}))
}
