package database

import (
	"context"
	"fmt"

	"github.com/rashedsumon/ai-receptionist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxRecentCalls = 500

// MongoCallLog stores processed calls in the "calls" collection.
type MongoCallLog struct {
	coll *mongo.Collection
}

func NewMongoCallLog(db *mongo.Database) *MongoCallLog {
	return &MongoCallLog{coll: db.Collection(callsCollection)}
}

func (l *MongoCallLog) RecordCall(ctx context.Context, record *models.CallRecord) error {
	res, err := l.coll.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert call: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = id
	}
	return nil
}

// RecentCalls returns up to limit calls, newest first.
func (l *MongoCallLog) RecentCalls(ctx context.Context, limit int) ([]models.CallRecord, error) {
	if limit <= 0 || limit > maxRecentCalls {
		limit = maxRecentCalls
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := l.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer cursor.Close(ctx)

	calls := []models.CallRecord{}
	if err := cursor.All(ctx, &calls); err != nil {
		return nil, fmt.Errorf("failed to decode calls: %w", err)
	}
	return calls, nil
}
