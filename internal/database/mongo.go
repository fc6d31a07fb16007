package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventure/internal/logger"
)

// Connect opens a Mongo client and verifies the connection with a
// few retries, matching the startup behavior of the rest of the stack.
func Connect(ctx context.Context, uri string, log *logger.Logger) (*mongo.Client, error) {
	var client *mongo.Client
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to MongoDB (attempt %d/%d)", i+1, maxRetries))

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err = mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(connectCtx, nil)
		}
		cancel()

		if err == nil {
			log.Info("DATABASE", "MongoDB connection successful")
			return client, nil
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after %d attempts: %w", maxRetries, err)
}

// EnsureIndexes creates the unique indexes the domain relies on:
// user email, task title and task description. Duplicate-creation
// races surface as storage conflicts through these.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	_, err = db.Collection("tasks").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "description", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("tasks indexes: %w", err)
	}

	_, err = db.Collection("events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("events date index: %w", err)
	}

	return nil
}
