package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eventure/internal/errs"
	"eventure/internal/models"
)

type DB struct {
	Mongo *mongo.Database
}

func (d *DB) tasks() *mongo.Collection {
	return d.Mongo.Collection("tasks")
}

// CreateTask inserts a new task. The unique indexes on title and
// description surface duplicates as errs.ErrConflict.
func (d *DB) CreateTask(ctx context.Context, task models.Task) (primitive.ObjectID, error) {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	res, err := d.tasks().InsertOne(ctx, task)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, fmt.Errorf("%w: task title or description already exists", errs.ErrConflict)
		}
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (d *DB) GetTaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := d.tasks().FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &task, nil
}

func (d *DB) ListTasks(ctx context.Context) ([]models.Task, error) {
	cursor, err := d.tasks().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var found []models.Task
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *DB) ListTasksByManager(ctx context.Context, managerID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := d.tasks().Find(ctx, bson.M{"event_manager": managerID})
	if err != nil {
		return nil, err
	}
	var found []models.Task
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *DB) CountTasks(ctx context.Context) (int64, error) {
	return d.tasks().CountDocuments(ctx, bson.M{})
}

func (d *DB) CountTasksByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return d.tasks().CountDocuments(ctx, bson.M{"event": eventID})
}

func (d *DB) UpdateTask(ctx context.Context, task models.Task) error {
	_, err := d.tasks().UpdateOne(ctx, bson.M{"_id": task.ID}, bson.M{"$set": bson.M{
		"title":         task.Title,
		"description":   task.Description,
		"deadline":      task.Deadline,
		"event":         task.Event,
		"event_manager": task.EventManager,
	}})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: task title or description already exists", errs.ErrConflict)
	}
	return err
}

func (d *DB) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	_, err := d.tasks().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
