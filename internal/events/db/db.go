package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eventure/internal/models"
)

type DB struct {
	Mongo *mongo.Database
}

func (d *DB) events() *mongo.Collection {
	return d.Mongo.Collection("events")
}

func (d *DB) CreateEvent(ctx context.Context, event models.Event) (primitive.ObjectID, error) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	res, err := d.events().InsertOne(ctx, event)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (d *DB) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	err := d.events().FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventByNameDescription backs the duplicate (name, description)
// pair check at creation.
func (d *DB) GetEventByNameDescription(ctx context.Context, name, description string) (*models.Event, error) {
	var event models.Event
	err := d.events().FindOne(ctx, bson.M{"name": name, "description": description}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindEventsByName returns every event with the given name so callers
// can detect ambiguous name references.
func (d *DB) FindEventsByName(ctx context.Context, name string) ([]models.Event, error) {
	cursor, err := d.events().Find(ctx, bson.M{"name": name})
	if err != nil {
		return nil, err
	}
	var found []models.Event
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	cursor, err := d.events().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var found []models.Event
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *DB) ListUpcomingEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	cursor, err := d.events().Find(ctx, bson.M{"date": bson.M{"$gt": now}})
	if err != nil {
		return nil, err
	}
	var found []models.Event
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

// ListEventsByParticipant matches events whose participants array
// contains the given user.
func (d *DB) ListEventsByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	cursor, err := d.events().Find(ctx, bson.M{"participants": userID})
	if err != nil {
		return nil, err
	}
	var found []models.Event
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *DB) CountEvents(ctx context.Context) (int64, error) {
	return d.events().CountDocuments(ctx, bson.M{})
}

func (d *DB) UpdateEvent(ctx context.Context, event models.Event) error {
	_, err := d.events().UpdateOne(ctx, bson.M{"_id": event.ID}, bson.M{"$set": bson.M{
		"name":          event.Name,
		"date":          event.Date,
		"location":      event.Location,
		"description":   event.Description,
		"event_manager": event.EventManager,
		"participants":  event.Participants,
	}})
	return err
}

func (d *DB) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	_, err := d.events().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
