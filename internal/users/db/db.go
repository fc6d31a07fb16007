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

func (d *DB) users() *mongo.Collection {
	return d.Mongo.Collection("users")
}

// CreateUser inserts a new user. A duplicate email surfaces as
// errs.ErrConflict through the unique index.
func (d *DB) CreateUser(ctx context.Context, user models.User) (primitive.ObjectID, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	res, err := d.users().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, fmt.Errorf("%w: email already registered", errs.ErrConflict)
		}
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// GetUserByID returns nil without error when no user matches.
func (d *DB) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := d.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.users().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	var user models.User
	err := d.users().FindOne(ctx, bson.M{"email": email, "role": role}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUsersByName returns every user of the given role with the given
// name. Names are not unique, so callers decide what more than one
// match means.
func (d *DB) FindUsersByName(ctx context.Context, name string, role models.Role) ([]models.User, error) {
	cursor, err := d.users().Find(ctx, bson.M{"name": name, "role": role})
	if err != nil {
		return nil, err
	}
	var found []models.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *DB) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := d.users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var found []models.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := d.users().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var found []models.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *DB) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	cursor, err := d.users().Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, err
	}
	var found []models.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *DB) CountUsers(ctx context.Context) (int64, error) {
	return d.users().CountDocuments(ctx, bson.M{})
}

func (d *DB) CountUsersByRole(ctx context.Context, role models.Role) (int64, error) {
	return d.users().CountDocuments(ctx, bson.M{"role": role})
}

func (d *DB) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	_, err := d.users().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
