package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"photo-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection  = "users"
	photosCollection = "photos"
)

type Mongo struct {
	client *mongo.Client
	users  *mongo.Collection
	photos *mongo.Collection
}

// NewMongo connects, pings and makes sure photos are indexed by owner
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("unable to ping mongo: %w", err)
	}

	d := client.Database(database)
	m := &Mongo{
		client: client,
		users:  d.Collection(usersCollection),
		photos: d.Collection(photosCollection),
	}

	_, err = m.photos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("unable to create photos index: %w", err)
	}

	log.Println("Connected to MongoDB")
	return m, nil
}

func (m *Mongo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var u models.User
	if err := m.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (m *Mongo) FindPhotosByUser(ctx context.Context, userID string) ([]models.Photo, error) {
	cursor, err := m.photos.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}

	photos := []models.Photo{}
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (m *Mongo) FindPhotoByID(ctx context.Context, id string) (*models.Photo, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var p models.Photo
	if err := m.photos.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (m *Mongo) InsertUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	_, err := m.users.InsertOne(ctx, u)
	return err
}

func (m *Mongo) InsertPhoto(ctx context.Context, p *models.Photo) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	// $push needs an array, never null
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	_, err := m.photos.InsertOne(ctx, p)
	return err
}

func (m *Mongo) AppendComment(ctx context.Context, photoID string, c models.Comment) (*models.Photo, error) {
	oid, err := bson.ObjectIDFromHex(photoID)
	if err != nil {
		return nil, ErrNotFound
	}
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Photo
	err = m.photos.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"comments": c}},
		opts,
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
