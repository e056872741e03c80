package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel/trace"

	"blogapi/internal/config"
	"blogapi/internal/domain"
)

// userDocument mirrors the documents already stored in the users collection,
// including the "date" creation field.
type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	IsAdmin   bool               `bson:"isAdmin"`
	CreatedAt time.Time          `bson:"date"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		IsAdmin:   d.IsAdmin,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll}
}

func ConnectMongo(ctx context.Context, cfg *config.MongoConfig, tp trace.TracerProvider) (*MongoUserRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMonitor(NewCommandMonitor(tp)).
		SetDialer(NewResolver(tp))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return NewMongoUserRepository(client.Database(cfg.Database).Collection(cfg.Collection)), nil
}

func (r *MongoUserRepository) Create(ctx context.Context, u *domain.User) error {
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	u.ID = doc.ID.Hex()
	u.CreatedAt = doc.CreatedAt
	return nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc userDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	u := doc.toDomain()
	return &u, nil
}

func (r *MongoUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]domain.User, len(docs))
	for i, d := range docs {
		users[i] = d.toDomain()
	}
	return users, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, u *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return ErrNotFound
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "username", Value: u.Username},
		{Key: "name", Value: u.Name},
		{Key: "email", Value: u.Email},
		{Key: "password", Value: u.Password},
		{Key: "isAdmin", Value: u.IsAdmin},
	}}}

	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Close(ctx context.Context) error {
	return r.coll.Database().Client().Disconnect(ctx)
}
