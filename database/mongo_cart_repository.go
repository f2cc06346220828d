package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a pooled client and verifies it with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(10 * time.Minute).
		SetServerSelectionTimeout(5 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// MongoCartRepository keeps the cart embedded in the customer document
// (`customers` collection, _id = user id). Clearing the cart unsets the
// field and leaves the customer in place.
type MongoCartRepository struct {
	customers *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{customers: db.Collection("customers")}
}

func (m *MongoCartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	var doc cartDocument
	err := m.customers.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"cart": 1, "cart_updated_at": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find cart: %w", err)
	}
	if doc.Items == nil {
		return nil, nil
	}
	return fromDocument(doc)
}

func (m *MongoCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	doc := toDocument(cart)

	update := bson.M{"$set": bson.M{"cart": doc.Items, "cart_updated_at": doc.UpdatedAt}}
	_, err := m.customers.UpdateOne(ctx, bson.M{"_id": cart.UserID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo save cart: %w", err)
	}
	return nil
}

func (m *MongoCartRepository) DeleteCart(ctx context.Context, userID string) error {
	update := bson.M{"$unset": bson.M{"cart": "", "cart_updated_at": ""}}
	if _, err := m.customers.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return fmt.Errorf("mongo clear cart: %w", err)
	}
	return nil
}
