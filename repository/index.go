package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupIndexes creates the collection indexes. The unique index on
// device_id is load-bearing: the at-most-one-device-per-device_id
// invariant depends on it, not on application-level checks.
func SetupIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	devicesCollection := db.Collection("devices")
	clicksCollection := db.Collection("clicks")

	deviceIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "device_id", Value: 1}},
			Options: options.Index().
				SetName("device_id_unique").
				SetUnique(true),
		},
		// Serves the activeToday window count
		{
			Keys: bson.D{{Key: "last_seen", Value: -1}},
			Options: options.Index().
				SetName("device_last_seen"),
		},
		// Serves the popular-devices grouping
		{
			Keys: bson.D{
				{Key: "device.type", Value: 1},
				{Key: "browser.name", Value: 1},
				{Key: "os.name", Value: 1},
			},
			Options: options.Index().
				SetName("device_classification"),
		},
	}

	clickIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "device_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().
				SetName("device_clicks_date").
				SetUnique(false),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().
				SetName("clicks_date"),
		},
		{
			Keys: bson.D{
				{Key: "page", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().
				SetName("page_clicks_date"),
		},
	}

	if _, err := devicesCollection.Indexes().CreateMany(ctx, deviceIndexes); err != nil {
		return fmt.Errorf("failed to create devices indexes: %w", err)
	}

	if _, err := clicksCollection.Indexes().CreateMany(ctx, clickIndexes); err != nil {
		return fmt.Errorf("failed to create clicks indexes: %w", err)
	}

	log.Println("Successfully created all indexes")
	return nil
}
