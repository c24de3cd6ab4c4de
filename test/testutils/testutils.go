package testutils

import (
	"context"
	"os"
	"testing"
	"time"

	"main/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestEnvironment sets the environment a test process expects. Tests
// run against a local MongoDB and a dedicated database that is dropped on
// cleanup.
func SetupTestEnvironment() {
	os.Setenv("GO_ENV", "test")

	if os.Getenv("MONGO_URI") == "" {
		os.Setenv("MONGO_URI", "mongodb://localhost:27017")
	}
	os.Setenv("MONGO_DB", "guesttrack_test")
	if os.Getenv("JWT_SECRET_KEY") == "" {
		os.Setenv("JWT_SECRET_KEY", "test_secret_key")
	}

	utils.InitJWT()
	utils.InitValidator()
}

// SetupTestDB connects to the test MongoDB and returns a cleanup function
// that drops the test database and disconnects.
func SetupTestDB(t *testing.T) (*mongo.Client, func()) {
	t.Helper()

	if os.Getenv("GO_ENV") != "test" {
		SetupTestEnvironment()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(os.Getenv("MONGO_URI"))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("Failed to ping MongoDB: %v", err)
	}

	cleanup := func() {
		t.Helper()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Database(os.Getenv("MONGO_DB")).Drop(ctx); err != nil {
			t.Logf("Warning: Failed to drop test database: %v", err)
		}
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("Warning: Failed to disconnect: %v", err)
		}
	}

	return client, cleanup
}

// DropCollections clears the named collections so each test starts empty.
func DropCollections(t *testing.T, db *mongo.Database, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := db.Collection(name).Drop(context.Background()); err != nil {
			t.Logf("Warning: Failed to drop collection %s: %v", name, err)
		}
	}
}
