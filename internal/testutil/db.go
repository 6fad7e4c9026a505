package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/crewhub/internal/app/system/indexes"
)

// SetupTestDB connects to the Mongo instance named by
// CREWHUB_TEST_MONGO_URI and returns a per-test database that is
// dropped on cleanup. Tests that need Mongo are skipped when the
// variable is unset, so the pure-logic suites run anywhere.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("CREWHUB_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CREWHUB_TEST_MONGO_URI not set; skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect to test mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("ping test mongo: %v", err)
	}

	name := fmt.Sprintf("crewhub_test_%d", time.Now().UnixNano())
	db := client.Database(name)

	// Tests rely on the same unique indexes production runs with.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure test indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with a deadline generous enough for
// test database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
