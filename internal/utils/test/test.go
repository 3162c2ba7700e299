package testutils

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MustSkipf skips a test suite, but panics if ATLASMAN_NO_SKIP_TEST is set
func MustSkipf(t *testing.T, format string, args ...interface{}) {
	if len(os.Getenv("ATLASMAN_NO_SKIP_TEST")) > 0 {
		panic("test was skipped, but ATLASMAN_NO_SKIP_TEST is set")
	}
	t.Skipf(format, args...)
}

const (
	defaultMongoURI = "mongodb://localhost:27017"
)

// MongoURI returns the MongoDB uri to use for testing
func MongoURI() string {
	if uri := os.Getenv("ATLASMAN_TEST_MONGODB_URI"); uri != "" {
		return uri
	}
	return defaultMongoURI
}

var mongoNotRunning = false

// SkipUnlessMongoRunning skips tests if there is no MongoDB server
// running at the configured testing uri (see: MongoURI())
func SkipUnlessMongoRunning(t *testing.T) *mongo.Client {
	if mongoNotRunning {
		MustSkipf(t, "MongoDB not running at %s", MongoURI())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(MongoURI()))
	if err == nil {
		err = client.Ping(ctx, readpref.Primary())
	}
	if err != nil {
		mongoNotRunning = true
		MustSkipf(t, "MongoDB not running at %s", MongoURI())
		return nil
	}

	return client
}
