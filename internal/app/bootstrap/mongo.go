package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

// defaultMongoDatabase is used when MONGODB_URI names no database.
const defaultMongoDatabase = "leads"

// mongoDatabaseName returns the database named in the URI path.
func mongoDatabaseName(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("bootstrap: invalid MONGODB_URI: %w", err)
	}
	if cs.Database == "" {
		return defaultMongoDatabase, nil
	}
	return cs.Database, nil
}

// ConnectMongo builds a client for uri. The driver connects in the
// background, so an unreachable server is not an error here.
func ConnectMongo(uri string, serverSelectionTimeout time.Duration) (*mongo.Client, string, error) {
	dbName, err := mongoDatabaseName(uri)
	if err != nil {
		return nil, "", err
	}

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, "", fmt.Errorf("bootstrap: mongo connect: %w", err)
	}
	return client, dbName, nil
}

// mongoPinger checks the primary is reachable.
type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}
