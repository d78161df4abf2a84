package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoURL = "mongodb://localhost:27017"
	defaultDBName   = "kitchenscreen"
)

// connect opens the kitchen database. The caller disconnects the client.
func connect(ctx context.Context, config *aqm.Config, logger aqm.Logger) (*mongo.Client, *mongo.Database, error) {
	mongoURL := config.GetStringOrDef("db.mongo.url", defaultMongoURL)
	dbName := config.GetStringOrDef("db.mongo.name", defaultDBName)

	opts := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	logger.Info("Connected to MongoDB", "database", dbName)
	return client, client.Database(dbName), nil
}
