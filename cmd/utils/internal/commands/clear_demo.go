package commands

import (
	"context"
	"fmt"
	"regexp"

	"github.com/appetiteclub/kitchenscreen/cmd/utils/internal/seeding"
	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// kitchenSeedIDs are the seeds the kitchen service applies on start with demo.seed=true.
var kitchenSeedIDs = []string{
	"2025-01-10_demo_kitchen_screen_v1",
	"2025-01-10_demo_kitchen_orders_v1",
}

// ClearDemo removes demo orders, their lines and the kitchen seed markers
func ClearDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, db, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	ids, err := demoOrderIDs(ctx, db)
	if err != nil {
		return err
	}

	if len(ids) > 0 {
		linesResult, err := db.Collection("order_lines").DeleteMany(ctx, bson.M{"order_id": bson.M{"$in": ids}})
		if err != nil {
			return fmt.Errorf("delete demo order lines: %w", err)
		}
		logger.Info("Deleted demo order lines", "count", linesResult.DeletedCount)

		ordersResult, err := db.Collection("orders").DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return fmt.Errorf("delete demo orders: %w", err)
		}
		logger.Info("Deleted demo orders", "count", ordersResult.DeletedCount)
	}

	trackerResult, err := db.Collection("_seeds").DeleteMany(ctx, bson.M{"_id": bson.M{"$in": kitchenSeedIDs}})
	if err != nil {
		return fmt.Errorf("delete kitchen seed tracker: %w", err)
	}
	logger.Info("Cleared kitchen seed tracker", "deleted", trackerResult.DeletedCount)

	return nil
}

func demoOrderFilter() bson.M {
	return bson.M{"pos_reference": bson.M{"$regex": "^" + regexp.QuoteMeta(seeding.ReferencePrefix)}}
}

func demoOrderIDs(ctx context.Context, db *mongo.Database) ([]int64, error) {
	cursor, err := db.Collection("orders").Find(ctx, demoOrderFilter())
	if err != nil {
		return nil, fmt.Errorf("find demo orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID int64 `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode demo orders: %w", err)
	}

	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
