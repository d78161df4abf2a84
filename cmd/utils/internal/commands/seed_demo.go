package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/appetiteclub/kitchenscreen/cmd/utils/internal/seeding"
	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/aquamarinepk/aqm"
)

const (
	defaultDemoOrders = 5
	defaultDemoSeed   = 1
)

// SeedOptions selects where demo orders go and how many are sent.
type SeedOptions struct {
	KitchenURL string
	ShopID     int64
	Orders     int
	Seed       int64
}

// DefaultSeedOptions reads the seed-demo defaults from config.
func DefaultSeedOptions(config *aqm.Config) SeedOptions {
	return SeedOptions{
		KitchenURL: config.GetStringOrDef("services.kitchen.url", "http://localhost:8087"),
		ShopID:     intOption(config, "demo.shop.id", 1),
		Orders:     int(intOption(config, "demo.orders", defaultDemoOrders)),
		Seed:       intOption(config, "demo.seed.value", defaultDemoSeed),
	}
}

// SeedDemo configures a demo screen and sends a rush of demo orders through
// a running kitchen service.
func SeedDemo(ctx context.Context, opts SeedOptions, logger aqm.Logger) error {
	if opts.ShopID <= 0 {
		return fmt.Errorf("shop id must be positive, got %d", opts.ShopID)
	}
	if opts.Orders <= 0 {
		return fmt.Errorf("order count must be positive, got %d", opts.Orders)
	}
	logger.Info("Starting demo seeding process...", "kitchen", opts.KitchenURL, "shop_id", opts.ShopID)

	client := gateway.NewHTTPClient(opts.KitchenURL, logger)

	if err := client.SaveScreen(ctx, seeding.DemoScreen(opts.ShopID)); err != nil {
		return fmt.Errorf("save demo screen: %w", err)
	}
	logger.Info("Demo screen saved", "shop_id", opts.ShopID)

	for _, order := range seeding.RushOrders(opts.ShopID, opts.Orders, opts.Seed) {
		if _, err := client.SubmitOrder(ctx, order); err != nil {
			return fmt.Errorf("submit %s: %w", order.Reference, err)
		}
		logger.Info("Demo order sent", "reference", order.Reference, "lines", len(order.Lines))
	}

	return nil
}

func intOption(config *aqm.Config, key string, def int64) int64 {
	raw, ok := config.GetString(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
