package kitchen

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	kitchenDemoSeedApplication = "kitchen_demo"
	defaultDemoShopID          = 1
)

// Demo categories. Drinks are not cooked, so paying an order that has one is blocked.
var (
	demoFood   = gateway.Category{ID: 1, Name: "Food"}
	demoDrinks = gateway.Category{ID: 2, Name: "Drinks"}
)

// Seeds returns the demo seeds of the kitchen service for a shop.
func Seeds(svc *Service, shopID int64) []seed.Seed {
	return []seed.Seed{
		{
			ID:          "2025-01-10_demo_kitchen_screen_v1",
			Description: "Create the demo kitchen screen",
			Run: func(ctx context.Context) error {
				return svc.SaveScreen(ctx, &Screen{
					ShopID:      shopID,
					Name:        "Main kitchen",
					CategoryIDs: []int64{demoFood.ID},
				})
			},
		},
		{
			ID:          "2025-01-10_demo_kitchen_orders_v1",
			Description: "Create demo kitchen orders",
			Run: func(ctx context.Context) error {
				_, err := svc.Details(ctx, shopID, DemoOrders(shopID))
				return err
			},
		},
	}
}

// DemoOrders returns a few counter orders as the kitchen would receive them.
func DemoOrders(shopID int64) []gateway.OrderPayload {
	return []gateway.OrderPayload{
		demoOrder(shopID, "Order 00001-001-0001", 12, 5, "Main Floor",
			demoLine(10, "Margherita Pizza", "2", "9.50", demoFood),
			demoLine(11, "Caesar Salad", "1", "7.25", demoFood),
		),
		demoOrder(shopID, "Order 00001-001-0002", 12, 11, "Terrace",
			demoLine(12, "Beef Burger", "1", "12.00", demoFood),
		),
		demoOrder(shopID, "Order 00001-001-0003", 12, 20, "",
			demoLine(13, "Tomato Soup", "1", "5.50", demoFood),
			demoLine(20, "Lemonade", "2", "3.00", demoDrinks),
		),
	}
}

func demoOrder(shopID int64, reference string, hour, minute int, floor string, lines ...gateway.LineCommand) gateway.OrderPayload {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Fields.SubtotalWithTax)
	}
	return gateway.OrderPayload{
		Reference:   reference,
		AmountTotal: total,
		AmountTax:   decimal.Zero,
		Lines:       lines,
		ShopID:      shopID,
		Hour:        hour,
		Minute:      minute,
		Floor:       floor,
	}
}

func demoLine(productID int64, name, qty, price string, category gateway.Category) gateway.LineCommand {
	quantity := decimal.RequireFromString(qty)
	unit := decimal.RequireFromString(price)
	subtotal := quantity.Mul(unit)
	return gateway.CreateLine(gateway.LineFields{
		Quantity:        quantity,
		UnitPrice:       unit,
		Subtotal:        subtotal,
		SubtotalWithTax: subtotal,
		Discount:        decimal.Zero,
		PriceExtra:      decimal.Zero,
		ProductID:       productID,
		TaxIDs:          []int64{},
		DisplayName:     name,
		Categories:      []gateway.Category{category},
	})
}

// DemoShopID reads kitchen.demo.shop.id, falling back to shop 1.
func DemoShopID(config *aqm.Config) int64 {
	if config == nil {
		return defaultDemoShopID
	}
	raw := config.GetStringOrDef("kitchen.demo.shop.id", "")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return defaultDemoShopID
	}
	return id
}

// ApplyDemoSeeds applies demo seeds if enabled via config
func ApplyDemoSeeds(ctx context.Context, config *aqm.Config, svc *Service, dbFn func() *mongo.Database, logger aqm.Logger) error {
	if config == nil {
		return nil
	}
	enabled, _ := config.GetString("demo.seed")
	if enabled != "true" {
		return nil
	}

	db := dbFn()
	if db == nil {
		return errors.New("database is required for demo seeding")
	}

	shopID := DemoShopID(config)
	logger.Info("Demo seeding enabled, applying demo kitchen data", "shop_id", shopID)
	tracker := seed.NewMongoTracker(db)

	if err := seed.Apply(ctx, tracker, Seeds(svc, shopID), kitchenDemoSeedApplication); err != nil {
		return fmt.Errorf("demo seed failed: %w", err)
	}

	logger.Info("Demo kitchen data seeded successfully")
	return nil
}
