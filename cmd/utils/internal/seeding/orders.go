package seeding

import (
	"fmt"
	"math/rand"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/shopspring/decimal"
)

// ReferencePrefix marks orders created by the demo tooling.
const ReferencePrefix = "Order 00001-"

var (
	Food   = gateway.Category{ID: 1, Name: "Food"}
	Drinks = gateway.Category{ID: 2, Name: "Drinks"}
)

type menuItem struct {
	productID int64
	name      string
	price     string
	category  gateway.Category
}

var menu = []menuItem{
	{productID: 10, name: "Margherita Pizza", price: "9.50", category: Food},
	{productID: 11, name: "Caesar Salad", price: "7.25", category: Food},
	{productID: 12, name: "Beef Burger", price: "12.00", category: Food},
	{productID: 13, name: "Tomato Soup", price: "5.50", category: Food},
	{productID: 14, name: "Fish Tacos", price: "10.75", category: Food},
	{productID: 20, name: "Lemonade", price: "3.00", category: Drinks},
	{productID: 21, name: "Iced Tea", price: "2.75", category: Drinks},
}

var floors = []string{"Main Floor", "Terrace", ""}

// DemoScreen cooks food only, so drink lines block payment.
func DemoScreen(shopID int64) gateway.ScreenConfig {
	return gateway.ScreenConfig{
		ShopID:      shopID,
		Name:        "Demo Kitchen",
		CategoryIDs: []int64{Food.ID},
	}
}

// RushOrders builds count counter orders with one to three lines each.
// The same seed always yields the same orders.
func RushOrders(shopID int64, count int, seed int64) []gateway.OrderPayload {
	rng := rand.New(rand.NewSource(seed))

	orders := make([]gateway.OrderPayload, 0, count)
	for i := 1; i <= count; i++ {
		lineCount := 1 + rng.Intn(3)
		lines := make([]gateway.LineCommand, 0, lineCount)
		total := decimal.Zero
		for j := 0; j < lineCount; j++ {
			item := menu[rng.Intn(len(menu))]
			line := demoLine(item, int64(1+rng.Intn(2)))
			total = total.Add(line.Fields.SubtotalWithTax)
			lines = append(lines, line)
		}

		orders = append(orders, gateway.OrderPayload{
			Reference:   fmt.Sprintf("%s002-%04d", ReferencePrefix, i),
			AmountTotal: total,
			AmountTax:   decimal.Zero,
			Lines:       lines,
			ShopID:      shopID,
			Hour:        11 + rng.Intn(3),
			Minute:      rng.Intn(60),
			Floor:       floors[rng.Intn(len(floors))],
		})
	}
	return orders
}

func demoLine(item menuItem, qty int64) gateway.LineCommand {
	quantity := decimal.NewFromInt(qty)
	unit := decimal.RequireFromString(item.price)
	subtotal := quantity.Mul(unit)
	return gateway.CreateLine(gateway.LineFields{
		Quantity:        quantity,
		UnitPrice:       unit,
		Subtotal:        subtotal,
		SubtotalWithTax: subtotal,
		Discount:        decimal.Zero,
		PriceExtra:      decimal.Zero,
		ProductID:       item.productID,
		TaxIDs:          []int64{},
		DisplayName:     item.name,
		Categories:      []gateway.Category{item.category},
	})
}
