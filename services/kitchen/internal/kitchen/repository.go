package kitchen

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *Order) error
	UpdateOrder(ctx context.Context, o *Order) error
	FindOrder(ctx context.Context, id int64) (*Order, error)
	FindOrderByReference(ctx context.Context, reference string) (*Order, error)
	// ListCookingOrders returns the cooking orders of a shop, newest first.
	ListCookingOrders(ctx context.Context, shopID int64) ([]Order, error)
	ClearOrders(ctx context.Context) error

	CreateLines(ctx context.Context, lines []OrderLine) error
	UpdateLine(ctx context.Context, l *OrderLine) error
	FindLine(ctx context.Context, id int64) (*OrderLine, error)
	ListLines(ctx context.Context, orderIDs []int64) ([]OrderLine, error)
}

type ScreenRepository interface {
	FindScreen(ctx context.Context, shopID int64) (*Screen, error)
	SaveScreen(ctx context.Context, s *Screen) error
	ListScreens(ctx context.Context) ([]Screen, error)
}
