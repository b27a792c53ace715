package order

import (
	"context"

	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
)

type Repository interface {
	// ReplaceOrderLines deletes every row of orderID and inserts lines, in one
	// transaction. It returns the resource ids of the deleted and inserted rows.
	ReplaceOrderLines(ctx context.Context, orderID string, lines []model.ProductOrder) ([]string, error)
	OrdersPerDate(ctx context.Context, shopResourceID string, from, to day.Date) (model.OrdersPerDate, error)
}

// Tagger writes display tags back onto a Shopify order.
type Tagger interface {
	SetOrderTags(ctx context.Context, shop *model.Shop, orderID string, tags []string) error
}

// Refresher recomputes the current availability row of a shop resource.
type Refresher interface {
	Refresh(ctx context.Context, shopResourceID string) (*model.CurrentAvailability, error)
}

// LimitGuard is told about every ingested order so it can warn about plan limits.
type LimitGuard interface {
	CheckAndNotify(ctx context.Context, shop *model.Shop) error
}
