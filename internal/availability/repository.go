package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
)

type Repository interface {
	// FindPeriods returns periods whose [start_date, end_date] intersects [from, to], both inclusive.
	FindPeriods(ctx context.Context, shopResourceID string, from, to day.Date) ([]model.AvailabilityPeriod, error)
	FindByID(ctx context.Context, id string) (*model.AvailabilityPeriod, error)
	Create(ctx context.Context, p *model.AvailabilityPeriod) error
	Update(ctx context.Context, p *model.AvailabilityPeriod) error
	Delete(ctx context.Context, id string) error
}

// OrderCounter sums product order quantities per chosen date.
type OrderCounter interface {
	OrdersPerDate(ctx context.Context, shopResourceID string, from, to day.Date) (model.OrdersPerDate, error)
}

// Refresher recomputes the current availability row of a shop resource.
type Refresher interface {
	Refresh(ctx context.Context, shopResourceID string) (*model.CurrentAvailability, error)
}

// WidgetCache stores rendered widget responses. *cache.RedisClient satisfies it.
// Responses are keyed by a per-resource generation; a refresh bumps the
// generation so a response computed before it can never be served after it.
type WidgetCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error
	GetInt64(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

func WidgetGenerationKey(shopResourceID string) string {
	return "availability:widget:" + shopResourceID + ":gen"
}

func WidgetCacheKey(shopResourceID string, generation int64) string {
	return fmt.Sprintf("availability:widget:%s:%d", shopResourceID, generation)
}
