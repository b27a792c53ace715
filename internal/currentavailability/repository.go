package currentavailability

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/model"
)

type Repository interface {
	// Upsert writes ca keyed by shop_resource_id in a single statement.
	Upsert(ctx context.Context, ca *model.CurrentAvailability) error
	// CreateInitial inserts ca unless the resource already has a row.
	CreateInitial(ctx context.Context, ca *model.CurrentAvailability) error
}

// ResourceSource lists the resources a sweep walks. shop.Repository satisfies it.
type ResourceSource interface {
	FindResourceByID(ctx context.Context, id string) (*model.ShopResource, error)
	ListActiveResourceIDs(ctx context.Context, shopID string) ([]string, error)
}

// SearchIndexer receives resource availability documents. *search.Client satisfies it.
type SearchIndexer interface {
	Index(ctx context.Context, index, id string, doc interface{}) error
}

// Locker guards the sweep across replicas. *cache.RedisClient satisfies it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}
