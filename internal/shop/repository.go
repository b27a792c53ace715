package shop

import (
	"context"

	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/shop/dto"
)

type Repository interface {
	// Shops
	FindByDomain(ctx context.Context, domain string) (*model.Shop, error)
	GetSettings(ctx context.Context, shopID string) (model.ShopSettings, error)

	// Shop resources
	FindResourceByID(ctx context.Context, id string) (*model.ShopResource, error)
	FindResourceByResourceID(ctx context.Context, shopID, resourceID string) (*model.ShopResource, error)
	FindResourcesByResourceIDs(ctx context.Context, shopID string, resourceIDs []string) ([]model.ShopResource, error)
	// CreateResource inserts r unless (shop_id, resource_id) exists. It reports whether a row was inserted
	// and always leaves r holding the stored row.
	CreateResource(ctx context.Context, r *model.ShopResource) (bool, error)
	// ListActiveResourceIDs lists resources of installed shops; an empty shopID means every shop.
	ListActiveResourceIDs(ctx context.Context, shopID string) ([]string, error)
	ListResources(ctx context.Context, filters *dto.ResourceFilters) ([]model.ResourceAvailability, int, error)
}

// InitialCreator creates the zeroed availability cache row of a new resource.
type InitialCreator interface {
	CreateInitial(ctx context.Context, shopResourceID string) error
}
