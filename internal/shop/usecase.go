package shop

import (
	"context"

	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/shop/dto"
)

type UseCase interface {
	ShopByDomain(ctx context.Context, domain string) (*model.Shop, error)
	Settings(ctx context.Context, shopID string) (model.ShopSettings, error)

	RegisterResource(ctx context.Context, input *dto.RegisterResourceInput) (*model.ShopResource, error)
	// OwnedResource loads a resource and checks it belongs to shopID.
	OwnedResource(ctx context.Context, shopID, shopResourceID string) (*model.ShopResource, error)
	// ResolveProducts maps Shopify product ids to tracked resources. With autoTrack,
	// untracked products get a resource stub; otherwise they are left out.
	ResolveProducts(ctx context.Context, shopID string, productIDs []string, autoTrack bool) (map[string]model.ShopResource, error)
	ListResources(ctx context.Context, filters *dto.ResourceFilters) ([]model.ResourceAvailability, int, error)
}
