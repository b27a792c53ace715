package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/shop"
	"github.com/fekuna/omnipos-availability-service/internal/shop/dto"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/fekuna/omnipos-availability-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resourceIndexMapping = `{
	"mappings": {
		"properties": {
			"shop_id": { "type": "keyword" },
			"resource_id": { "type": "keyword" },
			"title": { "type": "text" },
			"next_availability_date": { "type": "date" },
			"last_availability_date": { "type": "date" },
			"available_dates": { "type": "integer" },
			"sold_out_dates": { "type": "integer" },
			"created_at": { "type": "date" }
		}
	}
}`

// EnsureResourceIndex creates model.ResourceIndex. An existing index is left as is.
func EnsureResourceIndex(ctx context.Context, es *search.Client) error {
	return es.CreateIndex(ctx, model.ResourceIndex, resourceIndexMapping)
}

type shopUseCase struct {
	repo    shop.Repository
	initial shop.InitialCreator
	es      *search.Client
	logger  logger.ZapLogger
}

func NewShopUseCase(repo shop.Repository, initial shop.InitialCreator, es *search.Client, log logger.ZapLogger) shop.UseCase {
	return &shopUseCase{
		repo:    repo,
		initial: initial,
		es:      es,
		logger:  log,
	}
}

func (uc *shopUseCase) ShopByDomain(ctx context.Context, domain string) (*model.Shop, error) {
	s, err := uc.repo.FindByDomain(ctx, strings.ToLower(strings.TrimSpace(domain)))
	if err != nil {
		return nil, err
	}
	if s == nil || s.UninstalledAt != nil {
		return nil, apperr.NotFound("shop", domain)
	}
	return s, nil
}

func (uc *shopUseCase) Settings(ctx context.Context, shopID string) (model.ShopSettings, error) {
	return uc.repo.GetSettings(ctx, shopID)
}

func (uc *shopUseCase) RegisterResource(ctx context.Context, input *dto.RegisterResourceInput) (*model.ShopResource, error) {
	if strings.TrimSpace(input.ResourceID) == "" {
		return nil, apperr.NewValidation("resourceId", "is required")
	}
	res, _, err := uc.createResource(ctx, input.ShopID, strings.TrimSpace(input.ResourceID), input.Title)
	return res, err
}

// createResource inserts the resource (or loads the existing one) and makes
// sure its zeroed cache row exists.
func (uc *shopUseCase) createResource(ctx context.Context, shopID, resourceID, title string) (*model.ShopResource, bool, error) {
	now := time.Now()
	res := &model.ShopResource{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ShopID:     shopID,
		ResourceID: resourceID,
		Title:      title,
	}

	created, err := uc.repo.CreateResource(ctx, res)
	if err != nil {
		return nil, false, err
	}
	if err := uc.initial.CreateInitial(ctx, res.ID); err != nil {
		return nil, false, err
	}
	return res, created, nil
}

func (uc *shopUseCase) OwnedResource(ctx context.Context, shopID, shopResourceID string) (*model.ShopResource, error) {
	res, err := uc.repo.FindResourceByID(ctx, shopResourceID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperr.NotFound("shop_resource", shopResourceID)
	}
	if res.ShopID != shopID {
		return nil, apperr.Forbidden("shop_resource", shopResourceID)
	}
	return res, nil
}

func (uc *shopUseCase) ResolveProducts(ctx context.Context, shopID string, productIDs []string, autoTrack bool) (map[string]model.ShopResource, error) {
	resolved := make(map[string]model.ShopResource, len(productIDs))
	if len(productIDs) == 0 {
		return resolved, nil
	}

	existing, err := uc.repo.FindResourcesByResourceIDs(ctx, shopID, productIDs)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		resolved[r.ResourceID] = r
	}

	if !autoTrack {
		return resolved, nil
	}

	for _, productID := range productIDs {
		if _, ok := resolved[productID]; ok {
			continue
		}
		res, created, err := uc.createResource(ctx, shopID, productID, "")
		if err != nil {
			return nil, err
		}
		if created {
			uc.logger.Info("Tracking ordered product",
				zap.String("shop_id", shopID),
				zap.String("product_id", productID),
				zap.String("shop_resource_id", res.ID),
			)
		}
		resolved[productID] = *res
	}
	return resolved, nil
}

func (uc *shopUseCase) ListResources(ctx context.Context, filters *dto.ResourceFilters) ([]model.ResourceAvailability, int, error) {
	if filters.SearchQuery != "" && uc.es != nil {
		items, total, err := uc.searchResources(ctx, filters)
		if err == nil {
			return items, total, nil
		}
		// fall through to DB
		uc.logger.Error("ES resource search failed, falling back to DB", zap.Error(err))
	}
	return uc.repo.ListResources(ctx, filters)
}

func (uc *shopUseCase) searchResources(ctx context.Context, f *dto.ResourceFilters) ([]model.ResourceAvailability, int, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"query":  "*" + f.SearchQuery + "*",
							"fields": []string{"title^3", "resource_id"},
						},
					},
					{
						"term": map[string]interface{}{
							"shop_id": f.ShopID,
						},
					},
				},
			},
		},
	}
	if f.PageSize > 0 {
		q["from"] = (page - 1) * f.PageSize
		q["size"] = f.PageSize
	}

	res, err := uc.es.Search(ctx, model.ResourceIndex, q)
	if err != nil {
		return nil, 0, err
	}

	items := make([]model.ResourceAvailability, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var item model.ResourceAvailability
		if err := json.Unmarshal(hit.Source, &item); err == nil {
			items = append(items, item)
		}
	}
	return items, res.Hits.Total.Value, nil
}
