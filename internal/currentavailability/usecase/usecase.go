package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/availability"
	"github.com/fekuna/omnipos-availability-service/internal/currentavailability"
	"github.com/fekuna/omnipos-availability-service/internal/currentavailability/dto"
	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type currentAvailabilityUseCase struct {
	repo      currentavailability.Repository
	resources currentavailability.ResourceSource
	calc      *availability.Calculator
	cache     availability.WidgetCache
	indexer   currentavailability.SearchIndexer
	now       func() time.Time
	logger    logger.ZapLogger
}

// NewCurrentAvailabilityUseCase builds the cache maintainer. cache and
// indexer are optional.
func NewCurrentAvailabilityUseCase(
	repo currentavailability.Repository,
	resources currentavailability.ResourceSource,
	periods availability.Repository,
	orders availability.OrderCounter,
	cache availability.WidgetCache,
	indexer currentavailability.SearchIndexer,
	now func() time.Time,
	log logger.ZapLogger,
) currentavailability.UseCase {
	return &currentAvailabilityUseCase{
		repo:      repo,
		resources: resources,
		calc:      availability.NewCalculator(periods, orders),
		cache:     cache,
		indexer:   indexer,
		now:       now,
		logger:    log,
	}
}

func (uc *currentAvailabilityUseCase) Refresh(ctx context.Context, shopResourceID string) (*model.CurrentAvailability, error) {
	now := uc.now()
	dates, err := uc.calc.AvailableDates(ctx, shopResourceID, day.Of(now.UTC()))
	if err != nil {
		return nil, err
	}

	sum := availability.Summarize(dates)
	ca := &model.CurrentAvailability{
		ID:                   uuid.New().String(),
		ShopResourceID:       shopResourceID,
		NextAvailabilityDate: sum.NextAvailabilityDate,
		LastAvailabilityDate: sum.LastAvailabilityDate,
		AvailableDates:       sum.AvailableDates,
		SoldOutDates:         sum.SoldOutDates,
		UpdatedAt:            now,
	}
	if err := uc.repo.Upsert(ctx, ca); err != nil {
		return nil, err
	}

	uc.invalidateWidget(ctx, shopResourceID)
	uc.syncToElastic(ctx, ca)
	return ca, nil
}

func (uc *currentAvailabilityUseCase) invalidateWidget(ctx context.Context, shopResourceID string) {
	if uc.cache == nil {
		return
	}
	if _, err := uc.cache.Incr(ctx, availability.WidgetGenerationKey(shopResourceID)); err != nil {
		uc.logger.Warn("failed to invalidate widget cache",
			zap.String("shop_resource_id", shopResourceID),
			zap.Error(err),
		)
	}
}

func (uc *currentAvailabilityUseCase) syncToElastic(ctx context.Context, ca *model.CurrentAvailability) {
	if uc.indexer == nil {
		return
	}
	res, err := uc.resources.FindResourceByID(ctx, ca.ShopResourceID)
	if err != nil || res == nil {
		return
	}

	doc := model.ResourceAvailability{
		ShopResource:         *res,
		NextAvailabilityDate: ca.NextAvailabilityDate,
		LastAvailabilityDate: ca.LastAvailabilityDate,
		AvailableDates:       ca.AvailableDates,
		SoldOutDates:         ca.SoldOutDates,
	}
	if err := uc.indexer.Index(ctx, model.ResourceIndex, res.ID, doc); err != nil {
		uc.logger.Error("failed to index resource availability", zap.String("shop_resource_id", res.ID), zap.Error(err))
	}
}

func (uc *currentAvailabilityUseCase) RefreshAllForShop(ctx context.Context, shopID string) (*dto.SweepResult, error) {
	ids, err := uc.resources.ListActiveResourceIDs(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return uc.refreshEach(ctx, ids), nil
}

func (uc *currentAvailabilityUseCase) RefreshAll(ctx context.Context) (*dto.SweepResult, error) {
	return uc.RefreshAllForShop(ctx, "")
}

// refreshEach never stops on a failed resource; the next sweep retries it.
func (uc *currentAvailabilityUseCase) refreshEach(ctx context.Context, ids []string) *dto.SweepResult {
	result := &dto.SweepResult{}
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if _, err := uc.Refresh(ctx, id); err != nil {
			uc.logger.Error("failed to refresh current availability",
				zap.String("shop_resource_id", id),
				zap.Error(err),
			)
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		result.Refreshed++
	}
	return result
}

func (uc *currentAvailabilityUseCase) CreateInitial(ctx context.Context, shopResourceID string) error {
	return uc.repo.CreateInitial(ctx, &model.CurrentAvailability{
		ID:             uuid.New().String(),
		ShopResourceID: shopResourceID,
		UpdatedAt:      uc.now(),
	})
}
