package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/internal/availability"
	"github.com/fekuna/omnipos-availability-service/internal/availability/dto"
	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/shop"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type availabilityUseCase struct {
	repo      availability.Repository
	orders    availability.OrderCounter
	shops     shop.UseCase
	refresher availability.Refresher
	cache     availability.WidgetCache
	calc      *availability.Calculator
	cacheTTL  time.Duration
	now       func() time.Time
	logger    logger.ZapLogger
}

func NewAvailabilityUseCase(
	repo availability.Repository,
	orders availability.OrderCounter,
	shops shop.UseCase,
	refresher availability.Refresher,
	cache availability.WidgetCache,
	cacheTTL time.Duration,
	now func() time.Time,
	log logger.ZapLogger,
) availability.UseCase {
	return &availabilityUseCase{
		repo:      repo,
		orders:    orders,
		shops:     shops,
		refresher: refresher,
		cache:     cache,
		calc:      availability.NewCalculator(repo, orders),
		cacheTTL:  cacheTTL,
		now:       now,
		logger:    log,
	}
}

func (uc *availabilityUseCase) today() day.Date {
	return day.Of(uc.now().UTC())
}

func (uc *availabilityUseCase) CalendarPage(ctx context.Context, shopID, shopResourceID string, from, to day.Date) (*dto.CalendarPage, error) {
	if to.Before(from) {
		return nil, apperr.NewValidation("to", "must not be before from")
	}
	if from.DaysUntil(to) > dto.MaxCalendarPageDays {
		return nil, apperr.NewValidation("to", "range must not exceed 45 days")
	}
	if _, err := uc.shops.OwnedResource(ctx, shopID, shopResourceID); err != nil {
		return nil, err
	}

	periods, err := uc.repo.FindPeriods(ctx, shopResourceID, from, to)
	if err != nil {
		return nil, err
	}
	orders, err := uc.orders.OrdersPerDate(ctx, shopResourceID, from, to)
	if err != nil {
		return nil, err
	}

	return &dto.CalendarPage{
		AvailabilityPeriods: periods,
		OrdersPerDate:       orders,
	}, nil
}

func (uc *availabilityUseCase) CreatePeriod(ctx context.Context, input *dto.CreatePeriodInput) (*model.AvailabilityPeriod, error) {
	v := &apperr.ValidationError{}
	if len(input.Dates) == 0 {
		v.Add("dates", "at least one date is required")
	}
	if input.Quantity == nil {
		v.Add("quantity", "is required")
	} else if *input.Quantity < 0 {
		v.Add("quantity", "must be zero or more")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if _, err := uc.shops.OwnedResource(ctx, input.ShopID, input.ShopResourceID); err != nil {
		return nil, err
	}

	p := &model.AvailabilityPeriod{
		ID:               uuid.New().String(),
		ShopResourceID:   input.ShopResourceID,
		Quantity:         *input.Quantity,
		QuantityIsShared: input.QuantityIsShared,
		AvailableDates:   day.NewSet(input.Dates...),
		PausedDates:      day.Set{},
		CreatedAt:        time.Now(),
	}
	p.Normalize()

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.refresh(ctx, p.ShopResourceID)
	return p, nil
}

func (uc *availabilityUseCase) UpdatePeriod(ctx context.Context, input *dto.UpdatePeriodInput) (*model.AvailabilityPeriod, error) {
	p, err := uc.ownedPeriod(ctx, input.ShopID, input.PeriodID)
	if err != nil {
		return nil, err
	}

	dates := p.AvailableDates.
		Union(day.NewSet(input.NewDates...)).
		Without(day.NewSet(input.DeletedDates...))
	if len(dates) == 0 {
		return nil, apperr.NewValidation("dates", "a period must keep at least one date")
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, apperr.NewValidation("quantity", "must be zero or more")
		}
		p.Quantity = *input.Quantity
	}
	if input.QuantityIsShared != nil {
		p.QuantityIsShared = *input.QuantityIsShared
	}
	if input.PausedDates != nil {
		p.PausedDates = day.NewSet(input.PausedDates...)
	}
	p.AvailableDates = dates
	p.Normalize()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.refresh(ctx, p.ShopResourceID)
	return p, nil
}

func (uc *availabilityUseCase) DeletePeriod(ctx context.Context, shopID, periodID string) error {
	p, err := uc.ownedPeriod(ctx, shopID, periodID)
	if err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, p.ID); err != nil {
		return err
	}

	uc.refresh(ctx, p.ShopResourceID)
	return nil
}

func (uc *availabilityUseCase) ownedPeriod(ctx context.Context, shopID, periodID string) (*model.AvailabilityPeriod, error) {
	p, err := uc.repo.FindByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("availability_period", periodID)
	}
	if _, err := uc.shops.OwnedResource(ctx, shopID, p.ShopResourceID); err != nil {
		return nil, err
	}
	return p, nil
}

// refresh is best effort: the period write is already committed and the
// hourly sweep corrects a missed refresh.
func (uc *availabilityUseCase) refresh(ctx context.Context, shopResourceID string) {
	if _, err := uc.refresher.Refresh(ctx, shopResourceID); err != nil {
		uc.logger.Error("failed to refresh current availability",
			zap.String("shop_resource_id", shopResourceID),
			zap.Error(err),
		)
	}
}

func (uc *availabilityUseCase) ComputeAvailableDates(ctx context.Context, shopID, shopResourceID string) ([]model.AvailableDate, error) {
	if _, err := uc.shops.OwnedResource(ctx, shopID, shopResourceID); err != nil {
		return nil, err
	}
	return uc.calc.AvailableDates(ctx, shopResourceID, uc.today())
}

func (uc *availabilityUseCase) FindFutureAvailableDates(ctx context.Context, shopID, productID string) (*dto.WidgetAvailability, error) {
	settings, err := uc.shops.Settings(ctx, shopID)
	if err != nil {
		return nil, err
	}

	resources, err := uc.shops.ResolveProducts(ctx, shopID, []string{productID}, false)
	if err != nil {
		return nil, err
	}
	res, ok := resources[productID]
	if !ok {
		return nil, apperr.NotFound("product", productID)
	}

	// The generation is read before computing so a refresh that lands
	// mid-computation leaves this response under an outdated key.
	key := ""
	if uc.cache != nil {
		if gen, err := uc.cache.GetInt64(ctx, availability.WidgetGenerationKey(res.ID)); err == nil {
			key = availability.WidgetCacheKey(res.ID, gen)
		}
	}
	if key != "" {
		if data, err := uc.cache.GetBytes(ctx, key); err == nil && data != nil {
			var cached dto.WidgetAvailability
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	today := uc.today()
	dates, err := uc.calc.AvailableDates(ctx, res.ID, today)
	if err != nil {
		return nil, err
	}

	out := &dto.WidgetAvailability{AvailableDates: []day.Date{}}
	for _, d := range availability.WithinWindow(dates, settings, today) {
		if !d.IsSoldOut {
			out.AvailableDates = append(out.AvailableDates, d.Date)
		}
	}

	if key != "" {
		if data, err := json.Marshal(out); err == nil {
			if err := uc.cache.SetBytes(ctx, key, data, uc.cacheTTL); err != nil {
				uc.logger.Warn("failed to cache widget availability", zap.Error(err))
			}
		}
	}
	return out, nil
}
