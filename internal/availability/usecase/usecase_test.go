package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/internal/availability"
	"github.com/fekuna/omnipos-availability-service/internal/availability/dto"
	caUsecase "github.com/fekuna/omnipos-availability-service/internal/currentavailability/usecase"
	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/memstore"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	shopUsecase "github.com/fekuna/omnipos-availability-service/internal/shop/usecase"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
)

var now = time.Date(2020, 11, 30, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return now }

type memCache struct {
	mu        sync.Mutex
	data      map[string][]byte
	gens      map[string]int64
	beforeSet func()
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, gens: map[string]int64{}}
}

func (c *memCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memCache) SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) GetInt64(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key], nil
}

func (c *memCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	return c.gens[key], nil
}

type fixture struct {
	store     *memstore.Store
	cache     *memCache
	refresher availability.Refresher
	uc        availability.UseCase
}

func newFixture() *fixture {
	store := memstore.New()
	store.AddShop(&model.Shop{BaseModel: model.BaseModel{ID: "shop-1"}, Domain: "one.myshopify.com"})
	store.AddShop(&model.Shop{BaseModel: model.BaseModel{ID: "shop-2"}, Domain: "two.myshopify.com"})
	store.AddResource(&model.ShopResource{BaseModel: model.BaseModel{ID: "res-1"}, ShopID: "shop-1", ResourceID: "4321", Title: "Cake"})
	store.AddResource(&model.ShopResource{BaseModel: model.BaseModel{ID: "res-2"}, ShopID: "shop-2", ResourceID: "9999", Title: "Bread"})

	cache := newMemCache()
	log := logger.NewNop()
	ca := caUsecase.NewCurrentAvailabilityUseCase(store, store, store, store, cache, nil, fixedNow, log)
	shops := shopUsecase.NewShopUseCase(store, ca, nil, log)
	uc := NewAvailabilityUseCase(store, store, shops, ca, cache, 5*time.Minute, fixedNow, log)

	return &fixture{store: store, cache: cache, refresher: ca, uc: uc}
}

func dates(ss ...string) []day.Date {
	out := make([]day.Date, 0, len(ss))
	for _, s := range ss {
		out = append(out, day.MustParse(s))
	}
	return out
}

func intPtr(i int) *int { return &i }

func (f *fixture) current(t *testing.T, resID string) *model.CurrentAvailability {
	t.Helper()
	ca, err := f.store.FindByShopResourceID(context.Background(), resID)
	require.NoError(t, err)
	require.NotNil(t, ca)
	return ca
}

func TestCalendarPage_RejectsWideRange(t *testing.T) {
	f := newFixture()
	from := day.MustParse("2020-12-01")

	_, err := f.uc.CalendarPage(context.Background(), "shop-1", "res-1", from, from.AddDays(46))
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "to")

	_, err = f.uc.CalendarPage(context.Background(), "shop-1", "res-1", from, from.AddDays(45))
	assert.NoError(t, err)
}

func TestCalendarPage_RejectsReversedRange(t *testing.T) {
	f := newFixture()
	_, err := f.uc.CalendarPage(context.Background(), "shop-1", "res-1", day.MustParse("2020-12-10"), day.MustParse("2020-12-01"))
	var v *apperr.ValidationError
	assert.ErrorAs(t, err, &v)
}

func TestCalendarPage_ChecksOwnership(t *testing.T) {
	f := newFixture()
	from, to := day.MustParse("2020-12-01"), day.MustParse("2020-12-31")

	_, err := f.uc.CalendarPage(context.Background(), "shop-1", "res-2", from, to)
	var forbidden *apperr.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	_, err = f.uc.CalendarPage(context.Background(), "shop-1", "missing", from, to)
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCalendarPage_ReturnsPeriodsAndOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01", "2020-12-02"), Quantity: intPtr(5),
	})
	require.NoError(t, err)
	_, err = f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2021-02-01"), Quantity: intPtr(5),
	})
	require.NoError(t, err)
	f.store.AddOrder(model.ProductOrder{ShopResourceID: "res-1", OrderID: "1", ChosenDate: day.MustParse("2020-12-02"), Quantity: 3})

	page, err := f.uc.CalendarPage(ctx, "shop-1", "res-1", day.MustParse("2020-11-25"), day.MustParse("2020-12-31"))
	require.NoError(t, err)

	require.Len(t, page.AvailabilityPeriods, 1)
	assert.Equal(t, day.MustParse("2020-12-01"), page.AvailabilityPeriods[0].StartDate)
	assert.Equal(t, model.OrdersPerDate{day.MustParse("2020-12-02"): 3}, page.OrdersPerDate)
}

func TestCreatePeriod_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.uc.CreatePeriod(context.Background(), &dto.CreatePeriodInput{ShopID: "shop-1", ShopResourceID: "res-1"})
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "dates")
	assert.Contains(t, v.Fields, "quantity")

	_, err = f.uc.CreatePeriod(context.Background(), &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01"), Quantity: intPtr(-1),
	})
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "quantity")
}

func TestPeriodLifecycle_KeepsCurrentAvailabilityInSync(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p, err := f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01"), Quantity: intPtr(2),
	})
	require.NoError(t, err)
	ca := f.current(t, "res-1")
	assert.Equal(t, 1, ca.AvailableDates)
	assert.Equal(t, 0, ca.SoldOutDates)

	p, err = f.uc.UpdatePeriod(ctx, &dto.UpdatePeriodInput{
		ShopID: "shop-1", PeriodID: p.ID, NewDates: dates("2020-12-02", "2020-12-03"), PausedDates: dates("2020-12-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, day.MustParse("2020-12-03"), p.EndDate)
	ca = f.current(t, "res-1")
	assert.Equal(t, 2, ca.AvailableDates)
	assert.Equal(t, 1, ca.SoldOutDates)

	_, err = f.uc.UpdatePeriod(ctx, &dto.UpdatePeriodInput{ShopID: "shop-1", PeriodID: p.ID, PausedDates: []day.Date{}})
	require.NoError(t, err)
	ca = f.current(t, "res-1")
	assert.Equal(t, 3, ca.AvailableDates)
	assert.Equal(t, 0, ca.SoldOutDates)

	require.NoError(t, f.uc.DeletePeriod(ctx, "shop-1", p.ID))
	ca = f.current(t, "res-1")
	assert.Equal(t, 0, ca.AvailableDates)
	assert.Equal(t, 0, ca.SoldOutDates)
	assert.Nil(t, ca.NextAvailabilityDate)
}

func TestUpdatePeriod_CannotEmptyDates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, err := f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01", "2020-12-02"), Quantity: intPtr(2),
	})
	require.NoError(t, err)

	_, err = f.uc.UpdatePeriod(ctx, &dto.UpdatePeriodInput{
		ShopID: "shop-1", PeriodID: p.ID, DeletedDates: dates("2020-12-01", "2020-12-02"),
	})
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)

	stored, err := f.store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.AvailableDates, 2)
}

func TestUpdatePeriod_QuantityAndSharing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, err := f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01", "2020-12-02"), Quantity: intPtr(2),
	})
	require.NoError(t, err)
	f.store.AddOrder(model.ProductOrder{ShopResourceID: "res-1", OrderID: "1", ChosenDate: day.MustParse("2020-12-01"), Quantity: 1})
	f.store.AddOrder(model.ProductOrder{ShopResourceID: "res-1", OrderID: "2", ChosenDate: day.MustParse("2020-12-02"), Quantity: 1})

	shared := true
	_, err = f.uc.UpdatePeriod(ctx, &dto.UpdatePeriodInput{
		ShopID: "shop-1", PeriodID: p.ID, QuantityIsShared: &shared,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.current(t, "res-1").SoldOutDates)

	_, err = f.uc.UpdatePeriod(ctx, &dto.UpdatePeriodInput{
		ShopID: "shop-1", PeriodID: p.ID, Quantity: intPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.current(t, "res-1").AvailableDates)
}

func TestPeriodMutations_RejectOtherShop(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, err := f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01"), Quantity: intPtr(1),
	})
	require.NoError(t, err)

	var forbidden *apperr.ForbiddenError
	_, err = f.uc.UpdatePeriod(ctx, &dto.UpdatePeriodInput{ShopID: "shop-2", PeriodID: p.ID, NewDates: dates("2020-12-05")})
	assert.ErrorAs(t, err, &forbidden)
	assert.ErrorAs(t, f.uc.DeletePeriod(ctx, "shop-2", p.ID), &forbidden)

	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, f.uc.DeletePeriod(ctx, "shop-1", "nope"), &notFound)
}

func TestFindFutureAvailableDates_OmitsSoldOutPastAndOutOfWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.store.SetSettings(model.ShopSettings{ShopID: "shop-1", FirstAvailableDateInDays: 1, LastAvailableDateInWeeks: 2})

	_, err := f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Quantity: intPtr(1),
		Dates: dates("2020-11-29", "2020-11-30", "2020-12-01", "2020-12-02", "2020-12-14", "2020-12-15"),
	})
	require.NoError(t, err)
	f.store.AddOrder(model.ProductOrder{ShopResourceID: "res-1", OrderID: "1", ChosenDate: day.MustParse("2020-12-02"), Quantity: 1})

	out, err := f.uc.FindFutureAvailableDates(ctx, "shop-1", "4321")
	require.NoError(t, err)
	assert.Equal(t, dates("2020-12-01", "2020-12-14"), out.AvailableDates)
}

func TestFindFutureAvailableDates_UnknownProduct(t *testing.T) {
	f := newFixture()
	_, err := f.uc.FindFutureAvailableDates(context.Background(), "shop-1", "9999")
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Len(t, f.store.Resources(), 2)
}

func TestFindFutureAvailableDates_CachedUntilRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, err := f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01", "2020-12-02"), Quantity: intPtr(1),
	})
	require.NoError(t, err)

	first, err := f.uc.FindFutureAvailableDates(ctx, "shop-1", "4321")
	require.NoError(t, err)
	require.Len(t, first.AvailableDates, 2)
	assert.Contains(t, f.cache.data, availability.WidgetCacheKey("res-1", 1))

	// An order row written behind the use case's back is not seen until a refresh.
	f.store.AddOrder(model.ProductOrder{ShopResourceID: "res-1", OrderID: "1", ChosenDate: day.MustParse("2020-12-01"), Quantity: 1})
	cached, err := f.uc.FindFutureAvailableDates(ctx, "shop-1", "4321")
	require.NoError(t, err)
	assert.Equal(t, first.AvailableDates, cached.AvailableDates)

	_, err = f.uc.UpdatePeriod(ctx, &dto.UpdatePeriodInput{ShopID: "shop-1", PeriodID: p.ID})
	require.NoError(t, err)
	fresh, err := f.uc.FindFutureAvailableDates(ctx, "shop-1", "4321")
	require.NoError(t, err)
	assert.Equal(t, dates("2020-12-02"), fresh.AvailableDates)
}

func TestFindFutureAvailableDates_RefreshDuringComputeIsNotMasked(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01", "2020-12-02"), Quantity: intPtr(1),
	})
	require.NoError(t, err)

	// An order lands and refreshes after the response was computed but before it is cached.
	f.cache.beforeSet = func() {
		f.cache.beforeSet = nil
		f.store.AddOrder(model.ProductOrder{ShopResourceID: "res-1", OrderID: "1", ChosenDate: day.MustParse("2020-12-01"), Quantity: 1})
		_, err := f.refresher.Refresh(ctx, "res-1")
		require.NoError(t, err)
	}
	stale, err := f.uc.FindFutureAvailableDates(ctx, "shop-1", "4321")
	require.NoError(t, err)
	assert.Len(t, stale.AvailableDates, 2)

	fresh, err := f.uc.FindFutureAvailableDates(ctx, "shop-1", "4321")
	require.NoError(t, err)
	assert.Equal(t, dates("2020-12-02"), fresh.AvailableDates)
}

func TestComputeAvailableDates_IncludesSoldOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.uc.CreatePeriod(ctx, &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01", "2020-12-02"), Quantity: intPtr(1),
	})
	require.NoError(t, err)
	f.store.AddOrder(model.ProductOrder{ShopResourceID: "res-1", OrderID: "1", ChosenDate: day.MustParse("2020-12-01"), Quantity: 1})

	got, err := f.uc.ComputeAvailableDates(ctx, "shop-1", "res-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsSoldOut)
	assert.False(t, got[1].IsSoldOut)

	_, err = f.uc.ComputeAvailableDates(ctx, "shop-2", "res-1")
	var forbidden *apperr.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

type brokenRefresher struct{}

func (brokenRefresher) Refresh(ctx context.Context, id string) (*model.CurrentAvailability, error) {
	return nil, errors.New("db down")
}

func TestCreatePeriod_RefreshFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture()
	shops := shopUsecase.NewShopUseCase(f.store, caUsecase.NewCurrentAvailabilityUseCase(f.store, f.store, f.store, f.store, nil, nil, fixedNow, logger.NewNop()), nil, logger.NewNop())
	uc := NewAvailabilityUseCase(f.store, f.store, shops, brokenRefresher{}, nil, time.Minute, fixedNow, logger.NewNop())

	p, err := uc.CreatePeriod(context.Background(), &dto.CreatePeriodInput{
		ShopID: "shop-1", ShopResourceID: "res-1", Dates: dates("2020-12-01"), Quantity: intPtr(1),
	})
	require.NoError(t, err)

	stored, err := f.store.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}
