package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/pgtest"
)

func period(resourceID string, dates ...string) *model.AvailabilityPeriod {
	set := make([]day.Date, 0, len(dates))
	for _, d := range dates {
		set = append(set, day.MustParse(d))
	}
	p := &model.AvailabilityPeriod{
		ID:             uuid.New().String(),
		ShopResourceID: resourceID,
		Quantity:       3,
		AvailableDates: day.NewSet(set...),
		CreatedAt:      time.Now().UTC(),
	}
	p.Normalize()
	return p
}

func TestPGRepository_PeriodLifecycle(t *testing.T) {
	db := pgtest.Open(t, "availability_repository")
	ctx := context.Background()
	repo := NewPGRepository(db)

	shopID := pgtest.Shop(t, db, "one.myshopify.com")
	cake := pgtest.Resource(t, db, shopID, "4321", "Cake")

	p := period(cake, "2020-12-03", "2020-12-01")
	require.NoError(t, repo.Create(ctx, p))

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, day.MustParse("2020-12-01"), stored.StartDate)
	assert.Equal(t, day.MustParse("2020-12-03"), stored.EndDate)
	assert.Equal(t, p.AvailableDates, stored.AvailableDates)
	assert.Empty(t, stored.PausedDates)

	stored.PausedDates = day.NewSet(day.MustParse("2020-12-03"))
	stored.QuantityIsShared = true
	require.NoError(t, repo.Update(ctx, stored))

	updated, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, updated.QuantityIsShared)
	assert.True(t, updated.IsPaused(day.MustParse("2020-12-03")))

	require.NoError(t, repo.Delete(ctx, p.ID))
	gone, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPGRepository_FindPeriodsOverlapping(t *testing.T) {
	db := pgtest.Open(t, "availability_repository")
	ctx := context.Background()
	repo := NewPGRepository(db)

	shopID := pgtest.Shop(t, db, "one.myshopify.com")
	cake := pgtest.Resource(t, db, shopID, "4321", "Cake")
	bread := pgtest.Resource(t, db, shopID, "9999", "Bread")

	november := period(cake, "2020-11-20", "2020-11-28")
	straddles := period(cake, "2020-11-29", "2020-12-02")
	december := period(cake, "2020-12-10")
	other := period(bread, "2020-12-10")
	for _, p := range []*model.AvailabilityPeriod{november, straddles, december, other} {
		require.NoError(t, repo.Create(ctx, p))
	}

	got, err := repo.FindPeriods(ctx, cake, day.MustParse("2020-12-01"), day.MustParse("2020-12-31"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, straddles.ID, got[0].ID)
	assert.Equal(t, december.ID, got[1].ID)
}
