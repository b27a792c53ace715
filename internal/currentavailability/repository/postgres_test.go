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

func TestPGRepository_CreateInitialThenUpsert(t *testing.T) {
	db := pgtest.Open(t, "currentavailability_repository")
	ctx := context.Background()
	repo := NewPGRepository(db)

	shopID := pgtest.Shop(t, db, "one.myshopify.com")
	cake := pgtest.Resource(t, db, shopID, "4321", "Cake")
	now := time.Now().UTC()

	initial := &model.CurrentAvailability{ID: uuid.New().String(), ShopResourceID: cake, UpdatedAt: now}
	require.NoError(t, repo.CreateInitial(ctx, initial))
	require.NoError(t, repo.CreateInitial(ctx, &model.CurrentAvailability{ID: uuid.New().String(), ShopResourceID: cake, UpdatedAt: now}))

	next, last := day.MustParse("2020-12-01"), day.MustParse("2020-12-09")
	ca := &model.CurrentAvailability{
		ID:                   uuid.New().String(),
		ShopResourceID:       cake,
		NextAvailabilityDate: &next,
		LastAvailabilityDate: &last,
		AvailableDates:       4,
		SoldOutDates:         1,
		UpdatedAt:            now,
	}
	require.NoError(t, repo.Upsert(ctx, ca))
	assert.Equal(t, initial.ID, ca.ID)

	var stored model.CurrentAvailability
	require.NoError(t, db.Get(&stored, `SELECT * FROM current_availabilities WHERE shop_resource_id = $1`, cake))
	require.NotNil(t, stored.NextAvailabilityDate)
	assert.Equal(t, next, *stored.NextAvailabilityDate)
	assert.Equal(t, last, *stored.LastAvailabilityDate)
	assert.Equal(t, 4, stored.AvailableDates)
	assert.Equal(t, 1, stored.SoldOutDates)

	var rows int
	require.NoError(t, db.Get(&rows, `SELECT count(*) FROM current_availabilities`))
	assert.Equal(t, 1, rows)
}
