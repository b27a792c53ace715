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

func TestPGRepository_FindByShopID(t *testing.T) {
	db := pgtest.Open(t, "plan_repository")
	ctx := context.Background()
	repo := NewPGRepository(db)
	shopID := pgtest.Shop(t, db, "one.myshopify.com")

	p, err := repo.FindByShopID(ctx, shopID)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = db.Exec(`INSERT INTO plans (id, shop_id, name, order_limit) VALUES ($1, $2, 'Basic', 100)`, uuid.New().String(), shopID)
	require.NoError(t, err)

	p, err = repo.FindByShopID(ctx, shopID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Basic", p.Name)
	assert.Equal(t, 100, p.OrderLimit)
}

func TestPGRepository_SumOrderQuantitiesSince(t *testing.T) {
	db := pgtest.Open(t, "plan_repository")
	ctx := context.Background()
	repo := NewPGRepository(db)

	shopID := pgtest.Shop(t, db, "one.myshopify.com")
	other := pgtest.Shop(t, db, "two.myshopify.com")
	cake := pgtest.Resource(t, db, shopID, "4321", "Cake")
	bread := pgtest.Resource(t, db, other, "4321", "Bread")

	march := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	insert := func(resourceID, orderID string, qty int, at time.Time) {
		_, err := db.Exec(
			`INSERT INTO product_orders (id, shop_resource_id, order_id, chosen_date, quantity, created_at) VALUES ($1, $2, $3, '2024-04-01', $4, $5)`,
			uuid.New().String(), resourceID, orderID, qty, at,
		)
		require.NoError(t, err)
	}
	insert(cake, "1", 3, march.Add(time.Hour))
	insert(cake, "2", 2, march)
	insert(cake, "3", 7, march.Add(-time.Minute))
	insert(bread, "4", 9, march.Add(time.Hour))

	total, err := repo.SumOrderQuantitiesSince(ctx, shopID, march)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestPGRepository_ClaimNotification(t *testing.T) {
	db := pgtest.Open(t, "plan_repository")
	ctx := context.Background()
	repo := NewPGRepository(db)
	shopID := pgtest.Shop(t, db, "one.myshopify.com")

	notice := func() *model.Notification {
		return &model.Notification{
			ID:          uuid.New().String(),
			ShopID:      shopID,
			Type:        model.NotificationPlanLimitReached,
			PeriodStart: day.New(2024, time.March, 1),
			SentAt:      time.Now().UTC(),
		}
	}

	first := notice()
	claimed, err := repo.ClaimNotification(ctx, first)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimNotification(ctx, notice())
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, repo.ReleaseNotification(ctx, first))
	claimed, err = repo.ClaimNotification(ctx, notice())
	require.NoError(t, err)
	assert.True(t, claimed)
}
