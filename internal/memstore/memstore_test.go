package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-availability-service/internal/availability"
	"github.com/fekuna/omnipos-availability-service/internal/currentavailability"
	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/memstore"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/order"
	"github.com/fekuna/omnipos-availability-service/internal/plan"
	"github.com/fekuna/omnipos-availability-service/internal/shop"
)

var (
	_ availability.Repository        = (*memstore.Store)(nil)
	_ availability.OrderCounter      = (*memstore.Store)(nil)
	_ order.Repository               = (*memstore.Store)(nil)
	_ shop.Repository                = (*memstore.Store)(nil)
	_ currentavailability.Repository = (*memstore.Store)(nil)
	_ plan.Repository                = (*memstore.Store)(nil)
)

func TestReplaceOrderLines_ReturnsDeletedAndInsertedResources(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	d := day.MustParse("2020-12-01")

	s.AddOrder(model.ProductOrder{ShopResourceID: "res-a", OrderID: "1234", ChosenDate: d, Quantity: 1})
	s.AddOrder(model.ProductOrder{ShopResourceID: "res-c", OrderID: "999", ChosenDate: d, Quantity: 4})

	touched, err := s.ReplaceOrderLines(ctx, "1234", []model.ProductOrder{
		{ShopResourceID: "res-b", ChosenDate: d, Quantity: 2},
		{ShopResourceID: "res-b", ChosenDate: d, Quantity: 7},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"res-a", "res-b"}, touched)

	rows, err := s.FindByOrderID(ctx, "1234")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Quantity)
	assert.Len(t, s.Orders(), 2)
}
