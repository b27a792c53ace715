package model

import (
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/day"
)

// ProductOrder is one (resource, order, chosen date) row derived from a Shopify order.
type ProductOrder struct {
	ID             string    `db:"id" json:"id"`
	ShopResourceID string    `db:"shop_resource_id" json:"shopResourceId"`
	OrderID        string    `db:"order_id" json:"orderId"`
	ChosenDate     day.Date  `db:"chosen_date" json:"chosenDate"`
	TimeSlot       *string   `db:"time_slot" json:"timeSlot"`
	Quantity       int       `db:"quantity" json:"quantity"`
	CreatedAt      time.Time `db:"created_at" json:"createdDate"`
}

// OrdersPerDate maps a day to the summed ordered quantity on it.
type OrdersPerDate map[day.Date]int

// MarshalJSON keys the map by YYYY-MM-DD.
func (o OrdersPerDate) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(o))
	for d, q := range o {
		out[d.String()] = q
	}
	return json.Marshal(out)
}
