package model

import (
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/day"
)

// UnlimitedOrders is the order limit of plans without a cap.
const UnlimitedOrders = -1

type Plan struct {
	ID         string    `db:"id" json:"id"`
	ShopID     string    `db:"shop_id" json:"shop_id"`
	Name       string    `db:"name" json:"name"`
	OrderLimit int       `db:"order_limit" json:"order_limit"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (p *Plan) IsUnlimited() bool { return p.OrderLimit == UnlimitedOrders }

type NotificationType string

const (
	NotificationPlanLimitApproaching NotificationType = "plan_limit_approaching"
	NotificationPlanLimitReached     NotificationType = "plan_limit_reached"
)

// Notification records that a one-time notice was sent for a shop and period.
type Notification struct {
	ID          string           `db:"id"`
	ShopID      string           `db:"shop_id"`
	Type        NotificationType `db:"type"`
	PeriodStart day.Date         `db:"period_start"`
	SentAt      time.Time        `db:"sent_at"`
}
