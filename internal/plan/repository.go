package plan

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/model"
)

type Repository interface {
	FindByShopID(ctx context.Context, shopID string) (*model.Plan, error)
	// SumOrderQuantitiesSince sums product order quantities of the shop created at or after since.
	SumOrderQuantitiesSince(ctx context.Context, shopID string, since time.Time) (int, error)

	// ClaimNotification records n and reports false when the same
	// (shop, type, period) was already recorded.
	ClaimNotification(ctx context.Context, n *model.Notification) (bool, error)
	ReleaseNotification(ctx context.Context, n *model.Notification) error
}

// Notifier delivers plan limit notices to the merchant.
type Notifier interface {
	NotifyPlanLimit(ctx context.Context, notice *Notice) error
}

type Notice struct {
	Shop   *model.Shop
	Plan   *model.Plan
	Type   model.NotificationType
	Count  int
	Locale string
}

// SettingsSource supplies the shop locale used for notices.
type SettingsSource interface {
	Settings(ctx context.Context, shopID string) (model.ShopSettings, error)
}
