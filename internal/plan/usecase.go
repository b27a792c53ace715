package plan

import (
	"context"

	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/plan/dto"
)

type UseCase interface {
	CountCurrentMonthOrders(ctx context.Context, shopID string) (int, error)
	HasActivePlan(ctx context.Context, shopID string) (bool, error)
	CheckAndNotify(ctx context.Context, shop *model.Shop) error
	Usage(ctx context.Context, shopID string) (*dto.Usage, error)
}
