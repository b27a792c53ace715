package currentavailability

import (
	"context"

	"github.com/fekuna/omnipos-availability-service/internal/currentavailability/dto"
	"github.com/fekuna/omnipos-availability-service/internal/model"
)

type UseCase interface {
	Refresh(ctx context.Context, shopResourceID string) (*model.CurrentAvailability, error)
	RefreshAllForShop(ctx context.Context, shopID string) (*dto.SweepResult, error)
	RefreshAll(ctx context.Context) (*dto.SweepResult, error)
	CreateInitial(ctx context.Context, shopResourceID string) error
}
