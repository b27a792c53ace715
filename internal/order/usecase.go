package order

import (
	"context"

	"github.com/fekuna/omnipos-availability-service/internal/order/dto"
)

type UseCase interface {
	// Ingest applies one order webhook delivery. It is safe to call again with
	// the same delivery.
	Ingest(ctx context.Context, input *dto.IngestInput) (*dto.IngestResult, error)
}
