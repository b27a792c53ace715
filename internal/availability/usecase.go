package availability

import (
	"context"

	"github.com/fekuna/omnipos-availability-service/internal/availability/dto"
	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
)

type UseCase interface {
	CalendarPage(ctx context.Context, shopID, shopResourceID string, from, to day.Date) (*dto.CalendarPage, error)
	CreatePeriod(ctx context.Context, input *dto.CreatePeriodInput) (*model.AvailabilityPeriod, error)
	UpdatePeriod(ctx context.Context, input *dto.UpdatePeriodInput) (*model.AvailabilityPeriod, error)
	DeletePeriod(ctx context.Context, shopID, periodID string) error

	// ComputeAvailableDates returns every future date of the shop's resource, sold out or not.
	ComputeAvailableDates(ctx context.Context, shopID, shopResourceID string) ([]model.AvailableDate, error)
	// FindFutureAvailableDates returns the bookable dates shown by the storefront widget.
	FindFutureAvailableDates(ctx context.Context, shopID, productID string) (*dto.WidgetAvailability, error)
}
