package dto

import (
	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
)

// MaxCalendarPageDays caps the from/to span of a calendar page request.
const MaxCalendarPageDays = 45

type CalendarPage struct {
	AvailabilityPeriods []model.AvailabilityPeriod `json:"availabilityPeriods"`
	OrdersPerDate       model.OrdersPerDate        `json:"ordersPerDate"`
}

type WidgetAvailability struct {
	AvailableDates []day.Date `json:"availableDates"`
}
