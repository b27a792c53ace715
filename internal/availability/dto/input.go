package dto

import "github.com/fekuna/omnipos-availability-service/internal/day"

type CreatePeriodInput struct {
	ShopID           string
	ShopResourceID   string
	Dates            []day.Date
	Quantity         *int
	QuantityIsShared bool
}

// UpdatePeriodInput changes a period in place. Nil fields are left untouched;
// PausedDates, when set, replaces the paused set.
type UpdatePeriodInput struct {
	ShopID           string
	PeriodID         string
	NewDates         []day.Date
	DeletedDates     []day.Date
	PausedDates      []day.Date
	Quantity         *int
	QuantityIsShared *bool
}
