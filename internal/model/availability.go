package model

import (
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/day"
)

type AvailabilityPeriod struct {
	ID               string    `db:"id" json:"id"`
	ShopResourceID   string    `db:"shop_resource_id" json:"shopResourceId"`
	Quantity         int       `db:"quantity" json:"quantity"`
	QuantityIsShared bool      `db:"quantity_is_shared" json:"quantityIsShared"`
	AvailableDates   day.Set   `db:"available_dates" json:"availableDates"`
	PausedDates      day.Set   `db:"paused_dates" json:"pausedDates"`
	StartDate        day.Date  `db:"start_date" json:"startDate"`
	EndDate          day.Date  `db:"end_date" json:"endDate"`
	CreatedAt        time.Time `db:"created_at" json:"createdDate"`
}

func (p *AvailabilityPeriod) IsPaused(d day.Date) bool {
	return p.PausedDates.Contains(d)
}

// Normalize restores the derived fields: sorted unique dates, paused dates
// limited to available ones, start/end from the available set.
func (p *AvailabilityPeriod) Normalize() {
	p.AvailableDates = day.NewSet(p.AvailableDates...)
	p.PausedDates = day.NewSet(p.PausedDates...).Intersect(p.AvailableDates)
	if len(p.AvailableDates) > 0 {
		p.StartDate = p.AvailableDates.Min()
		p.EndDate = p.AvailableDates.Max()
	}
}

// AvailableDate is one computed day of a period.
type AvailableDate struct {
	Date             day.Date `json:"date"`
	IsSoldOut        bool     `json:"isSoldOut"`
	PeriodID         string   `json:"periodId"`
	QuantityIsShared bool     `json:"quantityIsShared"`
}

type CurrentAvailability struct {
	ID                   string    `db:"id" json:"id"`
	ShopResourceID       string    `db:"shop_resource_id" json:"shopResourceId"`
	NextAvailabilityDate *day.Date `db:"next_availability_date" json:"nextAvailabilityDate"`
	LastAvailabilityDate *day.Date `db:"last_availability_date" json:"lastAvailabilityDate"`
	AvailableDates       int       `db:"available_dates" json:"availableDates"`
	SoldOutDates         int       `db:"sold_out_dates" json:"soldOutDates"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedDate"`
}

// ResourceIndex is the elasticsearch index holding ResourceAvailability documents.
const ResourceIndex = "shop_resources"

// ResourceAvailability is a shop resource joined with its cache row, used for listings.
type ResourceAvailability struct {
	ShopResource
	NextAvailabilityDate *day.Date `db:"next_availability_date" json:"next_availability_date"`
	LastAvailabilityDate *day.Date `db:"last_availability_date" json:"last_availability_date"`
	AvailableDates       int       `db:"available_dates" json:"available_dates"`
	SoldOutDates         int       `db:"sold_out_dates" json:"sold_out_dates"`
}
