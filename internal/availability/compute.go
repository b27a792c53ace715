package availability

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
)

// HorizonMonths bounds how far ahead periods are looked up.
const HorizonMonths = 3

type flatDate struct {
	date   day.Date
	period *model.AvailabilityPeriod
}

// Compute turns periods and per-day order sums into the sorted list of
// future dates, each flagged sold out or not. Dates before today are dropped.
//
// A shared period is one pool across all of its dates: once the orders on
// every date of the period reach its quantity, every date is sold out.
// A paused date is always sold out.
func Compute(periods []model.AvailabilityPeriod, orders model.OrdersPerDate, today day.Date) []model.AvailableDate {
	flat := flatten(periods, today)
	if len(flat) == 0 {
		return []model.AvailableDate{}
	}

	sharedSums := make(map[string]int)
	for i := range periods {
		p := &periods[i]
		if !p.QuantityIsShared {
			continue
		}
		if _, done := sharedSums[p.ID]; done {
			continue
		}
		sum := 0
		for _, d := range p.AvailableDates {
			sum += orders[d]
		}
		sharedSums[p.ID] = sum
	}

	out := make([]model.AvailableDate, 0, len(flat))
	for _, f := range flat {
		var soldOut bool
		if f.period.QuantityIsShared {
			soldOut = sharedSums[f.period.ID] >= f.period.Quantity
		} else {
			soldOut = orders[f.date] >= f.period.Quantity
		}
		out = append(out, model.AvailableDate{
			Date:             f.date,
			IsSoldOut:        soldOut || f.period.IsPaused(f.date),
			PeriodID:         f.period.ID,
			QuantityIsShared: f.period.QuantityIsShared,
		})
	}
	return out
}

func flatten(periods []model.AvailabilityPeriod, today day.Date) []flatDate {
	var flat []flatDate
	for i := range periods {
		p := &periods[i]
		for _, d := range p.AvailableDates {
			if d.Before(today) {
				continue
			}
			flat = append(flat, flatDate{date: d, period: p})
		}
	}
	sort.SliceStable(flat, func(i, j int) bool { return flat[i].date.Before(flat[j].date) })
	return flat
}

// OrderRange returns the date span a single OrdersPerDate query must cover:
// every future date, plus the full span of shared periods. ok is false when
// no period has a date on or after today.
func OrderRange(periods []model.AvailabilityPeriod, today day.Date) (from, to day.Date, ok bool) {
	flat := flatten(periods, today)
	if len(flat) == 0 {
		return day.Date{}, day.Date{}, false
	}
	from, to = flat[0].date, flat[len(flat)-1].date

	for _, p := range periods {
		if !p.QuantityIsShared || len(p.AvailableDates) == 0 {
			continue
		}
		if p.AvailableDates.Min().Before(from) {
			from = p.AvailableDates.Min()
		}
		if p.AvailableDates.Max().After(to) {
			to = p.AvailableDates.Max()
		}
	}
	return from, to, true
}

type Summary struct {
	NextAvailabilityDate *day.Date
	LastAvailabilityDate *day.Date
	AvailableDates       int
	SoldOutDates         int
}

func Summarize(dates []model.AvailableDate) Summary {
	var s Summary
	for i := range dates {
		if dates[i].IsSoldOut {
			continue
		}
		d := dates[i].Date
		if s.NextAvailabilityDate == nil {
			s.NextAvailabilityDate = &d
		}
		s.LastAvailabilityDate = &d
		s.AvailableDates++
	}
	s.SoldOutDates = len(dates) - s.AvailableDates
	return s
}

// WithinWindow applies the shop's booking window: dates earlier than
// today+firstAvailableDateInDays or later than today+lastAvailableDateInWeeks
// weeks are dropped. A zero week count leaves the upper side open.
func WithinWindow(dates []model.AvailableDate, settings model.ShopSettings, today day.Date) []model.AvailableDate {
	earliest := today.AddDays(settings.FirstAvailableDateInDays)
	var latest *day.Date
	if settings.LastAvailableDateInWeeks > 0 {
		l := today.AddDays(7 * settings.LastAvailableDateInWeeks)
		latest = &l
	}

	out := make([]model.AvailableDate, 0, len(dates))
	for _, d := range dates {
		if d.Date.Before(earliest) {
			continue
		}
		if latest != nil && d.Date.After(*latest) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Calculator loads periods and order counts and runs Compute.
type Calculator struct {
	periods Repository
	orders  OrderCounter
}

func NewCalculator(periods Repository, orders OrderCounter) *Calculator {
	return &Calculator{periods: periods, orders: orders}
}

func (c *Calculator) AvailableDates(ctx context.Context, shopResourceID string, today day.Date) ([]model.AvailableDate, error) {
	periods, err := c.periods.FindPeriods(ctx, shopResourceID, today, today.AddMonths(HorizonMonths))
	if err != nil {
		return nil, err
	}

	from, to, ok := OrderRange(periods, today)
	if !ok {
		return []model.AvailableDate{}, nil
	}

	orders, err := c.orders.OrdersPerDate(ctx, shopResourceID, from, to)
	if err != nil {
		return nil, err
	}
	return Compute(periods, orders, today), nil
}
