// Package day provides a calendar date without time of day or time zone.
package day

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const Layout = "2006-01-02"

// Date is comparable and safe to use as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Of returns the calendar date of t in t's own location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func New(year int, month time.Month, d int) Date {
	return Of(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
}

func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Of(t), nil
}

func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date { return Of(d.Time().AddDate(0, 0, n)) }

func (d Date) AddMonths(n int) Date { return Of(d.Time().AddDate(0, n, 0)) }

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// DaysUntil returns the number of days from d to o, negative when o is earlier.
func (d Date) DaysUntil(o Date) int {
	return int(o.Time().Sub(d.Time()).Hours() / 24)
}

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date { return Date{Year: d.Year, Month: d.Month, Day: 1} }

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := parseLoose(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// parseLoose accepts both YYYY-MM-DD and RFC 3339 timestamps, keeping only the day.
func parseLoose(s string) (Date, error) {
	if len(s) > len(Layout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return Of(t), nil
		}
		s = s[:len(Layout)]
	}
	return Parse(s)
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = Of(v)
		return nil
	case string:
		parsed, err := parseLoose(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := parseLoose(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("day: cannot scan %T into Date", src)
	}
}

// Set is an ordered set of unique dates persisted as a JSON array of YYYY-MM-DD strings.
type Set []Date

// NewSet sorts and de-duplicates dates.
func NewSet(dates ...Date) Set {
	seen := make(map[Date]struct{}, len(dates))
	out := make(Set, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s Set) Contains(d Date) bool {
	for _, x := range s {
		if x == d {
			return true
		}
	}
	return false
}

// Min and Max assume s is non-empty and sorted.
func (s Set) Min() Date { return s[0] }
func (s Set) Max() Date { return s[len(s)-1] }

func (s Set) Union(other Set) Set {
	return NewSet(append(append(Set{}, s...), other...)...)
}

func (s Set) Without(other Set) Set {
	out := make(Set, 0, len(s))
	for _, d := range s {
		if !other.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// Intersect keeps the dates of s that are also in other.
func (s Set) Intersect(other Set) Set {
	out := make(Set, 0, len(s))
	for _, d := range s {
		if other.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s Set) Value() (driver.Value, error) {
	if s == nil {
		s = Set{}
	}
	b, err := json.Marshal([]Date(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Set) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Set{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("day: cannot scan %T into Set", src)
	}

	var dates []Date
	if err := json.Unmarshal(raw, &dates); err != nil {
		return err
	}
	*s = NewSet(dates...)
	return nil
}
