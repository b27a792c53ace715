package model

import "time"

type Shop struct {
	BaseModel
	Domain        string     `db:"domain" json:"domain"`
	AccessToken   string     `db:"access_token" json:"-"`
	Email         string     `db:"email" json:"email"`
	UninstalledAt *time.Time `db:"uninstalled_at" json:"uninstalled_at"`
}

// ShopSettings holds the merchant configuration the core reads.
// A missing row means DefaultShopSettings.
type ShopSettings struct {
	ShopID                   string `db:"shop_id" json:"-"`
	DateTagLabel             string `db:"date_tag_label" json:"date_tag_label"`
	TimeSlotTagLabel         string `db:"time_slot_tag_label" json:"time_slot_tag_label"`
	Locale                   string `db:"locale" json:"locale"`
	DateFormat               string `db:"date_format" json:"date_format"` // Go layout
	FirstAvailableDateInDays int    `db:"first_available_date_in_days" json:"first_available_date_in_days"`
	LastAvailableDateInWeeks int    `db:"last_available_date_in_weeks" json:"last_available_date_in_weeks"`
	AutoTrackOrderedProducts bool   `db:"auto_track_ordered_products" json:"auto_track_ordered_products"`
}

const (
	DefaultDateTagLabel     = "Delivery Date"
	DefaultTimeSlotTagLabel = "Delivery Time"
	DefaultLocale           = "en_US"
	DefaultDateFormat       = "Monday, 2 January 2006"
)

func DefaultShopSettings(shopID string) ShopSettings {
	return ShopSettings{
		ShopID:           shopID,
		DateTagLabel:     DefaultDateTagLabel,
		TimeSlotTagLabel: DefaultTimeSlotTagLabel,
		Locale:           DefaultLocale,
		DateFormat:       DefaultDateFormat,
	}
}

// WithDefaults fills blank string settings.
func (s ShopSettings) WithDefaults() ShopSettings {
	d := DefaultShopSettings(s.ShopID)
	if s.DateTagLabel == "" {
		s.DateTagLabel = d.DateTagLabel
	}
	if s.TimeSlotTagLabel == "" {
		s.TimeSlotTagLabel = d.TimeSlotTagLabel
	}
	if s.Locale == "" {
		s.Locale = d.Locale
	}
	if s.DateFormat == "" {
		s.DateFormat = d.DateFormat
	}
	return s
}

// ShopResource is a product tracked by the app, keyed by its Shopify id.
type ShopResource struct {
	BaseModel
	ShopID     string `db:"shop_id" json:"shop_id"`
	ResourceID string `db:"resource_id" json:"resource_id"`
	Title      string `db:"title" json:"title"`
}
