package usecase

import (
	"strings"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/order/dto"
	"github.com/goodsign/monday"
)

// TagConfig names the line item properties carrying the customer's choice.
type TagConfig struct {
	DateLabel     string
	TimeSlotLabel string
}

// LocaleConfig controls how chosen dates are parsed and displayed.
type LocaleConfig struct {
	Locale     monday.Locale
	DateFormat string
}

// fallbackLayouts are tried after the shop's own format.
var fallbackLayouts = []string{
	"02/01/2006",
	day.Layout,
	"2 January 2006",
	"January 2, 2006",
	"Monday, January 2, 2006",
}

func ConfigFromSettings(s model.ShopSettings) (TagConfig, LocaleConfig) {
	s = s.WithDefaults()
	return TagConfig{
			DateLabel:     s.DateTagLabel,
			TimeSlotLabel: s.TimeSlotTagLabel,
		}, LocaleConfig{
			Locale:     supportedLocale(s.Locale),
			DateFormat: s.DateFormat,
		}
}

// supportedLocale maps a shop locale such as "fr_FR", "fr-FR" or "fr" to a
// monday locale. A bare language takes the first listed locale of it.
func supportedLocale(locale string) monday.Locale {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "-", "_")
	if locale == "" {
		return monday.LocaleEnUS
	}
	all := monday.ListLocales()
	for _, l := range all {
		if strings.EqualFold(string(l), locale) {
			return l
		}
	}
	lang, _, _ := strings.Cut(locale, "_")
	for _, l := range all {
		if prefix, _, _ := strings.Cut(string(l), "_"); strings.EqualFold(prefix, lang) {
			return l
		}
	}
	return monday.LocaleEnUS
}

// choice is what one line item asks for.
type choice struct {
	date day.Date
	slot string
}

// extract resolves the chosen date and time slot of item. Order level note
// attributes win over the item's own properties.
func (c TagConfig) extract(order *dto.OrderWebhook, item *dto.LineItem, loc LocaleConfig) (choice, bool) {
	dateValue, ok := lookup(order.NoteAttributes, c.DateLabel)
	if !ok {
		dateValue, ok = lookup(item.Properties, c.DateLabel)
	}
	if !ok {
		return choice{}, false
	}
	d, ok := loc.parse(dateValue)
	if !ok {
		return choice{}, false
	}

	slot, ok := lookup(order.NoteAttributes, c.TimeSlotLabel)
	if !ok {
		slot, _ = lookup(item.Properties, c.TimeSlotLabel)
	}
	return choice{date: d, slot: slot}, true
}

func lookup(props []dto.Property, label string) (string, bool) {
	if label == "" {
		return "", false
	}
	for _, p := range props {
		if strings.EqualFold(strings.TrimSpace(p.Name), label) {
			v := strings.TrimSpace(string(p.Value))
			if v == "" {
				return "", false
			}
			return v, true
		}
	}
	return "", false
}

func (l LocaleConfig) parse(value string) (day.Date, bool) {
	layouts := append([]string{l.DateFormat}, fallbackLayouts...)
	for _, layout := range layouts {
		if layout == "" {
			continue
		}
		if t, err := monday.ParseInLocation(layout, value, time.UTC, l.Locale); err == nil {
			return day.Of(t), true
		}
		if t, err := time.Parse(layout, value); err == nil {
			return day.Of(t), true
		}
	}
	return day.Date{}, false
}

// displayTag formats d for an order tag. Shopify splits tags on commas.
func (l LocaleConfig) displayTag(d day.Date) string {
	s := monday.Format(d.Time(), l.DateFormat, l.Locale)
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}
