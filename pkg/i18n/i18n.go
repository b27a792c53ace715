package i18n

import (
	"embed"
	"encoding/json"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type Bundle struct {
	bundle *goi18n.Bundle
}

// New builds a bundle with the embedded locale files loaded.
func New() (*Bundle, error) {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, path := range []string{"locales/active.en.json", "locales/active.fr.json"} {
		if _, err := b.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, err
		}
	}
	return &Bundle{bundle: b}, nil
}

// Localize renders messageID for a shop locale such as "fr_FR" or "en-US".
// Unknown locales fall back to English.
func (b *Bundle) Localize(locale, messageID string, data map[string]interface{}) (string, error) {
	tag := strings.ReplaceAll(locale, "_", "-")
	l := goi18n.NewLocalizer(b.bundle, tag, language.English.String())
	return l.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
}
