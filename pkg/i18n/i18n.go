// Package i18n renders user-facing notification text in the recipient's
// language.
//
// Translations are nested JSON files (locales/en.json, locales/hi.json)
// flattened to dotted keys at load time:
//
//	{"notify": {"approved": {"title": "..."}}}  →  "notify.approved.title"
//
// Placeholders use {{name}} and are filled by TWithParams.
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// SupportedLanguages lists the locale files that must exist.
var SupportedLanguages = []string{"en", "hi"}

// DefaultLanguage is used for unknown languages and missing keys.
const DefaultLanguage = "en"

var (
	translations map[string]map[string]string
	loadOnce     sync.Once
	loadErr      error
)

// Load reads every supported locale from localesFS. Only the first call
// does work; later calls return the first result.
func Load(localesFS fs.FS) error {
	loadOnce.Do(func() {
		loaded := make(map[string]map[string]string, len(SupportedLanguages))

		for _, lang := range SupportedLanguages {
			fileName := lang + ".json"

			data, err := fs.ReadFile(localesFS, fileName)
			if err != nil {
				loadErr = fmt.Errorf("failed to read translation file %s: %w", fileName, err)
				return
			}

			var nested map[string]any
			if err := json.Unmarshal(data, &nested); err != nil {
				loadErr = fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
				return
			}

			flat := make(map[string]string)
			flattenMap("", nested, flat)
			loaded[lang] = flat

			log.Debug().Str("component", "i18n").Str("lang", lang).Int("keys", len(flat)).Msg("translations loaded")
		}

		translations = loaded
	})

	return loadErr
}

// Localizer translates keys for one language.
type Localizer struct {
	lang string
}

// NewLocalizer falls back to DefaultLanguage for unsupported languages.
func NewLocalizer(lang string) *Localizer {
	if !IsSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{lang: lang}
}

// Lang is the effective language.
func (l *Localizer) Lang() string {
	return l.lang
}

// T returns the translation, the default-language translation, or the key itself.
func (l *Localizer) T(key string) string {
	if msg, ok := translations[l.lang][key]; ok {
		return msg
	}
	if msg, ok := translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// TWithParams translates key and substitutes {{name}} placeholders.
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// DetectLanguage picks the first supported language of an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLanguage
	}

	for _, part := range strings.Split(acceptLanguage, ",") {
		lang := strings.TrimSpace(strings.Split(part, ";")[0])
		lang = strings.ToLower(strings.Split(lang, "-")[0])

		if IsSupported(lang) {
			return lang
		}
	}

	return DefaultLanguage
}

// IsSupported reports whether a locale file exists for lang.
func IsSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
