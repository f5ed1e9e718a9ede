package i18n

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEmbedded(t *testing.T) {
	t.Helper()
	sub, err := fs.Sub(EmbeddedLocales, "locales")
	require.NoError(t, err)
	require.NoError(t, Load(sub))
}

func TestTranslateWithParams(t *testing.T) {
	loadEmbedded(t)

	l := NewLocalizer("en")
	got := l.TWithParams("notify.approved.body", map[string]string{
		"kind":     l.T("kind.leave"),
		"employee": "Asha",
		"summary":  "2026-03-09 to 2026-03-10",
		"actor":    "Ravi",
	})
	assert.Equal(t, "The leave request of Asha (2026-03-09 to 2026-03-10) was approved by Ravi.", got)
}

func TestFallbacks(t *testing.T) {
	loadEmbedded(t)

	assert.Equal(t, "en", NewLocalizer("fr").Lang())
	assert.Equal(t, "छुट्टी अनुरोध", NewLocalizer("hi").T("kind.leave"))
	assert.Equal(t, "no.such.key", NewLocalizer("hi").T("no.such.key"))
}

func TestLocalesHaveSameKeys(t *testing.T) {
	loadEmbedded(t)

	for key := range translations[DefaultLanguage] {
		_, ok := translations["hi"][key]
		assert.True(t, ok, "hi.json is missing %s", key)
	}
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "hi", DetectLanguage("hi-IN,hi;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", DetectLanguage("de-DE,de;q=0.9"))
	assert.Equal(t, "en", DetectLanguage(""))
}
