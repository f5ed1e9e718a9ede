package i18n

import "embed"

// EmbeddedLocales carries locales/*.json inside the binary.
// Use fs.Sub(EmbeddedLocales, "locales") before passing it to Load.
//
//go:embed locales/*.json
var EmbeddedLocales embed.FS
