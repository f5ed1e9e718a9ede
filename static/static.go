// Package static embeds the frontend build.
//
// The release build copies the React app's dist/ output into static/dist
// before compiling. In development dist/ only holds .gitkeep and the Vite
// dev server serves the frontend instead.
package static

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// FrontendFS holds dist/. The "all:" prefix keeps dot files such as .gitkeep.
//
//go:embed all:dist
var FrontendFS embed.FS

// Handler serves the embedded build with an SPA fallback: any path that is
// not a file gets index.html so client-side routes survive a reload.
// It reports false when no build is embedded.
func Handler() (http.Handler, bool) {
	dist, err := fs.Sub(FrontendFS, "dist")
	if err != nil {
		return nil, false
	}
	if _, err := fs.Stat(dist, "index.html"); err != nil {
		return nil, false
	}

	files := http.FileServerFS(dist)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}
		if _, err := fs.Stat(dist, name); err != nil {
			r = r.Clone(r.Context())
			r.URL.Path = "/"
		}
		files.ServeHTTP(w, r)
	}), true
}
