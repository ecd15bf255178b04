// Package shell describes the offline web shell: the fixed list of assets the
// service worker caches on install and the cache they live in.
package shell

import (
	"io/fs"
	"strings"
)

// CacheName is the service worker cache. Bump the suffix when Assets changes
// so clients drop the stale cache.
const CacheName = "brickdecay-shell-v1"

// Assets is the application shell cached on install. Paths are
// root-relative, as the service worker requests them.
var Assets = []string{
	"/",
	"/index.html",
	"/app.js",
	"/style.css",
	"/manifest.webmanifest",
	"/icons/icon-192.svg",
	"/icons/icon-512.svg",
}

// Manifest is what the service worker and /api/shell expose.
type Manifest struct {
	CacheName string   `json:"cacheName"`
	Assets    []string `json:"assets"`
}

// Current returns the shell manifest.
func Current() Manifest {
	assets := make([]string, len(Assets))
	copy(assets, Assets)
	return Manifest{CacheName: CacheName, Assets: assets}
}

// Verify returns the listed assets that fsys does not contain. "/" maps to
// index.html.
func Verify(fsys fs.FS) []string {
	var missing []string
	for _, a := range Assets {
		if _, err := fs.Stat(fsys, FSPath(a)); err != nil {
			missing = append(missing, a)
		}
	}
	return missing
}

// FSPath converts a request path into a path inside the shell FS.
func FSPath(urlPath string) string {
	p := strings.TrimPrefix(urlPath, "/")
	if p == "" {
		return "index.html"
	}
	return p
}

// CacheControl returns the Cache-Control header for a shell file. The
// service worker and manifest must revalidate so updates reach clients.
func CacheControl(fsPath string) string {
	switch fsPath {
	case "sw.js", "index.html", "manifest.webmanifest":
		return "no-cache"
	default:
		return "public, max-age=3600"
	}
}
