package server

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"

	"github.com/lazypower/brickdecay/internal/shell"
)

// uiFS holds the embedded web shell. Set via SetUI before creating the server.
var uiFS fs.FS

// SetUI sets the embedded filesystem for serving the web shell.
func SetUI(fsys fs.FS) {
	uiFS = fsys
}

// shellHandler serves static files from the embedded FS with SPA fallback.
// Any path not matching a real file returns index.html. /index.html is
// served as-is, never redirected to /.
func shellHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uiFS == nil {
			http.Error(w, "web shell not embedded", http.StatusNotFound)
			return
		}

		path := shell.FSPath(r.URL.Path)
		content, info, err := openShellFile(path)
		if err != nil {
			path = "index.html"
			content, info, err = openShellFile(path)
		}
		if err != nil {
			http.Error(w, "index.html missing from web shell", http.StatusNotFound)
			return
		}

		h := w.Header()
		h.Set("Cache-Control", shell.CacheControl(path))
		switch path {
		case "sw.js":
			h.Set("Content-Type", "text/javascript; charset=utf-8")
			h.Set("Service-Worker-Allowed", "/")
		case "manifest.webmanifest":
			h.Set("Content-Type", "application/manifest+json")
		}

		http.ServeContent(w, r, info.Name(), info.ModTime(), content)
	}
}

// openShellFile reads a regular file from uiFS. Directories count as missing.
func openShellFile(path string) (io.ReadSeeker, fs.FileInfo, error) {
	f, err := uiFS.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return nil, nil, fs.ErrNotExist
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return bytes.NewReader(data), info, nil
}
