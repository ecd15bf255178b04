package shell

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	fsys := fstest.MapFS{
		"index.html":           {Data: []byte("<html>")},
		"app.js":               {Data: []byte("")},
		"style.css":            {Data: []byte("")},
		"manifest.webmanifest": {Data: []byte("{}")},
		"icons/icon-192.svg":   {Data: []byte("<svg/>")},
	}

	assert.Equal(t, []string{"/icons/icon-512.svg"}, Verify(fsys))

	fsys["icons/icon-512.svg"] = &fstest.MapFile{Data: []byte("<svg/>")}
	assert.Empty(t, Verify(fsys))
}

func TestFSPath(t *testing.T) {
	assert.Equal(t, "index.html", FSPath("/"))
	assert.Equal(t, "index.html", FSPath(""))
	assert.Equal(t, "icons/icon-192.svg", FSPath("/icons/icon-192.svg"))
}

func TestCurrentReturnsCopy(t *testing.T) {
	m := Current()
	m.Assets[0] = "/changed"
	assert.Equal(t, "/", Assets[0])
	assert.Equal(t, CacheName, m.CacheName)
}

func TestCacheControl(t *testing.T) {
	assert.Equal(t, "no-cache", CacheControl("sw.js"))
	assert.Equal(t, "public, max-age=3600", CacheControl("style.css"))
}
