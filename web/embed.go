// Package web embeds the dashboard page served by "smartb3 serve".
//
// The web/out/ directory holds a static page (index.html plus assets/)
// that talks to the server over /api/v1/ws and renders the view it
// receives. It is embedded at compile-time using go:embed.
//
// Usage in the API server:
//
//	import "github.com/smartb3/smartb3/web"
//	fs := web.DistFS()  // returns io/fs.FS rooted at out/
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:out
var dist embed.FS

// DistFS returns a filesystem rooted at the embedded out/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func DistFS() fs.FS {
	sub, err := fs.Sub(dist, "out")
	if err != nil {
		// out is embedded at build time; Sub only fails on an invalid name.
		panic("web.DistFS: " + err.Error())
	}
	return sub
}
