// Package ui holds the embedded HTML templates of the clinic web app.
package ui

import (
	"embed"
	"io/fs"
)

//go:embed templates
var files embed.FS

// Templates is rooted at the templates directory, as view.New expects.
func Templates() fs.FS {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
