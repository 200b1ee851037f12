// Package assets embeds the browser front end served by the wardrobe server
package assets

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// IndexTemplate parses the page template
func IndexTemplate() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/index.html")
}

// Static returns the files served under /static/
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static is embedded above, Sub cannot fail for it
		panic(err)
	}
	return sub
}
