// Package web holds the server-rendered pages.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

const IndexTemplate = "index.html"

// IndexData feeds the landing page.
type IndexData struct {
	CSRFField string
	CSRFToken string
	Username  string
	Path      string
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}
