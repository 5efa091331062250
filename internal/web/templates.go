package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates
var templatesFS embed.FS

// parseTemplates parses every embedded page template.
func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"fmtTime": fmtTime,
	}).ParseFS(templatesFS, "templates/*.html")
}

// fmtTime renders diary timestamps for display.
func fmtTime(t time.Time) string {
	return t.Format("Jan 2, 2006 at 15:04")
}
