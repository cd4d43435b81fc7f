package web

import (
	"embed"
	"html/template"
	"strings"

	"mashup/internal/audio"
)

//go:embed templates/form.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/form.html")
}

func acceptList() string {
	return strings.Join(audio.Extensions(), ",")
}
