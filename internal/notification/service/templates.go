package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/dirtfreecarpet/portal/internal/notification/domain"
)

//go:embed all:templates
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// render executes the named template against the payload data.
func render(name string, data map[string]any) (string, error) {
	tmpl := templates.Lookup(name + ".html")
	if tmpl == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// knownTemplate reports whether the renderer can handle the name.
func knownTemplate(name string) bool {
	return templates.Lookup(name+".html") != nil
}
