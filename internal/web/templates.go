// Package web serves server-rendered comment thread pages. Sites that cannot
// embed the script widget link here; the plain HTML form posts back through
// the form endpoint and redirects to these pages with flash messages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates holds the parsed HTML templates for the thread pages.
type Templates struct {
	templates *template.Template
}

// NewTemplates creates a Templates instance by parsing all embedded templates.
func NewTemplates() (*Templates, error) {
	tmpl := template.New("").Funcs(template.FuncMap{
		// Comment bodies are sanitized before storage, so the rendered
		// HTML can pass through unescaped.
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	})
	tmpl, err := tmpl.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Templates{templates: tmpl}, nil
}

// Render renders a named template with the provided data to the response writer.
// Returns an error if the template doesn't exist or rendering fails.
func (t *Templates) Render(w http.ResponseWriter, name string, data interface{}) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl := t.templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("template %q not found", name)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}

	return nil
}
