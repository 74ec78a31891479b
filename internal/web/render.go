package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer turns named page templates into templ components.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded page templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.New("pages").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Page returns the component for the template called name.
func (r *Renderer) Page(name string, data any) (templ.Component, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return templ.FromGoHTML(t, data), nil
}

// HTML renders the template called name with the given status.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data any) {
	comp, err := r.Page(name, data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	Component(c, status, comp)
}

// Component writes comp as an HTML response.
func Component(c *gin.Context, status int, comp templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := comp.Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}
