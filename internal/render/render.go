// Package render turns a stored template config into a standalone HTML
// document using one of the embedded layouts.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/email-builder/internal/model"
	"github.com/email-builder/internal/validation"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed layouts/*.html
var layoutFS embed.FS

// ErrLayoutNotFound is returned by Layout for unknown names.
var ErrLayoutNotFound = errors.New("layout not found")

type Option func(*Renderer)

// WithSanitizer runs content and footer through bluemonday's UGC policy
// before they are inserted into the layout.
func WithSanitizer() Option {
	return func(r *Renderer) {
		r.policy = bluemonday.UGCPolicy()
	}
}

type Renderer struct {
	layouts map[string]*template.Template
	sources map[string]string
	policy  *bluemonday.Policy
}

type layoutData struct {
	Title    string
	Content  template.HTML
	ImageURL string
	Footer   template.HTML
	Styles   layoutStyles
}

// layoutStyles holds values already checked against the color and length
// patterns, so they can bypass html/template's CSS filter.
type layoutStyles struct {
	TitleColor      template.CSS
	ContentColor    template.CSS
	BackgroundColor template.CSS
	FontSize        template.CSS
}

func cssColor(value, def string) template.CSS {
	if validation.IsCSSColor(value) {
		return template.CSS(value)
	}
	return template.CSS(def)
}

func cssLength(value, def string) template.CSS {
	if validation.IsCSSLength(value) {
		return template.CSS(value)
	}
	return template.CSS(def)
}

func newLayoutStyles(s model.TemplateStyles) layoutStyles {
	return layoutStyles{
		TitleColor:      cssColor(s.TitleColor, model.DefaultTitleColor),
		ContentColor:    cssColor(s.ContentColor, model.DefaultContentColor),
		BackgroundColor: cssColor(s.BackgroundColor, model.DefaultBackgroundColor),
		FontSize:        cssLength(s.FontSize, model.DefaultFontSize),
	}
}

func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		layouts: make(map[string]*template.Template),
		sources: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}

	entries, err := fs.Glob(layoutFS, "layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	for _, entry := range entries {
		src, err := layoutFS.ReadFile(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to read layout %s: %w", entry, err)
		}
		name := strings.TrimSuffix(path.Base(entry), ".html")
		tmpl, err := template.New(name).Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout %s: %w", name, err)
		}
		r.layouts[name] = tmpl
		r.sources[name] = string(src)
	}

	if _, ok := r.layouts[model.DefaultLayout]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, model.DefaultLayout)
	}
	return r, nil
}

// Render executes the named layout, falling back to the default one when the
// name is unknown.
func (r *Renderer) Render(layout string, cfg model.TemplateConfig) (string, error) {
	tmpl, ok := r.layouts[layout]
	if !ok {
		tmpl = r.layouts[model.DefaultLayout]
	}

	content, footer := cfg.Content, cfg.Footer
	if r.policy != nil {
		content = r.policy.Sanitize(content)
		footer = r.policy.Sanitize(footer)
	}

	data := layoutData{
		Title:    cfg.Title,
		Content:  template.HTML(content),
		ImageURL: cfg.ImageURL,
		Footer:   template.HTML(footer),
		Styles:   newLayoutStyles(cfg.Styles),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render layout %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Layout returns the raw source of the named layout.
func (r *Renderer) Layout(name string) (string, error) {
	src, ok := r.sources[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	return src, nil
}
