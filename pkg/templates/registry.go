package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"
)

//go:embed assets/**/*.tmpl
var embeddedFS embed.FS

// Template is a parsed prompt or notification template. IDs mirror the
// asset layout, e.g. "workflows/strategy_input" or "notifications/signal".
type Template struct {
	ID      string
	Content string

	parsed *template.Template
}

// Render executes the template with the provided data.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.parsed.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.ID, err)
	}

	return buf.String(), nil
}

// Registry resolves templates by ID. All templates are parsed at
// construction; the set is immutable afterwards, so lookups need no lock.
type Registry struct {
	templates map[string]*Template
}

// Load parses every .tmpl file under the given filesystem root.
// A template that fails to parse fails the whole load.
func Load(fsys fs.FS) (*Registry, error) {
	r := &Registry{templates: map[string]*Template{}}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".tmpl" {
			return nil
		}

		return r.parse(fsys, p)
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Get returns the process-wide registry backed by the embedded assets.
// It panics when the embedded templates fail to parse, which is a build
// defect rather than a runtime condition.
func Get() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = newEmbeddedRegistry()
	})

	if defaultErr != nil {
		panic(defaultErr)
	}

	return defaultRegistry
}

// GetTemplate retrieves a template by its ID.
func (r *Registry) GetTemplate(id string) (*Template, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", id)
	}

	return tmpl, nil
}

// Render executes a template by ID using the provided data.
func (r *Registry) Render(id string, data any) (string, error) {
	tmpl, err := r.GetTemplate(id)
	if err != nil {
		return "", err
	}

	return tmpl.Render(data)
}

func (r *Registry) parse(fsys fs.FS, p string) error {
	id := strings.TrimSuffix(p, path.Ext(p))

	content, err := fs.ReadFile(fsys, p)
	if err != nil {
		return fmt.Errorf("read template %s: %w", id, err)
	}

	parsed, err := template.New(id).Funcs(template.FuncMap{
		"escapeMarkdown": EscapeMarkdown,
		"safeText":       SafeText,
	}).Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", id, err)
	}

	r.templates[id] = &Template{
		ID:      id,
		Content: string(content),
		parsed:  parsed,
	}

	return nil
}

func newEmbeddedRegistry() (*Registry, error) {
	subFS, err := fs.Sub(embeddedFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("prepare embedded templates: %w", err)
	}

	return Load(subFS)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)
