package html

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/a-h/templ"
)

//go:embed templates
var layouts embed.FS

// Templates is a set of page templates sharing the site layout.
type Templates struct {
	t *template.Template
}

// ParseTemplates parses the page templates matching patterns in fsys,
// alongside the site layout and partials.
func ParseTemplates(fsys fs.FS, patterns ...string) (*Templates, error) {
	base, err := template.New("").Funcs(funcs()).ParseFS(layouts, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing layout templates: %w", err)
	}
	if len(patterns) > 0 {
		if base, err = base.ParseFS(fsys, patterns...); err != nil {
			return nil, fmt.Errorf("parsing page templates: %w", err)
		}
	}
	return &Templates{t: base}, nil
}

// Page returns a component rendering the named template with data.
func (t *Templates) Page(name string, data any) templ.Component {
	tmpl := t.t.Lookup(name)
	if tmpl == nil {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return fmt.Errorf("no such template: %s", name)
		})
	}
	return templ.FromGoHTML(tmpl, data)
}

// layoutTemplates is the layout on its own, for rendering error pages.
var layoutTemplates = func() *Templates {
	t, err := ParseTemplates(nil)
	if err != nil {
		panic(err.Error())
	}
	return t
}()
