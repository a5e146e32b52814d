// Package view renders the server-side HTML pages.  Templates are embedded
// in the binary; every page is parsed together with the shared layout and
// partials and executed through the "base" layout.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/form"
)

//go:embed templates
var templateFS embed.FS

// Page is what every template receives: the flashes for the layout and
// the page specific Data.
type Page struct {
	Flashes []flash.Message
	Data    any
}

// Renderer implements echo.Renderer.  Names are paths under templates/
// without the extension, e.g. "pages/home" or "forms/new_venue".
type Renderer struct {
	pages map[string]*template.Template
}

var shared = []string{
	"templates/layouts/*.html",
	"templates/partials/*.html",
	"templates/forms/fields.html",
}

// New parses every embedded page.  It fails on the first template error.
func New() (*Renderer, error) {
	base, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, shared...)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, dir := range []string{"pages", "forms", "errors"} {
		files, err := fs.Glob(templateFS, "templates/"+dir+"/*.html")
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if path.Base(file) == "fields.html" {
				continue
			}
			t, err := template.Must(base.Clone()).ParseFS(templateFS, file)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", file, err)
			}
			r.pages[dir+"/"+strings.TrimSuffix(path.Base(file), ".html")] = t
		}
	}
	return r, nil
}

// Render executes the named page.  data should be a Page; anything else is
// wrapped as its Data.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}
	p, ok := data.(Page)
	if !ok {
		p = Page{Data: data}
	}
	return t.ExecuteTemplate(w, "base", p)
}

// Has reports whether a page is registered under name.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

const (
	fullLayout   = "Monday January 2, 2006 at 3:04PM"
	mediumLayout = "Mon 01, 02, 2006 3:04PM"
)

// FormatDatetime renders t for display.  format is "full" or "medium"; any
// other value is used as a Go time layout.
func FormatDatetime(t time.Time, format string) string {
	switch format {
	case "full", "":
		return t.UTC().Format(fullLayout)
	case "medium":
		return t.UTC().Format(mediumLayout)
	}
	return t.UTC().Format(format)
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"datetime":     FormatDatetime,
		"genreChoices": func() []string { return form.GenreChoices },
		"stateChoices": func() []string { return form.StateChoices },
	}
}
