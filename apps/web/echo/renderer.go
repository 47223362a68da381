package echoweb

import (
	"html/template"
	"io"
	"io/fs"
	"math"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/user"
	appfs "github.com/trezcool/gradebook/fs"
)

const (
	templatesDir   = "templates"
	layoutTemplate = "layout.gohtml"
)

var (
	TemplatesFS fs.FS = appfs.FS // mockable

	pages = []string{"index", "register", "login", "teacher", "student", "manage", "admin", "ranking", "error"}

	funcs = template.FuncMap{
		"roleOptions": func() []user.RoleOption { return user.RoleOptions },
		"inc":         func(i int) int { return i + 1 },
		"score":       formatScore,
	}
)

// page is the data every template receives.
type page struct {
	Title    string
	Identity user.Identity
	Flashes  []string
	Notice   string
	Error    string
	Errors   map[string]string
	Form     interface{}
	Data     interface{}
}

type renderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

// newRenderer parses every page together with the shared layout.
func newRenderer() (*renderer, error) {
	r := &renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tmpl, err := template.New(layoutTemplate).Funcs(funcs).ParseFS(
			TemplatesFS,
			path.Join(templatesDir, layoutTemplate),
			path.Join(templatesDir, name+".gohtml"),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s template", name)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, layoutTemplate, data)
}

// render completes p with the request's identity & flashes then renders the named page.
func (s *server) render(ctx echo.Context, code int, name string, p *page) error {
	p.Identity = identityFrom(ctx)
	p.Flashes = s.popFlashes(ctx)
	if p.Errors == nil {
		p.Errors = map[string]string{}
	}
	return ctx.Render(code, name, p)
}

// formatScore prints v rounded to 2 decimals, without trailing zeros.
func formatScore(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func (s *server) ok(ctx echo.Context, name string, p *page) error {
	return s.render(ctx, http.StatusOK, name, p)
}
