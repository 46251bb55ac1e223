package template

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/ghaggin/openvpn-admin/web"
	"github.com/pkg/errors"
)

const (
	templateDir string = "tmpl"

	LoginPage     = "login.html"
	DashboardPage = "dashboard.html"
)

var pages = []string{LoginPage, DashboardPage}

type LoginData struct {
	PageTitle string
	Error     string
	CSRFToken string
}

type Command struct {
	Description string
	Command     string
}

type DashboardData struct {
	PageTitle      string
	User           string
	Status         string
	Running        bool
	ClientCount    int
	Uptime         string
	StatusPageURL  string
	Commands       []Command
}

// Renderer holds one parsed template set per page, each layered on
// base.html.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	return NewFromFS(web.TemplateFS)
}

func NewFromFS(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.ParseFS(fsys,
			templateDir+"/"+"base.html",
			templateDir+"/"+page,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", page)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, page string, td any) error {
	t, ok := r.pages[page]
	if !ok {
		return errors.Errorf("unknown page %q", page)
	}

	buf := &bytes.Buffer{}

	err := t.ExecuteTemplate(buf, "base", td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
