package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"chitfund/internal/adapters/http/middleware"
	"chitfund/internal/application/actions"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames are the top-level pages. Each is parsed together with the
// layout and the shared partials.
var pageNames = []string{"login.html", "member.html", "admin.html"}

type pageSet struct {
	pages map[string]*template.Template
}

// rowForms is the data of one row's action buttons.
type rowForms struct {
	Endpoint string
	ID       string
	Actions  []actions.Action
}

var actionLabels = map[actions.Action]string{
	actions.Edit:   "Edit",
	actions.Delete: "Delete",
	actions.View:   "View",
}

// baseFuncs holds the request-independent helpers plus placeholders that
// render replaces per request.
var baseFuncs = template.FuncMap{
	"csrfField":   func() template.HTML { return "" },
	"csrfToken":   func() string { return "" },
	"currentUser": func() string { return "" },
	"rowActions": func(endpoint, id string, acts []actions.Action) rowForms {
		return rowForms{Endpoint: endpoint, ID: id, Actions: acts}
	},
	"actionLabel": func(a actions.Action) string {
		if l, ok := actionLabels[a]; ok {
			return l
		}
		return string(a)
	},
}

func parsePages() (*pageSet, error) {
	set := &pageSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(baseFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/partial_*.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		set.pages[name] = tpl
	}
	return set, nil
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// render executes a page into a buffer first so a template failure never
// leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	base, ok := s.pages.pages[name]
	if !ok {
		internalError(w, fmt.Errorf("unknown page %q", name))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	user := ""
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		user = sess.Username
	}
	tpl.Funcs(template.FuncMap{
		"csrfField":   func() template.HTML { return csrf.TemplateField(r) },
		"csrfToken":   func() string { return csrf.Token(r) },
		"currentUser": func() string { return user },
	})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
