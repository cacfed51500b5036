package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"sat-practice-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	tmpl *template.Template
}

type pageData struct {
	Title     string
	Message   string
	Username  string
	Flashes   []string
	Topics    []string
	Topic     string
	Questions []domain.Question
	Attempts  []domain.Attempt
}

func mustParsePages() *pages {
	tmpl := template.Must(template.New("pages").Funcs(template.FuncMap{
		"timestamp": func(a domain.Attempt) string { return a.CreatedAt.Format("2006-01-02 15:04:05 MST") },
	}).ParseFS(templateFS, "templates/*.html"))
	return &pages{tmpl: tmpl}
}

// render buffers the page so a template error never leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
