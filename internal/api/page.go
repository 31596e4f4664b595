package api

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/starford/blognotes/internal/models"
	"github.com/starford/blognotes/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("").Funcs(template.FuncMap{
	"kib": render.KiB,
}).ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Theme     string
	NotesHTML template.HTML
	Staged    []models.Attachment
}

// Page handles GET /. It must run behind SessionMiddleware.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	th, err := h.theme.Get()
	if err != nil {
		writeError(w, r, "load theme", err)
		return
	}
	out, err := h.svc.Render(r.Context())
	if err != nil {
		writeError(w, r, "render notes", err)
		return
	}

	data := pageData{
		Theme: th,
		// Rendered markup escapes titles and timestamps itself; note content
		// is editor HTML and is inserted as is.
		NotesHTML: template.HTML(out.HTML),
		Staged:    h.sessions.Tracker(sessionID(r)).Descriptors(),
	}
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", data); err != nil {
		slog.ErrorContext(r.Context(), "page template failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
