package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))
	r.Use(SessionMiddleware)

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/render", h.RenderNotes)
	r.Post("/notes", h.CreateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Staged attachments of the caller's session.
	r.Get("/attachments", h.ListAttachments)
	r.Post("/attachments", h.StageAttachments)
	r.Delete("/attachments", h.ClearAttachments)
	r.Delete("/attachments/{index}", h.RemoveAttachment)

	// Export / import.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// Theme.
	r.Get("/theme", h.GetTheme)
	r.Put("/theme", h.SetTheme)
	r.Post("/theme/toggle", h.ToggleTheme)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
