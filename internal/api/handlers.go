package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/noteservice"
	"github.com/starford/blognotes/internal/session"
	"github.com/starford/blognotes/internal/theme"
)

// maxBody bounds request bodies for note saves and imports.
const maxBody = 10 << 20

// exportFilename is the name offered for downloaded exports.
const exportFilename = "blog-notes.json"

// Handler holds API route handlers.
type Handler struct {
	svc      *noteservice.Service
	sessions *session.Registry
	theme    *theme.Preference
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, sessions *session.Registry, pref *theme.Preference) *Handler {
	return &Handler{svc: svc, sessions: sessions, theme: pref}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List stored notes, newest first
//	@Tags			notes
//	@Produce		json
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: c, Total: len(c)})
}

// RenderNotes handles GET /api/notes/render.
//
//	@Summary		Render the notes list as HTML
//	@Tags			notes
//	@Produce		html
//	@Success		200
//	@Success		304
//	@Security		BearerAuth
//	@Router			/notes/render [get]
func (h *Handler) RenderNotes(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Render(r.Context())
	if err != nil {
		writeError(w, r, "render notes", err)
		return
	}
	etag := `"` + out.ETag + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out.HTML)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Save a note with the session's staged attachments
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to save"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.svc.Save(r.Context(), req.Title, req.Content, h.sessions.Tracker(sessionID(r)))
	if err != nil {
		writeError(w, r, "save note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note by id
//	@Tags			notes
//	@Param			id	path	int	true	"Note id"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/export.
//
//	@Summary		Download the stored notes as JSON
//	@Tags			transfer
//	@Produce		json
//	@Success		200
//	@Success		204
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	raw, err := h.svc.Export(r.Context())
	if errors.Is(err, apperr.ErrEmptyStore) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, r, "export notes", err)
		return
	}
	if fp, fpErr := h.svc.Fingerprint(r.Context()); fpErr == nil && fp != "" {
		w.Header().Set("ETag", `"`+fp+`"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, raw)
}

// Import handles POST /api/import. The payload is either a multipart "file"
// field or the raw request body.
//
//	@Summary		Replace the stored notes with an exported file
//	@Tags			transfer
//	@Accept			json
//	@Accept			multipart/form-data
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	text, err := readImportPayload(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(importErrorMessage))
		return
	}
	if err := h.svc.Import(r.Context(), text); err != nil {
		writeError(w, r, "import notes", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readImportPayload(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		return string(data), err
	}
	data, err := io.ReadAll(r.Body)
	return string(data), err
}

// GetTheme handles GET /api/theme.
//
//	@Summary		Get the page theme
//	@Tags			theme
//	@Produce		json
//	@Success		200	{object}	ThemeResponse
//	@Security		BearerAuth
//	@Router			/theme [get]
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	t, err := h.theme.Get()
	if err != nil {
		writeError(w, r, "get theme", err)
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: t})
}

// SetTheme handles PUT /api/theme.
//
//	@Summary		Set the page theme
//	@Tags			theme
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ThemeRequest	true	"Theme"
//	@Success		200		{object}	ThemeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/theme [put]
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.theme.Set(req.Theme); err != nil {
		writeError(w, r, "set theme", err)
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: req.Theme})
}

// ToggleTheme handles POST /api/theme/toggle.
//
//	@Summary		Switch between the light and dark themes
//	@Tags			theme
//	@Produce		json
//	@Success		200	{object}	ThemeResponse
//	@Security		BearerAuth
//	@Router			/theme/toggle [post]
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	t, err := h.theme.Toggle()
	if err != nil {
		writeError(w, r, "toggle theme", err)
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: t})
}
