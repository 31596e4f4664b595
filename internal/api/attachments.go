package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/blognotes/internal/models"
)

// maxStageMemory bounds the multipart form kept in memory while staging.
const maxStageMemory = 32 << 20

// ListAttachments handles GET /api/attachments.
//
//	@Summary		List the files staged for the next note
//	@Tags			attachments
//	@Produce		json
//	@Success		200	{object}	AttachmentListResponse
//	@Security		BearerAuth
//	@Router			/attachments [get]
func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	t := h.sessions.Tracker(sessionID(r))
	writeJSON(w, http.StatusOK, AttachmentListResponse{Files: t.Descriptors()})
}

// StageAttachments handles POST /api/attachments. Files come either as
// multipart "file" fields or as a JSON list of descriptors. Only name, size
// and type are kept; contents are never stored.
//
//	@Summary		Stage files for the next note
//	@Tags			attachments
//	@Accept			multipart/form-data
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	AttachmentListResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/attachments [post]
func (h *Handler) StageAttachments(w http.ResponseWriter, r *http.Request) {
	refs, ok := readStagedFiles(w, r)
	if !ok {
		return
	}
	t := h.sessions.Tracker(sessionID(r))
	t.Add(refs...)
	writeJSON(w, http.StatusCreated, AttachmentListResponse{Files: t.Descriptors()})
}

func readStagedFiles(w http.ResponseWriter, r *http.Request) ([]models.FileRef, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req StageAttachmentsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return nil, false
		}
		refs := make([]models.FileRef, 0, len(req.Files))
		for _, a := range req.Files {
			refs = append(refs, models.FileRef{Name: a.Name, Size: a.Size, Type: a.Type})
		}
		return refs, true
	}

	if err := r.ParseMultipartForm(maxStageMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return nil, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("file field is required"))
		return nil, false
	}
	refs := make([]models.FileRef, 0, len(headers))
	for _, fh := range headers {
		refs = append(refs, models.FileRef{
			Name: fh.Filename,
			Size: fh.Size,
			Type: fh.Header.Get("Content-Type"),
		})
	}
	return refs, true
}

// RemoveAttachment handles DELETE /api/attachments/{index}. An index outside
// the staged list is ignored.
//
//	@Summary		Remove one staged file by position
//	@Tags			attachments
//	@Param			index	path	int	true	"Position in the staged list"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/attachments/{index} [delete]
func (h *Handler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return
	}
	_ = h.sessions.Tracker(sessionID(r)).RemoveAt(i)
	w.WriteHeader(http.StatusNoContent)
}

// ClearAttachments handles DELETE /api/attachments.
//
//	@Summary		Drop every staged file
//	@Tags			attachments
//	@Success		204
//	@Security		BearerAuth
//	@Router			/attachments [delete]
func (h *Handler) ClearAttachments(w http.ResponseWriter, r *http.Request) {
	h.sessions.Tracker(sessionID(r)).Clear()
	w.WriteHeader(http.StatusNoContent)
}
